package render

import (
	"math"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/geometry"
)

// Rasterizer projects torus samples into a Buffer with depth test and luminance shading
type Rasterizer struct {
	torus    geometry.Torus
	distance float64 // K2
	aspect   float64
	fill     float64
	ramp     []byte
	scale    float64
}

// NewRasterizer captures the geometry, camera and shading settings
func NewRasterizer(cfg config.Config) *Rasterizer {
	return &Rasterizer{
		torus:    geometry.FromConfig(cfg.Torus),
		distance: cfg.Camera.Distance,
		aspect:   cfg.Camera.Aspect,
		fill:     cfg.Camera.Fill,
		ramp:     []byte(cfg.Shading.Ramp),
		scale:    cfg.Shading.Scale,
	}
}

// Torus returns the sampled surface
func (r *Rasterizer) Torus() geometry.Torus {
	return r.torus
}

// K1 is the projection scale for a screen width
func (r *Rasterizer) K1(width int) float64 {
	return float64(width) * r.distance * r.fill / (r.torus.R1 + r.torus.R2)
}

// project maps a sample to screen cell (xp, yp) and its reciprocal depth
// Screen y grows downward, hence the negation
func (r *Rasterizer) project(s geometry.Sample, cx, cy, k1 float64) (int, int, float64) {
	ooz := 1 / (r.distance + s.Z)
	xp := int(math.Floor(cx + k1*ooz*s.X + 0.5))
	yp := int(math.Floor(cy - k1*ooz*s.Y*r.aspect + 0.5))
	return xp, yp, ooz
}

// Shade selects the ramp glyph for luminance l, clamped at both ends
func (r *Rasterizer) Shade(l float64) byte {
	idx := int(l * r.scale)
	if idx < 0 {
		idx = 0
	}
	if idx > len(r.ramp)-1 {
		idx = len(r.ramp) - 1
	}
	return r.ramp[idx]
}

// Render draws the torus at rotation (a, b) into buf
// buf must be cleared by the caller; only visible, nearer samples overwrite cells
func (r *Rasterizer) Render(buf *Buffer, a, b float64) {
	width, height := buf.Width(), buf.Height()
	if width == 0 || height == 0 {
		return
	}

	cx, cy := float64(width)/2, float64(height)/2
	k1 := r.K1(width)

	r.torus.Sweep(geometry.NewRotation(a, b), func(s geometry.Sample) {
		// Surface faces away from the light
		if s.L <= 0 {
			return
		}
		xp, yp, ooz := r.project(s, cx, cy, k1)
		buf.plot(xp, yp, ooz, r.Shade(s.L))
	})
}
