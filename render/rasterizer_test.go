package render

import (
	"bytes"
	"math"
	"testing"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/geometry"
)

func newTestRasterizer() *Rasterizer {
	return NewRasterizer(*config.Default())
}

func renderFrame(t *testing.T, r *Rasterizer, w, h int, a, b float64) *Buffer {
	t.Helper()
	buf := NewBuffer(0, ' ')
	if err := buf.Resize(w, h); err != nil {
		t.Fatalf("Resize(%d, %d) failed: %v", w, h, err)
	}
	buf.Clear()
	r.Render(buf, a, b)
	return buf
}

func TestShade_Boundaries(t *testing.T) {
	r := newTestRasterizer()

	tests := []struct {
		l    float64
		want byte
	}{
		{-1.0, '.'},
		{0, '.'},
		{0.124, '.'},
		{0.125, ','},
		{0.5, ':'},
		{1.0, '*'},
		{math.Sqrt2, '@'},
		{10, '@'},
	}

	for _, tt := range tests {
		if got := r.Shade(tt.l); got != tt.want {
			t.Errorf("Shade(%v) = %q, want %q", tt.l, got, tt.want)
		}
	}
}

func TestK1_ScalesWithWidth(t *testing.T) {
	r := newTestRasterizer()
	if k := r.K1(80); math.Abs(k-60) > 1e-12 {
		t.Errorf("K1(80) = %v, want 60", k)
	}
	if r.K1(40)*2 != r.K1(80) {
		t.Error("K1 must be proportional to width")
	}
}

func projectOn(r *Rasterizer, s geometry.Sample, width, height int) (int, int, float64) {
	return r.project(s, float64(width)/2, float64(height)/2, r.K1(width))
}

func TestProject_Centre(t *testing.T) {
	r := newTestRasterizer()
	xp, yp, ooz := projectOn(r, geometry.Sample{}, 80, 24)
	if xp != 40 || yp != 12 {
		t.Errorf("Origin projects to (%d, %d), want (40, 12)", xp, yp)
	}
	if math.Abs(ooz-1.0/3) > 1e-12 {
		t.Errorf("ooz = %v, want 1/3", ooz)
	}

	// Slightly left of column 0 must not round into it
	xp, _, _ = projectOn(r, geometry.Sample{X: -2.04}, 80, 24)
	if xp >= 0 {
		t.Errorf("Expected negative column, got %d", xp)
	}
}

// TestRender_DepthCorrectness checks every cell against a brute-force maximum over all samples
func TestRender_DepthCorrectness(t *testing.T) {
	r := newTestRasterizer()
	const w, h = 80, 24

	for _, angles := range [][2]float64{{0, 0}, {1.1, 0.4}, {4.2, 2.9}} {
		a, b := angles[0], angles[1]
		buf := renderFrame(t, r, w, h, a, b)

		best := make([]float64, w*h)
		glyph := bytes.Repeat([]byte{' '}, w*h)
		r.Torus().Sweep(geometry.NewRotation(a, b), func(s geometry.Sample) {
			if s.L <= 0 {
				return
			}
			xp, yp, ooz := projectOn(r, s, w, h)
			if xp < 0 || xp >= w || yp < 0 || yp >= h {
				return
			}
			i := yp*w + xp
			if ooz > best[i] {
				best[i] = ooz
				glyph[i] = r.Shade(s.L)
			}
		})

		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				d, _ := buf.depth.At(x, y)
				g, _ := buf.glyphs.At(x, y)
				if d != best[i] {
					t.Fatalf("A=%v B=%v cell (%d, %d): depth %v, want max %v", a, b, x, y, d, best[i])
				}
				if g != glyph[i] {
					t.Fatalf("A=%v B=%v cell (%d, %d): glyph %q, want %q", a, b, x, y, g, glyph[i])
				}
				if (g == ' ') != (d == 0) {
					t.Fatalf("cell (%d, %d): blank glyph must coincide with zero depth", x, y)
				}
			}
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	r := newTestRasterizer()
	first := renderFrame(t, r, 80, 24, 0, 0)
	second := renderFrame(t, newTestRasterizer(), 80, 24, 0, 0)

	if !bytes.Equal(first.Frame(), second.Frame()) {
		t.Fatal("Repeated render at A=0, B=0 differs")
	}

	lit := 0
	for _, g := range first.Frame() {
		if g != ' ' {
			lit++
		}
	}
	if lit == 0 {
		t.Fatal("Expected visible cells at A=0, B=0")
	}
	if lit == 80*24 {
		t.Fatal("Expected some blank cells at A=0, B=0")
	}
}

func TestRender_SmallGeometry(t *testing.T) {
	r := newTestRasterizer()
	for _, dims := range [][2]int{{1, 4}, {2, 4}, {3, 1}, {7, 5}, {200, 4}} {
		for _, a := range []float64{0, 0.9, 2.5, 5.1} {
			buf := renderFrame(t, r, dims[0], dims[1], a, a/2)
			if len(buf.Frame()) != dims[0]*dims[1] {
				t.Errorf("%dx%d: frame has %d cells", dims[0], dims[1], len(buf.Frame()))
			}
		}
	}
}

func TestRender_OnlyRampGlyphs(t *testing.T) {
	r := newTestRasterizer()
	buf := renderFrame(t, r, 120, 40, 2.0, 1.0)
	ramp := []byte(config.Default().Shading.Ramp)
	for i, g := range buf.Frame() {
		if g != ' ' && bytes.IndexByte(ramp, g) < 0 {
			t.Fatalf("Cell %d holds %q outside the ramp", i, g)
		}
	}
}

func TestRender_UnsizedBufferIsNoop(t *testing.T) {
	r := newTestRasterizer()
	buf := NewBuffer(0, ' ')
	r.Render(buf, 0, 0)
	if buf.Allocated() {
		t.Error("Render must not allocate")
	}
}
