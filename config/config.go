// Package config holds the immutable renderer configuration.
// Defaults come from package parameter; an optional TOML file overrides them.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/donut/parameter"
	"github.com/lixenwraith/donut/toml"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is passed by value into the renderer; nothing mutates it after Load
type Config struct {
	Torus    Torus    `toml:"torus"`
	Camera   Camera   `toml:"camera"`
	Shading  Shading  `toml:"shading"`
	Frame    Frame    `toml:"frame"`
	Terminal Terminal `toml:"terminal"`
	Mirror   Mirror   `toml:"mirror"`
}

// Torus describes the sampled surface
type Torus struct {
	TubeRadius    float64 `toml:"tube_radius"`    // R1
	CentralRadius float64 `toml:"central_radius"` // R2
	ThetaStep     float64 `toml:"theta_step"`
	PhiStep       float64 `toml:"phi_step"`
}

// Camera describes the projection
type Camera struct {
	Distance float64 `toml:"distance"` // K2
	Aspect   float64 `toml:"aspect"`
	Fill     float64 `toml:"fill"`
}

// Shading maps luminance to glyphs
type Shading struct {
	Ramp  string  `toml:"ramp"`
	Scale float64 `toml:"scale"`
}

// Frame controls pacing and rotation
type Frame struct {
	Interval time.Duration `toml:"interval"`
	StepA    float64       `toml:"step_a"`
	StepB    float64       `toml:"step_b"`
	Limit    uint64        `toml:"limit"` // 0 runs until interrupted
}

// Terminal selects the output surface and geometry bounds
type Terminal struct {
	Backend       string `toml:"backend"`
	DefaultWidth  int    `toml:"default_width"`
	DefaultHeight int    `toml:"default_height"`
	MinWidth      int    `toml:"min_width"`
	MinHeight     int    `toml:"min_height"`
	MaxCells      int    `toml:"max_cells"`
}

// Mirror configures the websocket frame mirror; empty Listen disables it
type Mirror struct {
	Listen       string        `toml:"listen"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Torus: Torus{
			TubeRadius:    parameter.TubeRadius,
			CentralRadius: parameter.CentralRadius,
			ThetaStep:     parameter.ThetaSpacing,
			PhiStep:       parameter.PhiSpacing,
		},
		Camera: Camera{
			Distance: parameter.ViewerDistance,
			Aspect:   parameter.CharAspect,
			Fill:     parameter.ScreenFill,
		},
		Shading: Shading{
			Ramp:  parameter.LuminanceRamp,
			Scale: parameter.LuminanceScale,
		},
		Frame: Frame{
			Interval: parameter.FrameInterval,
			StepA:    parameter.AngleStepA,
			StepB:    parameter.AngleStepB,
		},
		Terminal: Terminal{
			Backend:       parameter.DefaultBackend,
			DefaultWidth:  parameter.DefaultWidth,
			DefaultHeight: parameter.DefaultHeight,
			MinWidth:      parameter.MinWidth,
			MinHeight:     parameter.MinHeight,
			MaxCells:      parameter.MaxCells,
		},
		Mirror: Mirror{
			WriteTimeout: 50 * time.Millisecond,
		},
	}
}

// Load reads path over the defaults; an empty path yields the defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Backends lists the accepted Terminal.Backend values
var Backends = []string{"ansi", "tcell", "termbox"}

// Validate checks ranges that the renderer relies on
func (c *Config) Validate() error {
	t := c.Torus
	switch {
	case t.TubeRadius <= 0 || t.CentralRadius <= 0:
		return fmt.Errorf("%w: torus radii must be positive", ErrInvalid)
	case t.ThetaStep <= 0 || t.PhiStep <= 0:
		return fmt.Errorf("%w: sampling steps must be positive", ErrInvalid)
	}

	// K2 > R1+R2 keeps z positive for every rotation, so 1/z is finite
	if c.Camera.Distance <= t.TubeRadius+t.CentralRadius {
		return fmt.Errorf("%w: camera distance %g must exceed torus extent %g",
			ErrInvalid, c.Camera.Distance, t.TubeRadius+t.CentralRadius)
	}
	if c.Camera.Aspect <= 0 || c.Camera.Fill <= 0 {
		return fmt.Errorf("%w: camera aspect and fill must be positive", ErrInvalid)
	}

	if c.Shading.Ramp == "" {
		return fmt.Errorf("%w: shading ramp is empty", ErrInvalid)
	}
	// Glyphs are written as single bytes, one per cell
	for i := 0; i < len(c.Shading.Ramp); i++ {
		if g := c.Shading.Ramp[i]; g < 0x20 || g > 0x7e {
			return fmt.Errorf("%w: shading ramp byte %d (%#02x) is not printable ASCII", ErrInvalid, i, g)
		}
	}
	if c.Shading.Scale <= 0 {
		return fmt.Errorf("%w: shading scale must be positive", ErrInvalid)
	}

	if c.Frame.Interval <= 0 {
		return fmt.Errorf("%w: frame interval must be positive", ErrInvalid)
	}

	term := c.Terminal
	if !validBackend(term.Backend) {
		return fmt.Errorf("%w: unknown terminal backend %q", ErrInvalid, term.Backend)
	}
	if term.MinWidth < 1 || term.MinHeight < 1 {
		return fmt.Errorf("%w: minimum geometry must be at least 1x1", ErrInvalid)
	}
	if term.DefaultWidth < term.MinWidth || term.DefaultHeight < term.MinHeight {
		return fmt.Errorf("%w: default geometry %dx%d below minimum %dx%d",
			ErrInvalid, term.DefaultWidth, term.DefaultHeight, term.MinWidth, term.MinHeight)
	}
	if term.MaxCells < term.MinWidth*term.MinHeight {
		return fmt.Errorf("%w: max cells %d below minimum geometry", ErrInvalid, term.MaxCells)
	}

	if c.Mirror.Listen != "" && c.Mirror.WriteTimeout <= 0 {
		return fmt.Errorf("%w: mirror write timeout must be positive", ErrInvalid)
	}
	return nil
}

func validBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}
