package parameter

import "time"

// Frame loop timing
const (
	// FrameInterval is the pause after each flushed frame (~33 FPS before render cost)
	FrameInterval = 30 * time.Millisecond

	// AngleStepA is the per-frame tilt increment in radians
	AngleStepA = 0.07

	// AngleStepB is the per-frame spin increment in radians
	AngleStepB = 0.03
)

// Terminal geometry limits
const (
	// DefaultWidth and DefaultHeight substitute for an unavailable terminal size
	DefaultWidth  = 80
	DefaultHeight = 24

	// MinWidth and MinHeight clamp degenerate geometry reported by the terminal
	MinWidth  = 1
	MinHeight = 4

	// MaxCells caps a single buffer; a resize beyond it is an allocation failure
	MaxCells = 1 << 24
)

// DefaultBackend is the terminal surface used when none is configured
const DefaultBackend = "ansi"
