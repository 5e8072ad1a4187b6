package parameter

// Torus surface and sampling
const (
	// TubeRadius is R1, radius of the tube cross-section
	TubeRadius = 0.5

	// CentralRadius is R2, distance from the axis of revolution to the tube centre
	CentralRadius = 1.0

	// ThetaSpacing is the angular step around the tube cross-section
	ThetaSpacing = 0.05

	// PhiSpacing is the angular step around the axis of revolution
	PhiSpacing = 0.02
)

// Shading
const (
	// LuminanceRamp orders glyphs from sparse/dim to dense/bright
	LuminanceRamp = ".,-~:;=!*#$@"

	// LuminanceScale maps L into ramp indices before truncation
	LuminanceScale = 8.0

	// BlankGlyph fills cells with no visible surface
	BlankGlyph = ' '
)
