package parameter

// Camera and projection configuration
const (
	// ViewerDistance is K2, the distance from the viewer to the torus centre
	// Must exceed TubeRadius+CentralRadius so every sample stays in front of the viewer
	ViewerDistance = 3.0

	// CharAspect compensates for terminal cells being taller than wide
	// 0.45..0.7 depending on font
	CharAspect = 0.5

	// ScreenFill scales K1 so the torus spans a fixed fraction of the screen width
	// K1 = width * ViewerDistance * ScreenFill / (TubeRadius + CentralRadius)
	ScreenFill = 3.0 / 8.0
)
