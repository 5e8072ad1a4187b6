// Package snapshot renders a glyph frame to a PNG image using a fixed 7x13 bitmap font.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Cell size of basicfont.Face7x13 in pixels
const (
	CellWidth  = 7
	CellHeight = 13
)

var (
	background = color.Black
	foreground = color.White
)

// Image draws row-major glyphs as white text on black, one 7x13 cell per glyph
func Image(glyphs []byte, width, height int) (*image.RGBA, error) {
	if width < 1 || height < 1 || len(glyphs) < width*height {
		return nil, fmt.Errorf("snapshot: %d glyphs for %dx%d", len(glyphs), width, height)
	}

	face := basicfont.Face7x13
	img := image.NewRGBA(image.Rect(0, 0, width*CellWidth, height*CellHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(foreground),
		Face: face,
	}
	for y := 0; y < height; y++ {
		// Dot is the baseline origin; Face7x13 has a fixed advance so a row lands on cell boundaries
		d.Dot = fixed.P(0, y*CellHeight+face.Ascent)
		d.DrawBytes(glyphs[y*width : (y+1)*width])
	}
	return img, nil
}

// WritePNG encodes the frame to w
func WritePNG(w io.Writer, glyphs []byte, width, height int) error {
	img, err := Image(glyphs, width, height)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG writes the frame to a PNG file at path
func SavePNG(path string, glyphs []byte, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := WritePNG(f, glyphs, width, height); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
