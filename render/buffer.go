package render

import (
	"github.com/lixenwraith/donut/core"
)

// Buffer pairs the frame buffer of glyphs with the depth buffer of 1/z values
// Both grids always share dimensions; depth 0 means nothing drawn
type Buffer struct {
	glyphs *core.Grid[byte]
	depth  *core.Grid[float64]
	blank  byte
}

// NewBuffer creates unsized buffers capped at maxCells each
func NewBuffer(maxCells int, blank byte) *Buffer {
	return &Buffer{
		glyphs: core.NewGrid[byte](maxCells),
		depth:  core.NewGrid[float64](maxCells),
		blank:  blank,
	}
}

// Resize resizes both grids or neither
// Depth is grown first as it is the larger allocation
func (b *Buffer) Resize(width, height int) error {
	oldW, oldH := b.depth.Width(), b.depth.Height()

	if err := b.depth.Resize(width, height); err != nil {
		return err
	}
	if err := b.glyphs.Resize(width, height); err != nil {
		if oldW == 0 {
			b.depth.Reset()
		} else {
			// Shrinking back within existing capacity cannot fail
			_ = b.depth.Resize(oldW, oldH)
		}
		return err
	}
	return nil
}

// Clear resets glyphs to blank and depth to zero
func (b *Buffer) Clear() {
	b.glyphs.Fill(b.blank)
	b.depth.Fill(0)
}

// Width returns the buffer width in cells
func (b *Buffer) Width() int {
	return b.glyphs.Width()
}

// Height returns the buffer height in cells
func (b *Buffer) Height() int {
	return b.glyphs.Height()
}

// Allocated reports whether the buffers have usable dimensions
func (b *Buffer) Allocated() bool {
	return b.glyphs.Len() > 0
}

// Frame returns the row-major glyphs, valid until the next Resize
func (b *Buffer) Frame() []byte {
	return b.glyphs.Cells()
}

// plot writes glyph g at (x, y) when ooz is nearer than what the cell holds
// Strict comparison: an equal depth keeps the earlier sample
func (b *Buffer) plot(x, y int, ooz float64, g byte) bool {
	cur, ok := b.depth.At(x, y)
	if !ok || ooz <= cur {
		return false
	}
	b.depth.Set(x, y, ooz)
	b.glyphs.Set(x, y, g)
	return true
}
