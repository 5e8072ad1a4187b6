package core

import (
	"errors"
	"fmt"
	"math/bits"
	"runtime"
)

var (
	// ErrAllocation reports that grid storage could not be obtained or grown
	ErrAllocation = errors.New("grid allocation failed")

	// ErrDimensions reports a non-positive width or height
	ErrDimensions = errors.New("invalid grid dimensions")
)

// Grid is a row-major 2D container of cells with explicit resizing
// Contents are unspecified after Resize; callers Fill before use
type Grid[T any] struct {
	cells    []T
	width    int
	height   int
	maxCells int
}

// NewGrid creates an empty grid that refuses to grow past maxCells (<= 0 means unbounded)
func NewGrid[T any](maxCells int) *Grid[T] {
	return &Grid[T]{maxCells: maxCells}
}

// Width returns the grid width
func (g *Grid[T]) Width() int {
	return g.width
}

// Height returns the grid height
func (g *Grid[T]) Height() int {
	return g.height
}

// Len returns width*height
func (g *Grid[T]) Len() int {
	return len(g.cells)
}

// Resize sets new dimensions, reusing storage when capacity suffices
// On error the grid keeps its previous dimensions and storage
func (g *Grid[T]) Resize(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}

	hi, size := bits.Mul64(uint64(width), uint64(height))
	if hi != 0 || size > uint64(maxInt) {
		return fmt.Errorf("%w: %dx%d overflows cell count", ErrAllocation, width, height)
	}
	n := int(size)
	if g.maxCells > 0 && n > g.maxCells {
		return fmt.Errorf("%w: %dx%d exceeds %d cells", ErrAllocation, width, height, g.maxCells)
	}

	if cap(g.cells) >= n {
		g.cells = g.cells[:n]
	} else {
		cells, err := allocate[T](n)
		if err != nil {
			return fmt.Errorf("%w: %dx%d: %v", ErrAllocation, width, height, err)
		}
		g.cells = cells
	}

	g.width = width
	g.height = height
	return nil
}

// Reset drops to zero dimensions, keeping storage for reuse
func (g *Grid[T]) Reset() {
	g.cells = g.cells[:0]
	g.width = 0
	g.height = 0
}

const maxInt = int(^uint(0) >> 1)

// allocate converts a recoverable runtime allocation panic into an error
func allocate[T any](n int) (cells []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			re, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			err = re
		}
	}()
	return make([]T, n), nil
}

// Fill sets every cell to v using exponential copy
func (g *Grid[T]) Fill(v T) {
	if len(g.cells) == 0 {
		return
	}
	g.cells[0] = v
	for filled := 1; filled < len(g.cells); filled *= 2 {
		copy(g.cells[filled:], g.cells[:filled])
	}
}

// inBounds reports whether (x, y) addresses a cell
func (g *Grid[T]) inBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// index returns the row-major offset of (x, y); caller checks bounds
func (g *Grid[T]) index(x, y int) int {
	return y*g.width + x
}

// At returns the cell at (x, y)
func (g *Grid[T]) At(x, y int) (T, bool) {
	if !g.inBounds(x, y) {
		var zero T
		return zero, false
	}
	return g.cells[g.index(x, y)], true
}

// Set writes the cell at (x, y), reporting false when out of bounds
func (g *Grid[T]) Set(x, y int, v T) bool {
	if !g.inBounds(x, y) {
		return false
	}
	g.cells[g.index(x, y)] = v
	return true
}

// Cells exposes the backing slice, valid until the next Resize
func (g *Grid[T]) Cells() []T {
	return g.cells
}
