package render

import (
	"errors"
	"testing"

	"github.com/lixenwraith/donut/core"
)

func TestBuffer_ResizeAndClear(t *testing.T) {
	b := NewBuffer(0, ' ')
	if b.Allocated() {
		t.Fatal("Expected new buffer to be unallocated")
	}

	if err := b.Resize(80, 24); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	b.Clear()

	if b.Width() != 80 || b.Height() != 24 || len(b.Frame()) != 80*24 {
		t.Fatalf("Expected 80x24, got %dx%d (%d cells)", b.Width(), b.Height(), len(b.Frame()))
	}
	for i, g := range b.Frame() {
		if g != ' ' {
			t.Fatalf("Cell %d not blank after Clear: %q", i, g)
		}
	}
	if d, _ := b.depth.At(79, 23); d != 0 {
		t.Errorf("Expected zero depth, got %v", d)
	}
}

func TestBuffer_PlotDepthTest(t *testing.T) {
	b := NewBuffer(0, ' ')
	b.Resize(4, 4)
	b.Clear()

	if !b.plot(1, 1, 0.2, '.') {
		t.Error("Expected first plot to succeed")
	}
	if b.plot(1, 1, 0.1, '@') {
		t.Error("Expected farther sample to be rejected")
	}
	if b.plot(1, 1, 0.2, '#') {
		t.Error("Expected equal depth to keep the earlier sample")
	}
	if !b.plot(1, 1, 0.3, '$') {
		t.Error("Expected nearer sample to win")
	}
	if g, _ := b.glyphs.At(1, 1); g != '$' {
		t.Errorf("Expected '$', got %q", g)
	}
	if b.plot(4, 0, 1, 'x') || b.plot(0, -1, 1, 'x') {
		t.Error("Expected out-of-bounds plot to be rejected")
	}
}

func TestBuffer_ResizeFailureKeepsBothGrids(t *testing.T) {
	b := NewBuffer(100, ' ')
	if err := b.Resize(10, 10); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	err := b.Resize(11, 10)
	if !errors.Is(err, core.ErrAllocation) {
		t.Fatalf("Expected ErrAllocation, got %v", err)
	}
	if b.Width() != 10 || b.Height() != 10 {
		t.Errorf("Glyphs resized on failure: %dx%d", b.Width(), b.Height())
	}
	if b.depth.Width() != 10 || b.depth.Height() != 10 {
		t.Errorf("Depth resized on failure: %dx%d", b.depth.Width(), b.depth.Height())
	}
}
