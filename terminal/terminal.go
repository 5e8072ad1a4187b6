package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lixenwraith/donut/config"
)

var (
	// ErrGeometryUnavailable reports a failed terminal size query
	ErrGeometryUnavailable = errors.New("terminal geometry unavailable")

	// ErrUnknownBackend reports an unsupported backend name
	ErrUnknownBackend = errors.New("unknown terminal backend")

	// ErrShortFrame reports a glyph slice smaller than width*height
	ErrShortFrame = errors.New("frame smaller than geometry")
)

// Surface is the terminal a frame driver draws into
type Surface interface {
	// Init prepares the terminal (alternate screen, hidden cursor)
	Init() error

	// Fini restores terminal state. Safe to call multiple times
	Fini()

	// Size returns the current geometry, substituting the default when unavailable
	Size() (width, height int)

	// Clear erases the visible area
	Clear() error

	// WriteFrame draws row-major glyphs from the top-left corner
	WriteFrame(glyphs []byte, width, height int) error
}

// New builds the surface named by cfg.Backend on stdout
func New(cfg config.Terminal) (Surface, error) {
	switch cfg.Backend {
	case "", "ansi":
		return NewANSI(os.Stdout, cfg), nil
	case "tcell":
		return NewTcell(cfg)
	case "termbox":
		return NewTermbox(cfg), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

func checkFrame(glyphs []byte, width, height int) error {
	if width < 0 || height < 0 || len(glyphs) < width*height {
		return fmt.Errorf("%w: %d cells for %dx%d", ErrShortFrame, len(glyphs), width, height)
	}
	return nil
}

// EmergencyReset attempts to restore the terminal to a sane state
// Call this from panic recovery if Fini() cannot be called normally
func EmergencyReset(w io.Writer) {
	w.Write(csiCursorShow)
	w.Write(csiAltScreenExit)
	w.Write(csiAutoWrapOn)
	w.Write(csiSGR0)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}
}
