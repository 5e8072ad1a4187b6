package terminal

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/lixenwraith/donut/config"
)

// sizeFunc queries the terminal geometry
type sizeFunc func() (width, height int, err error)

// ANSI writes frames as raw bytes with escape sequences
type ANSI struct {
	out    io.Writer
	writer *bufio.Writer
	query  sizeFunc
	fd     uintptr
	tty    bool

	defaultWidth  int
	defaultHeight int
	warned        bool

	mu          sync.Mutex
	initialized bool
	finalized   bool
}

// NewANSI creates a surface on out, querying its size through the file descriptor
func NewANSI(out *os.File, cfg config.Terminal) *ANSI {
	fd := out.Fd()
	a := newANSI(out, func() (int, int, error) { return querySize(fd) }, cfg)
	a.fd = fd
	a.tty = term.IsTerminal(int(fd))
	return a
}

// newANSI creates a surface on any writer with an explicit size source
// The writer is treated as a non-terminal until NewANSI marks it as a tty
func newANSI(w io.Writer, query sizeFunc, cfg config.Terminal) *ANSI {
	return &ANSI{
		out:           w,
		writer:        bufio.NewWriterSize(w, 64*1024),
		query:         query,
		defaultWidth:  cfg.DefaultWidth,
		defaultHeight: cfg.DefaultHeight,
	}
}

// Init enters the alternate screen and hides the cursor when writing to a terminal
func (a *ANSI) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}
	a.initialized = true

	if !a.tty {
		return nil
	}

	// Windows consoles need VT processing switched on; no-op elsewhere
	if err := enableVirtualTerminal(a.fd); err != nil {
		log.Printf("terminal: enable virtual terminal: %v", err)
	}

	a.writer.Write(csiAltScreenEnter)
	a.writer.Write(csiCursorHide)
	a.writer.Write(csiAutoWrapOff)
	return a.writer.Flush()
}

// Fini restores cursor, wrapping and the main screen
func (a *ANSI) Fini() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized || a.finalized {
		return
	}
	a.finalized = true

	if !a.tty {
		a.writer.Flush()
		return
	}

	a.writer.Write(csiCursorShow)
	a.writer.Write(csiAltScreenExit)
	// Re-enable wrap after leaving the alt screen so the main buffer has it
	a.writer.Write(csiAutoWrapOn)
	a.writer.Write(csiSGR0)
	a.writer.Flush()
}

// Size returns the terminal geometry or the configured default
func (a *ANSI) Size() (int, int) {
	w, h, err := a.query()
	if err == nil && (w <= 0 || h <= 0) {
		err = fmt.Errorf("%w: reported %dx%d", ErrGeometryUnavailable, w, h)
	}
	if err != nil {
		if !a.warned {
			a.warned = true
			log.Printf("terminal: %v, using %dx%d", err, a.defaultWidth, a.defaultHeight)
		}
		return a.defaultWidth, a.defaultHeight
	}
	return w, h
}

// Clear erases the screen
func (a *ANSI) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.writer.Write(csiClear)
	return a.writer.Flush()
}

// WriteFrame homes the cursor and writes each row, overwriting the previous frame in place
// No newline follows the last row so a full-height frame never scrolls
func (a *ANSI) WriteFrame(glyphs []byte, width, height int) error {
	if err := checkFrame(glyphs, width, height); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	w := a.writer
	w.Write(csiHome)
	for y := 0; y < height; y++ {
		if y > 0 {
			w.WriteByte('\n')
		}
		w.Write(glyphs[y*width : (y+1)*width])
	}
	return w.Flush()
}
