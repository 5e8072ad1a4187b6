package terminal

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/core"
)

// Tcell draws frames through a tcell screen
// The screen puts the tty in raw mode, so Ctrl-C, Escape and 'q' are
// delivered as key events and surfaced through Interrupts
type Tcell struct {
	screen tcell.Screen
	style  tcell.Style

	defaultWidth  int
	defaultHeight int

	interrupts    chan struct{}
	interruptOnce sync.Once
	finiOnce      sync.Once
	started       atomic.Bool
	done          chan struct{}
}

// NewTcell creates a surface on the controlling terminal
func NewTcell(cfg config.Terminal) (*Tcell, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("tcell screen: %w", err)
	}
	return NewTcellScreen(screen, cfg), nil
}

// NewTcellScreen wraps an existing screen, e.g. tcell.NewSimulationScreen
func NewTcellScreen(screen tcell.Screen, cfg config.Terminal) *Tcell {
	return &Tcell{
		screen:        screen,
		style:         tcell.StyleDefault,
		defaultWidth:  cfg.DefaultWidth,
		defaultHeight: cfg.DefaultHeight,
		interrupts:    make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Init initializes the screen and starts the event loop
func (t *Tcell) Init() error {
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("tcell init: %w", err)
	}
	t.screen.HideCursor()
	t.screen.Clear()

	t.started.Store(true)
	core.Go(t.pollEvents)
	return nil
}

func (t *Tcell) pollEvents() {
	defer close(t.done)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				t.interruptOnce.Do(func() { close(t.interrupts) })
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// Interrupts is closed on the first quit key
func (t *Tcell) Interrupts() <-chan struct{} {
	return t.interrupts
}

// Fini restores the terminal and waits for the event loop to exit
func (t *Tcell) Fini() {
	t.finiOnce.Do(func() {
		if !t.started.Load() {
			return
		}
		t.screen.Fini()
		<-t.done
	})
}

// Size returns the screen size or the configured default
func (t *Tcell) Size() (int, int) {
	w, h := t.screen.Size()
	if w <= 0 || h <= 0 {
		return t.defaultWidth, t.defaultHeight
	}
	return w, h
}

// Clear erases the screen
func (t *Tcell) Clear() error {
	t.screen.Clear()
	t.screen.Sync()
	return nil
}

// WriteFrame copies glyphs into the cell buffer and shows it
func (t *Tcell) WriteFrame(glyphs []byte, width, height int) error {
	if err := checkFrame(glyphs, width, height); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		row := glyphs[y*width : (y+1)*width]
		for x, g := range row {
			t.screen.SetContent(x, y, rune(g), nil, t.style)
		}
	}
	t.screen.Show()
	return nil
}
