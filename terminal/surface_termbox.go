package terminal

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/core"
)

// termbox entry points used by the key loop, replaced in tests
var (
	termboxPoll      = termbox.PollEvent
	termboxInterrupt = termbox.Interrupt
	termboxClose     = termbox.Close
)

// pollErrorBackoff paces PollEvent retries after a read error
const pollErrorBackoff = 10 * time.Millisecond

// Termbox draws frames through termbox-go
// termbox keeps process-global state: only one Termbox may be initialized at a time
type Termbox struct {
	defaultWidth  int
	defaultHeight int

	interrupts    chan struct{}
	interruptOnce sync.Once
	finiOnce      sync.Once
	started       atomic.Bool
	done          chan struct{}
}

// NewTermbox creates an uninitialized termbox surface
func NewTermbox(cfg config.Terminal) *Termbox {
	return &Termbox{
		defaultWidth:  cfg.DefaultWidth,
		defaultHeight: cfg.DefaultHeight,
		interrupts:    make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Init takes over the terminal in grayscale mode and starts the key loop
func (t *Termbox) Init() error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("termbox init: %w", err)
	}
	termbox.SetOutputMode(termbox.OutputGrayscale)
	termbox.HideCursor()

	t.started.Store(true)
	core.Go(t.pollEvents)
	return nil
}

// pollEvents runs until Interrupt; read errors are logged and polling resumes
// Interrupt is an unbuffered send, so the loop must stay alive to receive it
func (t *Termbox) pollEvents() {
	defer close(t.done)
	failing := false
	for {
		ev := termboxPoll()
		switch ev.Type {
		case termbox.EventInterrupt:
			return
		case termbox.EventError:
			if !failing {
				log.Printf("terminal: termbox poll: %v", ev.Err)
				failing = true
			}
			time.Sleep(pollErrorBackoff)
			continue
		case termbox.EventKey:
			if ev.Key == termbox.KeyCtrlC || ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
				t.interruptOnce.Do(func() { close(t.interrupts) })
			}
		}
		failing = false
	}
}

// Interrupts is closed on the first quit key
func (t *Termbox) Interrupts() <-chan struct{} {
	return t.interrupts
}

// Fini stops the key loop and restores the terminal
func (t *Termbox) Fini() {
	t.finiOnce.Do(func() {
		if !t.started.Load() {
			return
		}
		select {
		case <-t.done:
		default:
			termboxInterrupt()
			<-t.done
		}
		termboxClose()
	})
}

// Size returns the termbox back buffer size or the configured default
func (t *Termbox) Size() (int, int) {
	w, h := termbox.Size()
	if w <= 0 || h <= 0 {
		return t.defaultWidth, t.defaultHeight
	}
	return w, h
}

// Clear erases the back buffer and the screen
func (t *Termbox) Clear() error {
	if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
		return err
	}
	return termbox.Flush()
}

// WriteFrame copies glyphs into the back buffer and flushes
func (t *Termbox) WriteFrame(glyphs []byte, width, height int) error {
	if err := checkFrame(glyphs, width, height); err != nil {
		return err
	}
	for y := 0; y < height; y++ {
		row := glyphs[y*width : (y+1)*width]
		for x, g := range row {
			termbox.SetCell(x, y, rune(g), termbox.ColorDefault, termbox.ColorDefault)
		}
	}
	return termbox.Flush()
}
