package terminal

import (
	"fmt"
	"sync"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/core"
)

// interrupter is implemented by surfaces that own keyboard input
type interrupter interface {
	Interrupts() <-chan struct{}
}

// TerminalService manages the surface lifecycle for the service hub
type TerminalService struct {
	factory func(config.Terminal) (Surface, error)
	surface Surface
	mu      sync.Mutex
	running bool
}

// NewService creates a terminal service using New as the surface factory
func NewService() *TerminalService {
	return &TerminalService{factory: New}
}

// newServiceWith creates a terminal service around an existing surface
func newServiceWith(surface Surface) *TerminalService {
	return &TerminalService{
		factory: func(config.Terminal) (Surface, error) { return surface, nil },
	}
}

// Name implements Service
func (s *TerminalService) Name() string {
	return "terminal"
}

// Dependencies implements Service
func (s *TerminalService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: *config.Config (optional, defaults to config.Default())
func (s *TerminalService) Init(args ...any) error {
	cfg := config.Default()
	if len(args) > 0 {
		if c, ok := args[0].(*config.Config); ok && c != nil {
			cfg = c
		}
	}

	surface, err := s.factory(cfg.Terminal)
	if err != nil {
		return err
	}
	if err := surface.Init(); err != nil {
		return fmt.Errorf("terminal init: %w", err)
	}
	s.surface = surface
	core.SetCrashTerminal(surface)
	return nil
}

// Start implements Service
func (s *TerminalService) Start() error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	return nil
}

// Stop implements Service - restores the terminal
func (s *TerminalService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.surface != nil {
		s.surface.Fini()
		core.SetCrashTerminal(nil)
	}
	return nil
}

// Surface returns the initialized surface
func (s *TerminalService) Surface() Surface {
	return s.surface
}

// Interrupts fires when the surface reads a quit key
// Returns nil for surfaces that leave input to the tty driver (SIGINT)
func (s *TerminalService) Interrupts() <-chan struct{} {
	if in, ok := s.surface.(interrupter); ok {
		return in.Interrupts()
	}
	return nil
}
