package status

import (
	"log"
	"slices"

	"github.com/lixenwraith/donut/config"
)

// StatusService wraps Registry as a Service
type StatusService struct {
	registry *Registry
}

// NewService creates a status service with an empty registry
func NewService() *StatusService {
	return &StatusService{
		registry: NewRegistry(),
	}
}

// Name implements Service
func (s *StatusService) Name() string {
	return "status"
}

// Dependencies implements Service
func (s *StatusService) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: *config.Config (optional), recorded as static labels
func (s *StatusService) Init(args ...any) error {
	if len(args) > 0 {
		if cfg, ok := args[0].(*config.Config); ok && cfg != nil {
			s.registry.Labels.Get("terminal.backend").Store(cfg.Terminal.Backend)
			s.registry.Labels.Get("mirror.listen").Store(cfg.Mirror.Listen)
		}
	}
	return nil
}

// Start implements Service
func (s *StatusService) Start() error {
	return nil
}

// Stop implements Service - logs the final counters
func (s *StatusService) Stop() error {
	snap := s.registry.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		log.Printf("status: %s = %v", k, snap[k])
	}
	return nil
}

// Registry returns the underlying metrics registry
func (s *StatusService) Registry() *Registry {
	return s.registry
}
