package status

import (
	"slices"
	"sync"
)

// MetricMap is a named set of metrics of type T
// Writers resolve a name once and keep the pointer; updates after that are lock-free
// Names are kept sorted as they register, so Range and /status output need no sort
type MetricMap[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
	names []string
}

// NewMetricMap creates an empty MetricMap
func NewMetricMap[T any]() *MetricMap[T] {
	return &MetricMap[T]{
		items: make(map[string]*T),
	}
}

// Get returns the metric registered under name, creating it on first use
func (m *MetricMap[T]) Get(name string) *T {
	m.mu.RLock()
	ptr := m.items[name]
	m.mu.RUnlock()
	if ptr != nil {
		return ptr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ptr := m.items[name]; ptr != nil {
		return ptr
	}

	ptr = new(T)
	m.items[name] = ptr
	i, _ := slices.BinarySearch(m.names, name)
	m.names = slices.Insert(m.names, i, name)
	return ptr
}

// Range visits metrics in name order under the read lock
// fn must not call Get on the same map
func (m *MetricMap[T]) Range(fn func(name string, ptr *T)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, name := range m.names {
		fn(name, m.items[name])
	}
}

// Count returns the number of registered metrics
func (m *MetricMap[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.names)
}
