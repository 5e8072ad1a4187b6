// Package status collects runtime counters from the render loop and the mirror.
package status

import (
	"sync/atomic"
)

// Registry is the central metrics facade
// Components cache pointers at construction; the frame loop writes atomics directly
type Registry struct {
	Ints    *MetricMap[atomic.Int64]
	Gauges  *MetricMap[Gauge]
	Labels  *MetricMap[Label]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Ints:    NewMetricMap[atomic.Int64](),
		Gauges:  NewMetricMap[Gauge](),
		Labels:  NewMetricMap[Label](),
	}
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Gauges.Count() + r.Labels.Count()
}

// Snapshot copies every metric into a plain map, e.g. for JSON
func (r *Registry) Snapshot() map[string]any {
	out := make(map[string]any, r.TotalCount())
	r.Ints.Range(func(k string, v *atomic.Int64) { out[k] = v.Load() })
	r.Gauges.Range(func(k string, v *Gauge) { out[k] = v.Get() })
	r.Labels.Range(func(k string, v *Label) { out[k] = v.Load() })
	return out
}
