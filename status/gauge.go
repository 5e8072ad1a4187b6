package status

import (
	"math"
	"sync/atomic"
)

// Gauge is a float64 metric stored as IEEE bits; the zero value reads 0
type Gauge struct {
	bits atomic.Uint64
}

// Set stores v
func (g *Gauge) Set(v float64) {
	g.bits.Store(math.Float64bits(v))
}

// Get loads the current value
func (g *Gauge) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Max raises the gauge to v when v is larger and reports whether it did
// NaN never replaces the stored value
func (g *Gauge) Max(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	for {
		old := g.bits.Load()
		if math.Float64frombits(old) >= v {
			return false
		}
		if g.bits.CompareAndSwap(old, math.Float64bits(v)) {
			return true
		}
	}
}
