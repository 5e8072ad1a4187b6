package status

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/lixenwraith/donut/config"
)

func TestMetricMap_GetReturnsSamePointer(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	a := m.Get("frame.count")
	b := m.Get("frame.count")
	if a != b {
		t.Error("Expected cached pointer for the same key")
	}
	if m.Count() != 1 {
		t.Errorf("Expected one registration, got %d", m.Count())
	}
}

func TestMetricMap_ConcurrentGet(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()

	const goroutines = 50
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Get("shared").Add(1)
			}
		}()
	}
	wg.Wait()

	if got := m.Get("shared").Load(); got != goroutines*100 {
		t.Errorf("Expected %d, got %d", goroutines*100, got)
	}
	if m.Count() != 1 {
		t.Errorf("Expected 1 metric, got %d", m.Count())
	}
}

func TestMetricMap_RangeSorted(t *testing.T) {
	m := NewMetricMap[atomic.Int64]()
	for _, k := range []string{"mirror.clients", "frame.count", "frame.resizes", "frame.count", "mirror.frames_sent"} {
		m.Get(k)
	}

	var names []string
	m.Range(func(name string, _ *atomic.Int64) { names = append(names, name) })
	want := []string{"frame.count", "frame.resizes", "mirror.clients", "mirror.frames_sent"}
	if !slices.Equal(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
}

func TestGauge(t *testing.T) {
	var g Gauge
	if g.Get() != 0 {
		t.Error("Zero value should be 0")
	}
	g.Set(0.07)
	if g.Get() != 0.07 {
		t.Errorf("Set/Get: got %v", g.Get())
	}
}

func TestGauge_Max(t *testing.T) {
	var g Gauge
	steps := []struct {
		v      float64
		raised bool
		want   float64
	}{
		{1.5, true, 1.5},
		{0.4, false, 1.5},
		{1.5, false, 1.5},
		{math.NaN(), false, 1.5},
		{2.25, true, 2.25},
	}
	for _, s := range steps {
		if got := g.Max(s.v); got != s.raised {
			t.Errorf("Max(%v): expected %v, got %v", s.v, s.raised, got)
		}
		if g.Get() != s.want {
			t.Errorf("After Max(%v): expected %v, got %v", s.v, s.want, g.Get())
		}
	}
}

func TestGauge_MaxConcurrent(t *testing.T) {
	var g Gauge
	var wg sync.WaitGroup
	for i := 1; i <= 64; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			g.Max(v)
		}(float64(i))
	}
	wg.Wait()
	if g.Get() != 64 {
		t.Errorf("Expected peak 64, got %v", g.Get())
	}
}

func TestLabel_Truncates(t *testing.T) {
	var l Label
	if l.Load() != "" {
		t.Error("Zero value should be empty")
	}

	long := "0123456789012345678901234567890123456789"
	l.Store(long)
	if got := l.Load(); got != long[:MaxLabelLen] {
		t.Errorf("Expected truncation to %d bytes, got %q", MaxLabelLen, got)
	}

	// 'é' is two bytes and straddles the limit
	wide := "0123456789012345678901234567890é-tail"
	l.Store(wide)
	if got := l.Load(); got != wide[:31] || !utf8.ValidString(got) {
		t.Errorf("Expected cut before the split rune, got %q", got)
	}
}

func TestLabel_StoreGeometry(t *testing.T) {
	var l Label
	l.StoreGeometry(80, 24)
	if got := l.Load(); got != "80x24" {
		t.Errorf("Expected 80x24, got %q", got)
	}
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("frame.count").Store(3)
	r.Gauges.Get("frame.angle_a").Set(0.21)
	r.Labels.Get("frame.geometry").Store("80x24")

	snap := r.Snapshot()
	if len(snap) != 3 || r.TotalCount() != 3 {
		t.Fatalf("Expected 3 metrics, got %v", snap)
	}
	if snap["frame.count"] != int64(3) || snap["frame.angle_a"] != 0.21 || snap["frame.geometry"] != "80x24" {
		t.Errorf("Unexpected snapshot %v", snap)
	}
}

func TestStatusService_RecordsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Mirror.Listen = ":8080"

	s := NewService()
	if err := s.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.Start()
	defer s.Stop()

	if got := s.Registry().Labels.Get("terminal.backend").Load(); got != "ansi" {
		t.Errorf("Expected backend label ansi, got %q", got)
	}
	if got := s.Registry().Labels.Get("mirror.listen").Load(); got != ":8080" {
		t.Errorf("Expected listen label, got %q", got)
	}
}
