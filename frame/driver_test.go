package frame

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/core"
	"github.com/lixenwraith/donut/render"
	"github.com/lixenwraith/donut/status"
)

// fakeSurface reports scripted sizes and records presented frames
type fakeSurface struct {
	sizes    [][2]int // consumed one per Size call; the last one repeats
	frames   []string
	dims     [][2]int
	clears   int
	writeErr error
}

func (f *fakeSurface) Init() error { return nil }
func (f *fakeSurface) Fini()       {}

func (f *fakeSurface) Size() (int, int) {
	s := f.sizes[0]
	if len(f.sizes) > 1 {
		f.sizes = f.sizes[1:]
	}
	return s[0], s[1]
}

func (f *fakeSurface) Clear() error {
	f.clears++
	return nil
}

func (f *fakeSurface) WriteFrame(glyphs []byte, w, h int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.frames = append(f.frames, string(glyphs))
	f.dims = append(f.dims, [2]int{w, h})
	return nil
}

type sinkFunc func(glyphs []byte, w, h int) error

func (s sinkFunc) WriteFrame(glyphs []byte, w, h int) error { return s(glyphs, w, h) }

func noSleep(context.Context, time.Duration) {}

func testConfig() config.Config {
	return *config.Default()
}

func TestStep_FrameMatchesGeometry(t *testing.T) {
	surface := &fakeSurface{sizes: [][2]int{{80, 24}, {40, 10}}}
	d := New(testConfig(), surface)

	for i := 0; i < 3; i++ {
		if err := d.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	want := [][2]int{{80, 24}, {40, 10}, {40, 10}}
	for i, dim := range surface.dims {
		if dim != want[i] {
			t.Errorf("Frame %d: expected %v, got %v", i, want[i], dim)
		}
		if len(surface.frames[i]) != dim[0]*dim[1] {
			t.Errorf("Frame %d: expected %d glyphs, got %d", i, dim[0]*dim[1], len(surface.frames[i]))
		}
	}

	// Clear on first frame and on the single geometry change
	if surface.clears != 2 {
		t.Errorf("Expected 2 clears, got %d", surface.clears)
	}
	if w, h := d.Geometry(); w != 40 || h != 10 {
		t.Errorf("Expected geometry 40x10, got %dx%d", w, h)
	}
}

func TestStep_ClampsGeometry(t *testing.T) {
	tests := []struct {
		name  string
		size  [2]int
		wantW int
		wantH int
	}{
		{"zero", [2]int{0, 0}, 1, 4},
		{"short", [2]int{20, 2}, 20, 4},
		{"negative width", [2]int{-5, 10}, 1, 10},
		{"normal", [2]int{30, 12}, 30, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := &fakeSurface{sizes: [][2]int{tt.size}}
			d := New(testConfig(), surface)
			if err := d.Step(); err != nil {
				t.Fatalf("Step: %v", err)
			}
			if w, h := d.Geometry(); w != tt.wantW || h != tt.wantH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantW, tt.wantH, w, h)
			}
			if len(surface.frames[0]) != tt.wantW*tt.wantH {
				t.Errorf("Frame length %d does not match geometry", len(surface.frames[0]))
			}
		})
	}
}

func TestStep_MatchesDirectRender(t *testing.T) {
	cfg := testConfig()
	surface := &fakeSurface{sizes: [][2]int{{80, 24}}}
	d := New(cfg, surface)

	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	buf := render.NewBuffer(cfg.Terminal.MaxCells, ' ')
	buf.Resize(80, 24)
	buf.Clear()
	render.NewRasterizer(cfg).Render(buf, 0, 0)

	if surface.frames[0] != string(buf.Frame()) {
		t.Error("First frame should be the torus at A=0, B=0")
	}
	if !strings.ContainsAny(surface.frames[0], "@$#") {
		t.Error("Expected some bright glyphs in the first frame")
	}
}

func TestStep_AdvancesAngles(t *testing.T) {
	cfg := testConfig()
	d := New(cfg, &fakeSurface{sizes: [][2]int{{10, 4}}})

	for i := 0; i < 2; i++ {
		if err := d.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	a, b := d.Angles()
	if math.Abs(a-2*cfg.Frame.StepA) > 1e-12 || math.Abs(b-2*cfg.Frame.StepB) > 1e-12 {
		t.Errorf("Expected angles (%v, %v), got (%v, %v)", 2*cfg.Frame.StepA, 2*cfg.Frame.StepB, a, b)
	}
	if d.Frames() != 2 {
		t.Errorf("Expected 2 frames, got %d", d.Frames())
	}
}

func TestAdvance_Unbounded(t *testing.T) {
	d := New(testConfig(), &fakeSurface{sizes: [][2]int{{80, 24}}})

	for i := 0; i < 10000; i++ {
		d.advance()
	}

	a, b := d.Angles()
	if math.Abs(a-700) > 1e-6 {
		t.Errorf("Expected A near 700 after 10000 frames, got %v", a)
	}
	if math.Abs(b-300) > 1e-6 {
		t.Errorf("Expected B near 300 after 10000 frames, got %v", b)
	}
}

func TestStep_AllocationFailureKeepsGeometry(t *testing.T) {
	cfg := testConfig()
	cfg.Terminal.MaxCells = 80 * 24
	surface := &fakeSurface{sizes: [][2]int{{80, 24}, {100, 30}, {100, 30}, {60, 20}}}
	d := New(cfg, surface)

	for i := 0; i < 4; i++ {
		if err := d.Step(); err != nil {
			t.Fatalf("Step %d: unexpected error %v", i, err)
		}
	}

	want := [][2]int{{80, 24}, {80, 24}, {80, 24}, {60, 20}}
	for i, dim := range surface.dims {
		if dim != want[i] {
			t.Errorf("Frame %d: expected %v, got %v", i, want[i], dim)
		}
	}
	if d.Frames() != 4 {
		t.Errorf("Expected rendering to continue, got %d frames", d.Frames())
	}
}

func TestStep_FirstAllocationFailureIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Terminal.MaxCells = 100
	surface := &fakeSurface{sizes: [][2]int{{80, 24}}}
	d := New(cfg, surface)

	err := d.Step()
	if !errors.Is(err, core.ErrAllocation) {
		t.Fatalf("Expected ErrAllocation, got %v", err)
	}
	if len(surface.frames) != 0 {
		t.Error("No frame should be presented without buffers")
	}
	if a, b := d.Angles(); a != 0 || b != 0 {
		t.Error("Angles should not advance on a failed frame")
	}
}

func TestStep_SinkErrorIsNotFatal(t *testing.T) {
	var got []int
	failing := sinkFunc(func([]byte, int, int) error { return errors.New("client gone") })
	recording := sinkFunc(func(glyphs []byte, w, h int) error {
		got = append(got, len(glyphs))
		return nil
	})

	d := New(testConfig(), &fakeSurface{sizes: [][2]int{{20, 5}}}, WithSinks(failing, recording))
	if err := d.Step(); err != nil {
		t.Fatalf("Sink failure should not stop the frame: %v", err)
	}
	if len(got) != 1 || got[0] != 100 {
		t.Errorf("Expected later sinks to still receive the frame, got %v", got)
	}
}

func TestStep_SurfaceErrorIsFatal(t *testing.T) {
	errWrite := errors.New("broken pipe")
	d := New(testConfig(), &fakeSurface{sizes: [][2]int{{20, 5}}, writeErr: errWrite})

	if err := d.Step(); !errors.Is(err, errWrite) {
		t.Errorf("Expected write error, got %v", err)
	}
}

func TestRun_FrameLimit(t *testing.T) {
	var sleeps []time.Duration
	sleep := func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }

	cfg := testConfig()
	cfg.Frame.Limit = 3
	surface := &fakeSurface{sizes: [][2]int{{20, 5}}}
	d := New(cfg, surface)
	d.sleep = sleep

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.Frames() != 3 || len(surface.frames) != 3 {
		t.Errorf("Expected 3 frames, got %d (%d presented)", d.Frames(), len(surface.frames))
	}
	if len(sleeps) != 2 {
		t.Errorf("Expected a pause between frames only, got %d", len(sleeps))
	}
	for _, s := range sleeps {
		if s != cfg.Frame.Interval {
			t.Errorf("Expected pause of %v, got %v", cfg.Frame.Interval, s)
		}
	}
}

func TestRun_CancelCompletesFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	surface := &fakeSurface{sizes: [][2]int{{20, 5}}}
	// Cancel while the second frame is being presented
	interrupt := sinkFunc(func([]byte, int, int) error {
		if len(surface.frames) == 2 {
			cancel()
		}
		return nil
	})

	d := New(testConfig(), surface, WithSinks(interrupt))
	d.sleep = noSleep
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run should stop cleanly, got %v", err)
	}
	if d.Frames() != 2 || len(surface.frames) != 2 {
		t.Errorf("Expected exactly 2 complete frames, got %d (%d presented)", d.Frames(), len(surface.frames))
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	surface := &fakeSurface{sizes: [][2]int{{20, 5}}}
	d := New(testConfig(), surface)
	d.sleep = noSleep
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(surface.frames) != 0 {
		t.Errorf("Expected no frames, got %d", len(surface.frames))
	}
}

func TestRun_FatalError(t *testing.T) {
	cfg := testConfig()
	cfg.Terminal.MaxCells = 10
	d := New(cfg, &fakeSurface{sizes: [][2]int{{80, 24}}})
	d.sleep = noSleep

	if err := d.Run(context.Background()); !errors.Is(err, core.ErrAllocation) {
		t.Errorf("Expected ErrAllocation from Run, got %v", err)
	}
}

func TestSleepContext_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepContext(ctx, time.Hour)
	if time.Since(start) > time.Second {
		t.Error("sleepContext should return immediately for a cancelled context")
	}
}

func TestStep_PublishesStatus(t *testing.T) {
	reg := status.NewRegistry()
	cfg := testConfig()
	cfg.Terminal.MaxCells = 80 * 24
	surface := &fakeSurface{sizes: [][2]int{{80, 24}, {100, 30}, {40, 10}}}
	failing := sinkFunc(func([]byte, int, int) error { return errors.New("gone") })
	d := New(cfg, surface, WithStatus(reg), WithSinks(failing))

	for i := 0; i < 3; i++ {
		if err := d.Step(); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	snap := reg.Snapshot()
	want := map[string]any{
		"frame.count":           int64(3),
		"frame.resizes":         int64(2),
		"frame.resize_failures": int64(1),
		"frame.sink_errors":     int64(3),
		"frame.geometry":        "40x10",
		"frame.samples":         int64(126 * 315),
	}
	for k, v := range want {
		if snap[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, snap[k])
		}
	}
	if peak := reg.Gauges.Get("frame.render_ms_peak").Get(); peak < reg.Gauges.Get("frame.render_ms").Get() {
		t.Errorf("frame.render_ms_peak %v below last render time", peak)
	}
	if a := reg.Gauges.Get("frame.angle_a").Get(); math.Abs(a-3*cfg.Frame.StepA) > 1e-12 {
		t.Errorf("frame.angle_a: expected %v, got %v", 3*cfg.Frame.StepA, a)
	}
}
