// Package frame runs the render loop: poll geometry, rasterize, present, advance.
package frame

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/core"
	"github.com/lixenwraith/donut/parameter"
	"github.com/lixenwraith/donut/render"
	"github.com/lixenwraith/donut/status"
	"github.com/lixenwraith/donut/terminal"
)

// Sink receives every completed frame after the terminal has been written
type Sink interface {
	WriteFrame(glyphs []byte, width, height int) error
}

// Option configures a Driver
type Option func(*Driver)

// WithSinks adds frame consumers besides the terminal
func WithSinks(sinks ...Sink) Option {
	return func(d *Driver) {
		d.sinks = append(d.sinks, sinks...)
	}
}

// WithStatus publishes loop counters into reg
func WithStatus(reg *status.Registry) Option {
	return func(d *Driver) {
		d.status = reg
	}
}

// metrics are cached registry pointers written once per frame
type metrics struct {
	frames         *atomic.Int64
	resizes        *atomic.Int64
	resizeFailures *atomic.Int64
	sinkErrors     *atomic.Int64
	samples        *atomic.Int64
	renderMs       *status.Gauge
	renderPeakMs   *status.Gauge
	angleA         *status.Gauge
	angleB         *status.Gauge
	geometry       *status.Label
}

func newMetrics(reg *status.Registry) metrics {
	return metrics{
		frames:         reg.Ints.Get("frame.count"),
		resizes:        reg.Ints.Get("frame.resizes"),
		resizeFailures: reg.Ints.Get("frame.resize_failures"),
		sinkErrors:     reg.Ints.Get("frame.sink_errors"),
		samples:        reg.Ints.Get("frame.samples"),
		renderMs:       reg.Gauges.Get("frame.render_ms"),
		renderPeakMs:   reg.Gauges.Get("frame.render_ms_peak"),
		angleA:         reg.Gauges.Get("frame.angle_a"),
		angleB:         reg.Gauges.Get("frame.angle_b"),
		geometry:       reg.Labels.Get("frame.geometry"),
	}
}

// Driver owns the frame and depth buffers and the rotation state
// Single-threaded: Step and Run must not be called concurrently
type Driver struct {
	cfg     config.Config
	surface terminal.Surface
	sinks   []Sink

	raster *render.Rasterizer
	buf    *render.Buffer

	a, b   float64
	frames uint64
	limit  uint64
	sleep  func(ctx context.Context, d time.Duration) // returns early when ctx is done

	status *status.Registry
	stats  metrics

	// last geometry that failed to allocate, to log each failure once
	failedW, failedH int
}

// New creates a driver drawing to surface
func New(cfg config.Config, surface terminal.Surface, opts ...Option) *Driver {
	d := &Driver{
		cfg:     cfg,
		surface: surface,
		raster:  render.NewRasterizer(cfg),
		buf:     render.NewBuffer(cfg.Terminal.MaxCells, parameter.BlankGlyph),
		limit:   cfg.Frame.Limit,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.status == nil {
		d.status = status.NewRegistry()
	}
	d.stats = newMetrics(d.status)

	samples := d.raster.Torus().Count()
	d.stats.samples.Store(int64(samples))
	log.Printf("frame: %d surface samples per frame", samples)
	return d
}

// Step produces and presents one frame, then advances the angles
// Returned errors are fatal: first-frame allocation failure or a failed terminal write
func (d *Driver) Step() error {
	if err := d.syncGeometry(); err != nil {
		return err
	}

	start := time.Now()
	d.buf.Clear()
	d.raster.Render(d.buf, d.a, d.b)
	ms := float64(time.Since(start)) / float64(time.Millisecond)
	d.stats.renderMs.Set(ms)
	d.stats.renderPeakMs.Max(ms)

	glyphs, w, h := d.buf.Frame(), d.buf.Width(), d.buf.Height()
	if err := d.surface.WriteFrame(glyphs, w, h); err != nil {
		return fmt.Errorf("frame %d: write: %w", d.frames, err)
	}
	for _, s := range d.sinks {
		if err := s.WriteFrame(glyphs, w, h); err != nil {
			d.stats.sinkErrors.Add(1)
			log.Printf("frame %d: sink %T: %v", d.frames, s, err)
		}
	}

	d.advance()
	return nil
}

// syncGeometry resizes the buffers when the clamped terminal size changed
func (d *Driver) syncGeometry() error {
	w, h := d.surface.Size()
	w = max(w, d.cfg.Terminal.MinWidth)
	h = max(h, d.cfg.Terminal.MinHeight)

	if d.buf.Allocated() && w == d.buf.Width() && h == d.buf.Height() {
		return nil
	}

	if err := d.buf.Resize(w, h); err != nil {
		if errors.Is(err, core.ErrAllocation) && d.buf.Allocated() {
			d.stats.resizeFailures.Add(1)
			if w != d.failedW || h != d.failedH {
				d.failedW, d.failedH = w, h
				log.Printf("frame: resize to %dx%d failed: %v, keeping %dx%d",
					w, h, err, d.buf.Width(), d.buf.Height())
			}
			return nil
		}
		return fmt.Errorf("frame: resize to %dx%d: %w", w, h, err)
	}
	d.failedW, d.failedH = 0, 0

	// Stale glyphs outside the new frame would otherwise stay on screen
	if err := d.surface.Clear(); err != nil {
		return fmt.Errorf("frame: clear: %w", err)
	}
	d.stats.resizes.Add(1)
	d.stats.geometry.StoreGeometry(w, h)
	log.Printf("frame: geometry %dx%d", w, h)
	return nil
}

// advance rotates by one frame step; angles grow without bound
func (d *Driver) advance() {
	d.a += d.cfg.Frame.StepA
	d.b += d.cfg.Frame.StepB
	d.frames++

	d.stats.frames.Store(int64(d.frames))
	d.stats.angleA.Set(d.a)
	d.stats.angleB.Set(d.b)
}

// Run loops Step until ctx is done, the frame limit is reached, or a fatal error
// Cancellation is observed only between frames, so a started frame is always flushed
func (d *Driver) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if err := d.Step(); err != nil {
			return err
		}
		if d.limit > 0 && d.frames >= d.limit {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		d.sleep(ctx, d.cfg.Frame.Interval)
	}
	log.Printf("frame: stopped after %d frames", d.frames)
	return nil
}

// Angles returns the rotation of the next frame
func (d *Driver) Angles() (a, b float64) {
	return d.a, d.b
}

// Frames returns the number of frames presented
func (d *Driver) Frames() uint64 {
	return d.frames
}

// Geometry returns the current buffer dimensions
func (d *Driver) Geometry() (width, height int) {
	return d.buf.Width(), d.buf.Height()
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
