// Command donut renders a rotating, shaded torus as ASCII art in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/donut/config"
	"github.com/lixenwraith/donut/core"
	"github.com/lixenwraith/donut/frame"
	"github.com/lixenwraith/donut/mirror"
	"github.com/lixenwraith/donut/parameter"
	"github.com/lixenwraith/donut/render"
	"github.com/lixenwraith/donut/service"
	"github.com/lixenwraith/donut/snapshot"
	"github.com/lixenwraith/donut/status"
	"github.com/lixenwraith/donut/terminal"
)

// options holds the parsed command line
type options struct {
	configPath string
	debug      bool
	backend    string
	frames     uint64
	serve      string
	snapshot   string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("donut", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "TOML configuration file")
	fs.BoolVar(&o.debug, "debug", false, "write logs to "+logDir+"/"+logFileName)
	fs.StringVar(&o.backend, "backend", "", "terminal backend: ansi, tcell, termbox")
	fs.Uint64Var(&o.frames, "frames", 0, "stop after n frames (0 runs until interrupted)")
	fs.StringVar(&o.serve, "serve", "", "mirror frames to browsers on addr, e.g. :8080")
	fs.StringVar(&o.snapshot, "snapshot", "", "write the first frame to a PNG file and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(o options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Terminal.Backend = o.backend
	}
	if o.frames > 0 {
		cfg.Frame.Limit = o.frames
	}
	if o.serve != "" {
		cfg.Mirror.Listen = o.serve
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "donut: %v\n", err)
		os.Exit(2)
	}
	os.Exit(run(o))
}

// run returns the process exit status
func run(o options) int {
	// Panic Recovery: restore the terminal before printing the crash
	core.SetCrashReset(func() { terminal.EmergencyReset(os.Stdout) })
	defer core.SetCrashReset(nil)
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	if logFile := setupLogging(o.debug); logFile != nil {
		defer logFile.Close()
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "donut: %v\n", err)
		return 1
	}

	if o.snapshot != "" {
		if err := writeSnapshot(cfg, o.snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "donut: %v\n", err)
			return 1
		}
		return 0
	}

	hub := service.NewHub()
	statusSvc := status.NewService()
	termSvc := terminal.NewService()
	mirrorSvc := mirror.New(statusSvc.Registry())
	for _, svc := range []service.Service{statusSvc, termSvc, mirrorSvc} {
		if err := hub.Register(svc); err != nil {
			fmt.Fprintf(os.Stderr, "donut: %v\n", err)
			return 1
		}
	}
	if err := hub.InitAll(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "donut: %v\n", err)
		return 1
	}
	if err := hub.StartAll(); err != nil {
		fmt.Fprintf(os.Stderr, "donut: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// tcell reads Ctrl-C as a key in raw mode, so no SIGINT arrives
	if interrupts := termSvc.Interrupts(); interrupts != nil {
		core.Go(func() {
			select {
			case <-interrupts:
				stop()
			case <-ctx.Done():
			}
		})
	}

	opts := []frame.Option{frame.WithStatus(statusSvc.Registry())}
	if cfg.Mirror.Listen != "" {
		opts = append(opts, frame.WithSinks(mirrorSvc))
	}
	driver := frame.New(*cfg, termSvc.Surface(), opts...)

	err = driver.Run(ctx)
	hub.StopAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "donut: %v\n", err)
		return 1
	}
	a, b := driver.Angles()
	w, h := driver.Geometry()
	log.Printf("donut: exit after %d frames at %dx%d, A=%.2f B=%.2f", driver.Frames(), w, h, a, b)
	return 0
}

// writeSnapshot renders the first frame at the default geometry without touching the terminal
func writeSnapshot(cfg *config.Config, path string) error {
	buf := render.NewBuffer(cfg.Terminal.MaxCells, parameter.BlankGlyph)
	if err := buf.Resize(cfg.Terminal.DefaultWidth, cfg.Terminal.DefaultHeight); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	buf.Clear()
	render.NewRasterizer(*cfg).Render(buf, 0, 0)

	if err := snapshot.SavePNG(path, buf.Frame(), buf.Width(), buf.Height()); err != nil {
		return err
	}
	log.Printf("donut: snapshot written to %s", path)
	return nil
}
