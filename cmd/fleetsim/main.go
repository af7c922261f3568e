// Command fleetsim runs robot-fleet simulations from scenario files.
//
// Usage:
//
//	fleetsim run <scenario.json> [flags]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elektrokombinacija/fleetsim/internal/config"
	"github.com/elektrokombinacija/fleetsim/internal/coord"
	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/engine"
	"github.com/elektrokombinacija/fleetsim/internal/pathfind"
	"github.com/elektrokombinacija/fleetsim/internal/render"
	"github.com/elektrokombinacija/fleetsim/internal/scenario"
	"github.com/elektrokombinacija/fleetsim/internal/trace"
	"github.com/elektrokombinacija/fleetsim/internal/workload"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "run":
		if err := runCmd(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "fleetsim:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fleetsim run <scenario.json> [flags]

flags:
  -config path    YAML config file
  -renderer name  "terminal" to render each tick, "none" (default)
  -speed factor   playback speed for the terminal renderer (0 = unthrottled)
  -trace dir      override trace output directory`)
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file")
	renderer := fs.String("renderer", "none", `"terminal" or "none"`)
	speed := fs.Float64("speed", 1, "playback speed for the terminal renderer (0 = unthrottled)")
	traceDir := fs.String("trace", "", "override trace output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("run needs exactly one scenario path")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *traceDir != "" {
		cfg.TraceDir = *traceDir
	}

	log := newLogger(cfg.LogLevel)

	sc, err := scenario.Load(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	eng, closers, err := buildEngine(cfg, sc, *renderer, *speed, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			if cerr := c(); cerr != nil {
				log.Warn("cleanup failed", "error", cerr)
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := eng.Run(ctx)

	log.Info("run finished",
		"run_id", res.RunID,
		"completed", res.Completed,
		"ticks", res.Ticks,
		"tasks_completed", res.Metrics.TasksCompleted,
		"tasks_failed", res.Metrics.TasksFailed,
		"makespan", res.Metrics.Makespan,
	)
	return nil
}

// buildEngine assembles the engine from config and scenario, plus the
// trace writer and optional terminal renderer. The returned closers run
// after the simulation, in order.
func buildEngine(cfg config.Config, sc *scenario.Scenario, renderer string, speed float64, log *slog.Logger) (*engine.Engine, []func() error, error) {
	params := engine.Params{
		DT:            cfg.Engine.DT,
		MaxTicks:      cfg.Engine.MaxTicks,
		GracePeriod:   cfg.Engine.GracePeriod,
		HandoffRadius: cfg.Engine.HandoffRadius,
	}
	if sc.DT > 0 {
		params.DT = sc.DT
	}

	co, err := coord.ByName(cfg.Policies.Coordinator)
	if err != nil {
		return nil, nil, err
	}
	pf, err := pathfind.ByName(cfg.Policies.Pathfinder)
	if err != nil {
		return nil, nil, err
	}

	wl := cfg.Workload
	if sc.Workload.Mode != "" {
		wl = sc.Workload
	}
	gen, err := workload.New(wl, sc.World.Tasks, sc.World.Env)
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	var sinks multiSink

	eng, err := engine.New(sc.World, params, engine.Options{
		Coordinator: co,
		Pathfinder:  pf,
		Workload:    gen,
		Trace:       &sinks,
		Logger:      log,
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.TraceDir != "" {
		w, err := trace.NewWriter(trace.FileName(cfg.TraceDir, eng.RunID().String()))
		if err != nil {
			return nil, nil, fmt.Errorf("open trace: %w", err)
		}
		closers = append(closers, w.Close)
		sinks = append(sinks, w)
	}

	switch renderer {
	case "terminal":
		rs := &renderSink{
			view: render.NewView(sc.World.Env),
			term: render.NewTerminal(os.Stdout),
		}
		if speed > 0 {
			rs.frame = time.Duration(float64(time.Second) * params.DT / speed)
		}
		closers = append(closers, rs.term.Close)
		sinks = append(sinks, rs)
	case "none", "":
	default:
		return nil, nil, fmt.Errorf("unknown renderer %q", renderer)
	}

	return eng, closers, nil
}

// multiSink fans one tick record out to several sinks.
type multiSink []engine.Sink

func (m *multiSink) Record(snap core.Snapshot, rec engine.TickRecord) error {
	for _, s := range *m {
		if err := s.Record(snap, rec); err != nil {
			return err
		}
	}
	return nil
}

// renderSink draws each tick to the terminal, throttled to the frame
// interval so playback approximates simulated time.
type renderSink struct {
	view  *render.View
	term  *render.Terminal
	frame time.Duration
	last  time.Time
}

func (r *renderSink) Record(snap core.Snapshot, _ engine.TickRecord) error {
	if r.frame > 0 {
		if wait := r.frame - time.Since(r.last); wait > 0 && !r.last.IsZero() {
			time.Sleep(wait)
		}
		r.last = time.Now()
	}
	return r.term.Draw(r.view.Lines(snap))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
