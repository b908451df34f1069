package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/versed/versed/internal/analysis"
	"github.com/versed/versed/internal/codegen"
	"github.com/versed/versed/internal/config"
	"github.com/versed/versed/internal/diagnostic"
	"github.com/versed/versed/internal/watcher"
)

func runWatch(args []string) int {
	fs := newFlagSet("watch", "watch [flags]")
	var common commonFlags
	common.register(fs)
	var target string
	fs.StringVar(&target, "target", "", "Regenerate types for this target (rust, typescript, go) on every change")
	fs.Parse(args)

	cfg, err := common.loadConfig(fs)
	if err != nil {
		return fail(err)
	}
	if target != "" {
		cfg.Watch.Target = target
	}
	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	s, err := newWatchSession(cfg, &common)
	if err != nil {
		return fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watcher.New(cfg.Watch.Dirs, cfg.Schemas, cfg.Watch.Exclude, time.Duration(cfg.Watch.Debounce), s.changed)
	if cfg.Watch.Poll > 0 {
		w.SetPollInterval(time.Duration(cfg.Watch.Poll))
	}

	files := w.Files()
	for _, file := range files {
		s.process(file)
	}
	fmt.Fprintf(stderr, "watching %d file(s) for changes, press Ctrl+C to stop\n", len(files))

	if err := w.Watch(ctx); err != nil {
		return fail(err)
	}
	hits, misses := s.cache.Stats()
	fmt.Fprintf(stderr, "stopped (%d cached analyses reused, %d run)\n", hits, misses)
	return exitOK
}

// watchSession checks changed files and regenerates their output.
// Debounced batches may be delivered from several goroutines, so changed
// handles one batch at a time.
type watchSession struct {
	cfg    *config.Config
	common *commonFlags
	cache  *analysis.Cache
	target codegen.Target // nil when watch only checks

	mu sync.Mutex // serializes batches and the output they write
}

func newWatchSession(cfg *config.Config, common *commonFlags) (*watchSession, error) {
	cache, err := analysis.NewCache(analysis.DefaultCacheSize, cfg.Strict, cfg.Quiet)
	if err != nil {
		return nil, err
	}
	s := &watchSession{cfg: cfg, common: common, cache: cache}
	if cfg.Watch.Target != "" {
		s.target, err = newTarget(cfg.Watch.Target, cfg)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *watchSession) changed(events []watcher.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	for _, ev := range events {
		if ev.Op == watcher.Remove || seen[ev.Path] {
			continue
		}
		seen[ev.Path] = true
		fmt.Fprintf(stderr, "%s %s\n", ev.Op, ev.Path)
		s.process(ev.Path)
	}
}

// process checks one file and, with a target, writes its output. It
// reports whether the file was free of fatal diagnostics. Once watching
// has started, it is only called by changed.
func (s *watchSession) process(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return false
	}

	diags := diagnostic.NewCollector(s.cfg.Strict, s.cfg.Quiet)
	var out *codegen.Output
	if filepath.Ext(path) == migrationExt {
		m := analysis.AnalyzeMigration(path, string(data), diags)
		if m != nil && s.target != nil {
			out, err = s.target.MigrationsOutput(m.Plan(s.target.Rules()))
		}
	} else {
		schema := s.cache.Analyze(path, string(data), diags)
		if schema != nil && s.target != nil {
			out, err = s.target.TypesOutput(schema.Side(s.target.Rules()))
		}
	}
	s.common.report(diags)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return false
	}
	if diags.HasErrors() {
		return false
	}

	if out != nil {
		written, err := out.Write(s.cfg.OutputDir(s.target.Name()), true)
		printWritten(written)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return false
		}
	}
	return true
}
