package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/dueline/internal/cache"
	"github.com/roach88/dueline/internal/config"
	"github.com/roach88/dueline/internal/profile"
	"github.com/roach88/dueline/internal/remote"
	"github.com/roach88/dueline/internal/sync"
)

// Session wires one CLI invocation to the engine: configuration, the
// durable cache, the workspace store and a running event loop.
type Session struct {
	Cfg      *config.AppConfig
	Engine   *sync.Engine
	Cache    *cache.Cache
	Currency string

	cancel  context.CancelFunc
	runDone chan struct{}
}

// OpenSession loads configuration, opens the cache and starts the
// engine loop. Close releases everything in reverse order.
func OpenSession(opts *RootOptions) (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "loading configuration", err)
	}

	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "creating cache directory", err)
	}
	c, err := cache.Open(cfg.CachePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening cache", err)
	}

	engine, err := sync.New(sync.Config{
		Workspace:         cfg.Workspace,
		FallbackWorkspace: cfg.FallbackWorkspace,
		Profile:           cfg.Profile,
		Cache:             c,
		Remote:            remote.NewMemory(),
	},
		sync.WithLogger(logger),
		sync.WithHydrationTimeout(cfg.HydrationTimeout),
		sync.WithFlushSchedule(cfg.FlushSchedule),
		sync.WithConfirmer(&promptConfirmer{In: os.Stdin, Out: os.Stderr}),
	)
	if err != nil {
		c.Close()
		return nil, WrapExitError(ExitCommandError, "creating engine", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := engine.Start(ctx); err != nil {
		cancel()
		c.Close()
		return nil, WrapExitError(ExitCommandError, "starting engine", err)
	}
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = engine.Run(ctx)
	}()

	s := &Session{
		Cfg:      cfg,
		Engine:   engine,
		Cache:    c,
		Currency: "USD",
		cancel:   cancel,
		runDone:  runDone,
	}
	if err := s.applyProfile(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// applyProfile loads the configured CUE profile and applies it: the
// instrument set is declarative truth, budgets are added for tags that
// have none yet.
func (s *Session) applyProfile(ctx context.Context) error {
	if s.Cfg.ProfileFile == "" {
		return nil
	}
	p, err := profile.Load(s.Cfg.ProfileFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading profile", err)
	}
	s.Currency = p.Currency

	if err := s.Engine.SetInstruments(ctx, p.Instruments); err != nil {
		return WrapExitError(ExitCommandError, "applying profile instruments", err)
	}

	existing := make(map[string]bool)
	for _, b := range s.Engine.Budgets() {
		existing[b.Tag] = true
	}
	for _, spec := range p.Budgets {
		if existing[spec.Tag] {
			continue
		}
		if _, err := s.Engine.AddBudget(ctx, spec.Tag, spec.Amount, spec.Recurring, time.Now()); err != nil {
			return WrapExitError(ExitCommandError, "applying profile budgets", err)
		}
	}
	return nil
}

// Close stops the engine loop and the cache.
func (s *Session) Close() {
	s.Engine.Stop()
	s.cancel()
	<-s.runDone
	s.Cache.Close()
}

// promptConfirmer asks on the terminal and accepts y/yes.
type promptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p *promptConfirmer) Confirm(message string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", message)
	scanner := bufio.NewScanner(p.In)
	if !scanner.Scan() {
		return false
	}
	answer := scanner.Text()
	return answer == "y" || answer == "Y" || answer == "yes"
}

// parseCivilDate parses the 2006-01-02 date format used by every
// date-valued flag.
func parseCivilDate(raw string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", raw)
	}
	return d, nil
}
