package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/m-adamski/timeseries-data-provider/internal/source"
)

// Default timing when Config leaves a value at zero.
const (
	DefaultTickInterval  = time.Second
	DefaultShutdownGrace = 10 * time.Second
)

// Fetcher reads the current value of a source.
type Fetcher interface {
	Fetch(ctx context.Context, def source.Definition) (float64, error)
}

// Ingestor stores a fetched value.
type Ingestor interface {
	Ingest(ctx context.Context, source string, value float64, at time.Time) error
}

// Pruner deletes a source's samples older than cutoff.
type Pruner interface {
	Prune(ctx context.Context, source string, cutoff time.Time) error
}

// Logger defines the logging interface for the scheduler.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds the scheduler timing.
type Config struct {
	// TickInterval is the scan granularity.
	TickInterval time.Duration

	// ShutdownGrace bounds how long Stop waits for in-flight work.
	ShutdownGrace time.Duration
}

// state is the per-source schedule bookkeeping. Zero times mean "never".
type state struct {
	lastFetchAt time.Time
	lastPruneAt time.Time
}

// Scheduler dispatches fetches and prunes for a fixed set of sources.
type Scheduler struct {
	cfg      Config
	sources  []source.Definition
	fetcher  Fetcher
	ingestor Ingestor
	pruner   Pruner
	logger   Logger

	mu       sync.Mutex
	states   map[string]*state
	cron     gocron.Scheduler
	running  bool
	stopping bool

	// workCtx is handed to every dispatched operation. It is cancelled only
	// when Stop gives up waiting.
	workCtx    context.Context
	cancelWork context.CancelFunc
	inflight   sync.WaitGroup
}

// New creates a scheduler for the schedulable definitions in sources.
// Non-schedulable definitions are ignored.
func New(sources []source.Definition, fetcher Fetcher, ingestor Ingestor, pruner Pruner, cfg Config) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.ShutdownGrace < 0 {
		cfg.ShutdownGrace = 0
	}

	s := &Scheduler{
		cfg:      cfg,
		fetcher:  fetcher,
		ingestor: ingestor,
		pruner:   pruner,
		logger:   noopLogger{},
		states:   make(map[string]*state),
	}
	for _, def := range sources {
		if !def.Schedulable() {
			continue
		}
		s.sources = append(s.sources, def)
		s.states[def.Name] = &state{}
	}
	s.workCtx, s.cancelWork = context.WithCancel(context.Background())

	return s
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.logger = logger
}

// Sources returns the definitions the scheduler manages.
func (s *Scheduler) Sources() []source.Definition {
	out := make([]source.Definition, len(s.sources))
	copy(out, s.sources)
	return out
}

// Start begins ticking. The first tick runs immediately.
//
// Ticks are driven by a gocron duration job in singleton reschedule mode,
// so a tick that overruns the interval delays the next one instead of
// overlapping it.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("creating tick scheduler: %w", err)
	}

	_, err = cron.NewJob(
		gocron.DurationJob(s.cfg.TickInterval),
		gocron.NewTask(func() { s.Tick(time.Now()) }),
		gocron.WithName("tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = cron.Shutdown() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("creating tick job: %w", err)
	}

	if s.workCtx.Err() != nil {
		s.workCtx, s.cancelWork = context.WithCancel(context.Background())
	}

	cron.Start()
	s.cron = cron
	s.running = true
	s.stopping = false

	s.logger.Info("scheduler started",
		"sources", len(s.sources),
		"tick", s.cfg.TickInterval,
	)
	return nil
}

// Stop stops ticking and waits for in-flight work.
//
// If the work has not finished within the shutdown grace period its context
// is cancelled and ErrShutdownTimeout is returned.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	s.stopping = true
	cron := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()

	if cron != nil {
		if err := cron.Shutdown(); err != nil {
			s.logger.Warn("tick scheduler shutdown failed", "error", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-time.After(s.cfg.ShutdownGrace):
		s.cancelWork()
		s.logger.Warn("scheduler stopped with work in flight", "grace", s.cfg.ShutdownGrace)
		return ErrShutdownTimeout
	}
}

// Wait blocks until every dispatched operation has finished.
func (s *Scheduler) Wait() {
	s.inflight.Wait()
}

// Tick evaluates every source against now and dispatches what is due.
//
// It is called by the tick job and can be driven directly with a simulated
// clock.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return
	}

	for _, def := range s.sources {
		st := s.states[def.Name]

		if due(st.lastFetchAt, def.PollInterval, now) {
			st.lastFetchAt = now
			s.dispatch(func(ctx context.Context) { s.runFetch(ctx, def, now) })
		}

		if def.Prunable() && due(st.lastPruneAt, def.Retention.CheckInterval, now) {
			st.lastPruneAt = now
			cutoff := now.Add(-def.Retention.Age)
			s.dispatch(func(ctx context.Context) { s.runPrune(ctx, def.Name, cutoff) })
		}
	}
}

// due reports whether an operation last dispatched at last is due at now.
func due(last time.Time, interval time.Duration, now time.Time) bool {
	return last.IsZero() || !now.Before(last.Add(interval))
}

// dispatch runs fn on its own goroutine tracked by the in-flight group.
func (s *Scheduler) dispatch(fn func(ctx context.Context)) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled work panicked", "panic", r)
			}
		}()
		fn(s.workCtx)
	}()
}

// runFetch fetches one source and hands the value to the ingestor.
func (s *Scheduler) runFetch(ctx context.Context, def source.Definition, at time.Time) {
	value, err := s.fetcher.Fetch(ctx, def)
	if err != nil {
		s.logger.Warn("fetch failed", "source", def.Name, "error", err)
		return
	}

	// The ingestor logs its own failures.
	_ = s.ingestor.Ingest(ctx, def.Name, value, at) //nolint:errcheck // Logged by the ingestor
}

// runPrune deletes a source's expired samples.
func (s *Scheduler) runPrune(ctx context.Context, name string, cutoff time.Time) {
	if s.pruner == nil {
		return
	}
	_ = s.pruner.Prune(ctx, name, cutoff) //nolint:errcheck // Logged by the pruner
}
