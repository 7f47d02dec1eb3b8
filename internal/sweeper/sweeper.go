// Package sweeper closes stale typing sessions on a cron schedule.
//
// Start calls close stale sessions lazily, but only for the bucket they
// touch. The sweeper catches sessions whose clients never come back.
package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/typetrack/core/logger"
)

// DefaultBatchSize bounds the sessions closed per run.
const DefaultBatchSize = 500

var (
	ErrInvalidSchedule = errors.New("invalid sweep schedule")
	ErrAlreadyRunning  = errors.New("sweeper already running")
)

// StaleCloser is implemented by *activity.Service.
type StaleCloser interface {
	CloseStale(ctx context.Context, limit int) (int, error)
}

// Observer receives the outcome of every sweep.
type Observer interface {
	SweepCompleted(closed int, d time.Duration, err error)
}

// Sweeper runs CloseStale and auxiliary maintenance jobs periodically.
type Sweeper struct {
	closer    StaleCloser
	batchSize int
	log       *slog.Logger
	observer  Observer
	cron      *cron.Cron

	mu      sync.Mutex
	ctx     context.Context
	running bool
}

type Option func(*Sweeper)

func WithBatchSize(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Sweeper) {
		if log != nil {
			s.log = log
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Sweeper) {
		s.observer = o
	}
}

// New creates a sweeper. Nothing is scheduled until Schedule is called.
func New(closer StaleCloser, opts ...Option) *Sweeper {
	s := &Sweeper{
		closer:    closer,
		batchSize: DefaultBatchSize,
		log:       slog.Default(),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("sweeper"))
	cl := cronLogger{log: s.log}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return s
}

// Schedule registers the stale session sweep under a cron spec such as
// "@every 1m" or "*/5 * * * *".
func (s *Sweeper) Schedule(spec string) error {
	return s.AddJob(spec, "close_stale", func(ctx context.Context) error {
		_, err := s.RunOnce(ctx)
		return err
	})
}

// AddJob registers an additional maintenance job.
func (s *Sweeper) AddJob(spec, name string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := fn(s.baseContext()); err != nil {
			s.log.Error("job failed", slog.String("job", name), logger.Error(err))
		}
	})
	if err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}
	return nil
}

// RunOnce closes up to one batch of stale sessions.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	closed, err := s.closer.CloseStale(ctx, s.batchSize)
	d := time.Since(start)

	if s.observer != nil {
		s.observer.SweepCompleted(closed, d, err)
	}
	if err != nil {
		return closed, err
	}
	if closed > 0 {
		s.log.InfoContext(ctx, "stale sessions closed",
			logger.Event("sweep.completed"),
			logger.Count("closed", closed),
			logger.Duration(d),
		)
	}
	return closed, nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs. Its signature fits errgroup.Group.Go.
func (s *Sweeper) Run(ctx context.Context) func() error {
	return func() error {
		s.mu.Lock()
		if s.running {
			s.mu.Unlock()
			return ErrAlreadyRunning
		}
		s.running = true
		s.ctx = ctx
		s.mu.Unlock()

		s.log.InfoContext(ctx, "sweeper started", logger.Count("jobs", len(s.cron.Entries())))
		s.cron.Start()

		<-ctx.Done()
		<-s.cron.Stop().Done()

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		s.log.Info("sweeper stopped")
		return nil
	}
}

func (s *Sweeper) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{logger.Error(err)}, keysAndValues...)...)
}
