package activity

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultStaleThreshold is the idle time after which an open session is
	// auto-closed.
	DefaultStaleThreshold = 300 * time.Second

	DefaultListLimit  = 50
	MaxListLimit      = 100
	DefaultWindowDays = 30
	MaxWindowDays     = 365

	// MaxLabelLength bounds language tags, sources and device ids.
	MaxLabelLength = 255

	maxConflictRetries = 3
)

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStaleThreshold overrides DefaultStaleThreshold.
func WithStaleThreshold(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRecorder sets the metrics recorder. A nil recorder is ignored.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithIDGenerator replaces uuid.New for new sessions.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}
