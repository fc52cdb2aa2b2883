package sequential

import (
	"fmt"
	"log/slog"
)

// MaxConcurrency always returns 1.
func MaxConcurrency() int {
	return 1
}

// A Scheduler validates a concurrency limit and otherwise does nothing:
// there is only one worker, whatever limit is requested, and nested
// Schedulers have no effect on each other.
type Scheduler struct {
	limit  int
	logger *slog.Logger
}

// An Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger makes the Scheduler log its lifecycle at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler panics if limit < 0.
func NewScheduler(limit int, opts ...Option) *Scheduler {
	if limit < 0 {
		panic(fmt.Sprintf("sequential: invalid concurrency limit: %v", limit))
	}
	s := &Scheduler{
		limit:  limit,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Debug("scheduler opened",
		slog.Int("requested", limit),
		slog.Int("effective", 1),
	)
	return s
}

// Limit returns the requested limit.
func (s *Scheduler) Limit() int {
	return s.limit
}

func (s *Scheduler) Close() {}
