package parallel

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/mathicgb/mtbb/internal"
)

// limiter admits helper goroutines. The goroutine that calls a parallel
// function always works itself, so n-1 helpers give n concurrent workers.
type limiter struct {
	n   int
	sem *semaphore.Weighted
}

func newLimiter(n int) *limiter {
	return &limiter{n: n, sem: semaphore.NewWeighted(int64(n - 1))}
}

var (
	current    atomic.Pointer[limiter]
	schedMutex sync.Mutex
	open       []*Scheduler
)

func currentLimiter() *limiter {
	if lim := current.Load(); lim != nil {
		return lim
	}
	lim := newLimiter(internal.DefaultConcurrency())
	if current.CompareAndSwap(nil, lim) {
		return lim
	}
	return current.Load()
}

// MaxConcurrency returns the maximum number of workers that a parallel call
// started now may use.
func MaxConcurrency() int {
	return currentLimiter().n
}

// A Scheduler bounds the number of concurrently active workers while it is
// open. It is meant to be created once at process or subsystem start and
// closed when that scope ends:
//
//	s := parallel.NewScheduler(cfg.Threads)
//	defer s.Close()
//
// Schedulers may be nested. The effective bound is the smallest limit of
// all open schedulers; closing one restores the smallest limit of those
// still open, or the default of runtime.GOMAXPROCS(0) when none is. Calls
// that are already running keep the bound they started with.
type Scheduler struct {
	requested int
	limit     int
	logger    *slog.Logger
	closed    bool
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

// NewScheduler opens a Scheduler with the given limit. A limit of 0 means
// runtime.GOMAXPROCS(0). NewScheduler panics if limit < 0.
func NewScheduler(limit int, opts ...Option) *Scheduler {
	if limit < 0 {
		panic(fmt.Sprintf("parallel: invalid concurrency limit: %v", limit))
	}
	s := &Scheduler{
		requested: limit,
		limit:     limit,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limit == 0 {
		s.limit = internal.DefaultConcurrency()
	}

	schedMutex.Lock()
	open = append(open, s)
	effective := applyLocked()
	nested := len(open)
	schedMutex.Unlock()

	s.logger.Debug("scheduler opened",
		slog.Int("requested", s.requested),
		slog.Int("limit", s.limit),
		slog.Int("effective", effective),
		slog.Int("open", nested),
	)
	return s
}

// Limit returns the limit this Scheduler requests, with 0 resolved to
// runtime.GOMAXPROCS(0) at the time it was opened.
func (s *Scheduler) Limit() int {
	return s.limit
}

// Close ends the scope of s. Closing a closed Scheduler does nothing.
func (s *Scheduler) Close() {
	schedMutex.Lock()
	if s.closed {
		schedMutex.Unlock()
		return
	}
	s.closed = true
	for i, o := range open {
		if o == s {
			open = append(open[:i], open[i+1:]...)
			break
		}
	}
	effective := applyLocked()
	remaining := len(open)
	schedMutex.Unlock()

	s.logger.Debug("scheduler closed",
		slog.Int("limit", s.limit),
		slog.Int("effective", effective),
		slog.Int("open", remaining),
	)
}

// applyLocked installs the limiter for the currently open schedulers and
// returns its limit. schedMutex must be held.
func applyLocked() int {
	if len(open) == 0 {
		current.Store(nil)
		return internal.DefaultConcurrency()
	}
	limit := open[0].limit
	for _, s := range open[1:] {
		limit = min(limit, s.limit)
	}
	if lim := current.Load(); lim == nil || lim.n != limit {
		current.Store(newLimiter(limit))
	}
	return limit
}
