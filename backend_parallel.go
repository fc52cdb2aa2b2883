//go:build !mtbb_serial

package mtbb

import (
	"log/slog"
	"sync"

	"golang.org/x/exp/constraints"

	"github.com/mathicgb/mtbb/gsync"
	"github.com/mathicgb/mtbb/parallel"
)

// Backend names the implementation compiled into this build.
const Backend = "parallel"

type (
	Mutex        = sync.Mutex
	NullMutex    = gsync.NullMutex
	QueuingMutex = gsync.QueuingMutex

	ThreadLocal[T any]                  = parallel.ThreadLocal[T]
	UnorderedMap[K comparable, V any]   = gsync.Map[K, V]
	BlockedRange[T constraints.Integer] = parallel.BlockedRange[T]
	Feeder[T any]                       = parallel.Feeder[T]

	Scheduler       = parallel.Scheduler
	SchedulerOption = parallel.Option
)

var (
	_ Locker = (*Mutex)(nil)
	_ Locker = NullMutex{}
	_ Locker = (*QueuingMutex)(nil)
)

// NewThreadLocal returns per-worker storage whose instances are created
// lazily with create. A nil create leaves them at the zero value.
func NewThreadLocal[T any](create func() T) *ThreadLocal[T] {
	return parallel.NewThreadLocal(create)
}

// NewBlockedRange returns the half-open range [begin, end) that ParallelFor
// splits down to grain indices. It panics if end < begin.
func NewBlockedRange[T constraints.Integer](begin, end T, grain int) BlockedRange[T] {
	return parallel.NewBlockedRange(begin, end, grain)
}

// ParallelFor invokes body on subranges that together cover r exactly
// once. With the serial backend body is invoked once, with r itself.
func ParallelFor[T constraints.Integer](r BlockedRange[T], body func(BlockedRange[T])) {
	parallel.For(r, body)
}

// ParallelForStep invokes body for begin, begin+step, ... below end. It
// panics if step is not positive.
func ParallelForStep[T constraints.Integer](begin, end, step T, body func(T)) {
	parallel.ForStep(begin, end, step, body)
}

// ParallelForEach invokes body for every task, including those added
// through the Feeder, and returns when none is left. The processing order
// is unspecified.
func ParallelForEach[T any](tasks []T, body func(task T, feeder *Feeder[T])) {
	parallel.ForEach(tasks, body)
}

// ParallelSort sorts s by less, which must be a strict weak ordering. The
// sort is not stable.
func ParallelSort[T any](s []T, less func(a, b T) bool) {
	parallel.Sort(s, less)
}

// NewScheduler limits the number of concurrently active workers to limit
// until Close is called; 0 means runtime.GOMAXPROCS(0). Nested schedulers
// apply the smallest open limit. It panics if limit < 0.
func NewScheduler(limit int, opts ...SchedulerOption) *Scheduler {
	return parallel.NewScheduler(limit, opts...)
}

// WithLogger makes a Scheduler log its lifecycle at debug level.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return parallel.WithLogger(logger)
}

// MaxConcurrency returns the number of workers a parallel call started now
// may use.
func MaxConcurrency() int {
	return parallel.MaxConcurrency()
}
