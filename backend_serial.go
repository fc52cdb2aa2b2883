//go:build mtbb_serial

package mtbb

import (
	"log/slog"

	"golang.org/x/exp/constraints"

	"github.com/mathicgb/mtbb/sequential"
)

// Backend names the implementation compiled into this build.
const Backend = "serial"

type (
	Mutex        = sequential.Mutex
	NullMutex    = sequential.Mutex
	QueuingMutex = sequential.Mutex

	ThreadLocal[T any]                  = sequential.ThreadLocal[T]
	UnorderedMap[K comparable, V any]   = sequential.Map[K, V]
	BlockedRange[T constraints.Integer] = sequential.BlockedRange[T]
	Feeder[T any]                       = sequential.Feeder[T]

	Scheduler       = sequential.Scheduler
	SchedulerOption = sequential.Option
)

var _ Locker = (*Mutex)(nil)

func NewThreadLocal[T any](create func() T) *ThreadLocal[T] {
	return sequential.NewThreadLocal(create)
}

func NewBlockedRange[T constraints.Integer](begin, end T, grain int) BlockedRange[T] {
	return sequential.NewBlockedRange(begin, end, grain)
}

func ParallelFor[T constraints.Integer](r BlockedRange[T], body func(BlockedRange[T])) {
	sequential.For(r, body)
}

func ParallelForStep[T constraints.Integer](begin, end, step T, body func(T)) {
	sequential.ForStep(begin, end, step, body)
}

func ParallelForEach[T any](tasks []T, body func(task T, feeder *Feeder[T])) {
	sequential.ForEach(tasks, body)
}

func ParallelSort[T any](s []T, less func(a, b T) bool) {
	sequential.Sort(s, less)
}

func NewScheduler(limit int, opts ...SchedulerOption) *Scheduler {
	return sequential.NewScheduler(limit, opts...)
}

func WithLogger(logger *slog.Logger) SchedulerOption {
	return sequential.WithLogger(logger)
}

func MaxConcurrency() int {
	return sequential.MaxConcurrency()
}
