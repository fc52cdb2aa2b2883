// Package mtbb is a parallel-runtime abstraction layer: one stable API for
// a fixed set of concurrency primitives and parallel algorithms, backed by
// one of two interchangeable implementations chosen at build time.
//
// By default the names in this package delegate to the goroutine-based
// implementations in mtbb/parallel and mtbb/gsync. When built with the
// mtbb_serial tag,
//
//	go build -tags mtbb_serial ./...
//
// the same names are backed by mtbb/sequential instead, which runs
// everything on the calling goroutine. Code written against this package
// works unchanged under both backends; the constant Backend reports which
// one was compiled in.
//
// The facade provides:
//
// Locks: Mutex, NullMutex and QueuingMutex, all implementing Locker, and
// ScopedLock, a guard that ties holding a Locker to a scope. Under the
// serial backend, locking a locked mutex or unlocking an unlocked one
// panics instead of blocking: the same misuse would deadlock under the
// parallel backend.
//
// Per-worker storage: ThreadLocal holds one lazily created instance per
// worker, so that workers can accumulate results without locking.
// UnorderedMap is a map that is safe for concurrent use.
//
// Algorithms: ParallelFor over a BlockedRange, ParallelForStep over a
// stepped index sequence, ParallelForEach over a task list that bodies can
// extend through a Feeder, and ParallelSort. Every algorithm returns only
// after all of its work, including fed tasks, has completed. None of them
// supports cancellation; bodies that need to stop early must check a flag
// of their own.
//
// Lifecycle: a Scheduler bounds the number of concurrently active workers
// while it is open.
//
// Timing: Now returns a TickCount on the monotonic clock; subtracting two
// of them gives an Interval.
package mtbb
