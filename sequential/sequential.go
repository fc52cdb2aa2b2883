// Package sequential provides single-goroutine implementations of the
// primitives and algorithms of packages parallel and gsync, with the same
// observable contract.
//
// Nothing in this package blocks. Misuse that would deadlock or corrupt
// state under a real parallel backend, such as locking a locked Mutex,
// panics immediately instead, so that such bugs surface in tests of the
// cheaper backend.
package sequential

import (
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/constraints"

	"github.com/mathicgb/mtbb/internal"
)

// Mutex is a lock that checks its state instead of blocking. Lock panics if
// m is already locked; Unlock panics if m is not locked. It is never
// recursive.
type Mutex struct {
	locked bool
}

func (m *Mutex) Lock() {
	if m.locked {
		panic("sequential: Lock of locked Mutex would deadlock")
	}
	m.locked = true
}

// TryLock locks m if it is unlocked, and reports whether it did.
func (m *Mutex) TryLock() bool {
	if m.locked {
		return false
	}
	m.locked = true
	return true
}

func (m *Mutex) Unlock() {
	if !m.locked {
		panic("sequential: Unlock of unlocked Mutex")
	}
	m.locked = false
}

// A BlockedRange is the half-open interval [Begin, End) of an integer type.
// It is never divisible.
type BlockedRange[T constraints.Integer] struct {
	begin, end T
	grain      int
}

// NewBlockedRange returns the range [begin, end). The grain size is kept
// for reporting only. NewBlockedRange panics if end < begin.
func NewBlockedRange[T constraints.Integer](begin, end T, grain int) BlockedRange[T] {
	if end < begin {
		panic(fmt.Sprintf("invalid range: %v:%v", begin, end))
	}
	return BlockedRange[T]{begin: begin, end: end, grain: max(grain, 1)}
}

func (r BlockedRange[T]) Begin() T { return r.begin }

func (r BlockedRange[T]) End() T { return r.end }

// Size returns the number of indices in r, or math.MaxInt if that number
// does not fit into an int.
func (r BlockedRange[T]) Size() int {
	return int(min(internal.Span(r.begin, r.end), math.MaxInt))
}

func (r BlockedRange[T]) Empty() bool { return r.begin == r.end }

func (r BlockedRange[T]) Grainsize() int { return r.grain }

func (r BlockedRange[T]) IsDivisible() bool { return false }

// For invokes body exactly once, with the whole range.
func For[T constraints.Integer](r BlockedRange[T], body func(BlockedRange[T])) {
	body(r)
}

// ForStep invokes body for begin, begin+step, begin+2*step, ... in
// increasing order, up to but excluding end. It never computes an index
// past end, so it is safe near the limits of T. ForStep panics if step is
// not positive.
func ForStep[T constraints.Integer](begin, end, step T, body func(T)) {
	if step <= 0 {
		panic(fmt.Sprintf("invalid step: %v", step))
	}
	for i := begin; i < end; i += step {
		body(i)
		if internal.Span(i, end) <= uint64(step) {
			return
		}
	}
}

// A Feeder adds tasks to the ForEach invocation it was passed to.
type Feeder[T any] struct {
	tasks *[]T
	done  bool
}

// Add submits task for processing before the owning ForEach returns. Add
// panics if that ForEach has already returned.
func (f *Feeder[T]) Add(task T) {
	if f.done {
		panic("sequential: Feeder.Add called after ForEach returned")
	}
	*f.tasks = append(*f.tasks, task)
}

// ForEach processes tasks one at a time. Each element of tasks is pushed
// onto a single pending stack, which is then drained: the most recently
// added task is taken first, and tasks fed by a body invocation are seen
// before the next element of tasks.
func ForEach[T any](tasks []T, body func(task T, feeder *Feeder[T])) {
	var pending []T
	feeder := &Feeder[T]{tasks: &pending}
	defer func() { feeder.done = true }()
	for _, task := range tasks {
		pending = append(pending, task)
		for len(pending) > 0 {
			last := len(pending) - 1
			next := pending[last]
			var zero T
			pending[last] = zero
			pending = pending[:last]
			body(next, feeder)
		}
	}
}

// Sort sorts s according to less, which must be a strict weak ordering.
// Sort is not guaranteed to be stable.
func Sort[T any](s []T, less func(a, b T) bool) {
	slices.SortFunc(s, func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	})
}
