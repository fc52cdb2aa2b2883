package parallel

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/mathicgb/mtbb/internal"
	"github.com/mathicgb/mtbb/internal/worker"
)

// A BlockedRange is the half-open interval [Begin, End) of an integer type,
// which For recursively splits into halves while it is larger than its
// grain size.
type BlockedRange[T constraints.Integer] struct {
	begin, end T
	grain      int
}

// NewBlockedRange returns the range [begin, end) with the given grain size.
// A grain size below 1 is treated as 1. NewBlockedRange panics if end <
// begin.
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

// IsDivisible reports whether r is larger than its grain size.
func (r BlockedRange[T]) IsDivisible() bool {
	return internal.Span(r.begin, r.end) > uint64(r.grain)
}

// Split divides r into two halves with the same grain size.
func (r BlockedRange[T]) Split() (left, right BlockedRange[T]) {
	mid := r.begin + T(internal.Span(r.begin, r.end)/2)
	return BlockedRange[T]{r.begin, mid, r.grain}, BlockedRange[T]{mid, r.end, r.grain}
}

// For splits r while it is divisible and invokes body once for each
// resulting subrange, in parallel. Together the subranges cover r exactly
// once. For does not invoke body for an empty range.
//
// For returns only when all body invocations have terminated.
func For[T constraints.Integer](r BlockedRange[T], body func(BlockedRange[T])) {
	if r.Empty() {
		return
	}
	lim := currentLimiter()
	defer worker.Enter()()
	var recur func(BlockedRange[T])
	recur = func(r BlockedRange[T]) {
		if !r.IsDivisible() {
			body(r)
			return
		}
		left, right := r.Split()
		fork(lim, func() { recur(left) }, func() { recur(right) })
	}
	recur(r)
}

// ForStep invokes body for begin, begin+step, begin+2*step, ... up to but
// excluding end. The indices are divided into batches that are processed
// in parallel; within a batch, indices are visited in increasing order.
// No index outside [begin, end) is ever computed, so ForStep may be used
// up to the limits of T.
//
// ForStep panics if step is not positive.
func ForStep[T constraints.Integer](begin, end, step T, body func(T)) {
	if step <= 0 {
		panic(fmt.Sprintf("invalid step: %v", step))
	}
	if begin >= end {
		return
	}
	ustep := uint64(step)
	count := (internal.Span(begin, end)-1)/ustep + 1
	batches := uint64(internal.ComputeNofBatches(0, int(min(count, math.MaxInt)), 0, MaxConcurrency()))
	grain := int(min((count-1)/batches+1, math.MaxInt))
	For(NewBlockedRange(0, count, grain), func(r BlockedRange[uint64]) {
		for k := r.begin; k < r.end; k++ {
			// k*step may not fit into T; truncated, it still wraps
			// begin around to the right index.
			body(begin + T(k*ustep))
		}
	})
}
