package internal

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/exp/constraints"
)

// DefaultConcurrency is the number of workers used when no explicit limit
// has been requested: the current runtime.GOMAXPROCS setting.
func DefaultConcurrency() int {
	return runtime.GOMAXPROCS(0)
}

// Span returns end - begin for begin <= end. The difference is taken in
// uint64 two's complement arithmetic, so it is exact for every integer type
// even when it does not fit into T.
func Span[T constraints.Integer](begin, end T) uint64 {
	return uint64(end) - uint64(begin)
}

// ComputeNofBatches returns n if it is positive, or otherwise divides the
// size of the range (high - low) by a number that takes the number of
// workers into account.
func ComputeNofBatches(low, high, n, workers int) (batches int) {
	switch size := high - low; {
	case size < 0:
		panic(fmt.Sprintf("invalid range: %v:%v", low, high))
	case n < 0:
		panic(fmt.Sprintf("invalid number of batches: %v", n))
	case n > 0:
		batches = n
	case size > 0:
		if workers < 1 {
			workers = 1
		}
		batches = 2 * workers
		if batches > size {
			batches = size
		}
	default:
		batches = 1
	}
	return
}

// WrapPanic adds stack trace information to a recovered panic.
func WrapPanic(p interface{}) interface{} {
	if p != nil {
		if err, isError := p.(error); isError {
			return fmt.Errorf("%w\n%s\nrethrown at", err, debug.Stack())
		}
		return fmt.Sprintf("%v\n%s\nrethrown at", p, debug.Stack())
	}
	return nil
}
