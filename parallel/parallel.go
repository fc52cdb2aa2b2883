// Package parallel provides functions for expressing parallel algorithms.
//
// All functions in this package run part of their work on the calling
// goroutine and hand the rest to helper goroutines, as long as the current
// concurrency limit (see Scheduler) admits more helpers. When no helper can
// be admitted, the work is executed on the calling goroutine instead, so
// nested parallel calls never wait for admission.
//
// If a function invocation panics on a helper goroutine, the panic is
// recovered and the parallel function eventually panics on the calling
// goroutine with the left-most recovered panic value.
package parallel

import (
	"fmt"
	"sync"

	"github.com/mathicgb/mtbb/internal"
	"github.com/mathicgb/mtbb/internal/worker"
)

// group tracks helper goroutines started on behalf of one parallel call.
type group struct {
	lim   *limiter
	wg    sync.WaitGroup
	mutex sync.Mutex
	p     interface{}
}

// spawn runs f on a new goroutine if lim admits another helper, and
// reports whether it did.
func (g *group) spawn(f func()) bool {
	if !g.lim.sem.TryAcquire(1) {
		return false
	}
	g.wg.Add(1)
	go func() {
		leave := worker.Enter()
		defer func() {
			if p := internal.WrapPanic(recover()); p != nil {
				g.mutex.Lock()
				if g.p == nil {
					g.p = p
				}
				g.mutex.Unlock()
			}
			leave()
			g.lim.sem.Release(1)
			g.wg.Done()
		}()
		f()
	}()
	return true
}

func (g *group) wait() {
	g.wg.Wait()
	if g.p != nil {
		panic(g.p)
	}
}

// fork executes left and right, in parallel if lim admits a helper.
func fork(lim *limiter, left, right func()) {
	g := group{lim: lim}
	spawned := g.spawn(right)
	left()
	if !spawned {
		right()
	}
	g.wait()
}

// Do receives zero or more thunks and executes them in parallel.
//
// Do returns only when all thunks have terminated.
func Do(thunks ...func()) {
	switch len(thunks) {
	case 0:
		return
	case 1:
		thunks[0]()
		return
	}
	lim := currentLimiter()
	defer worker.Enter()()
	var recur func([]func())
	recur = func(thunks []func()) {
		switch len(thunks) {
		case 1:
			thunks[0]()
		default:
			half := len(thunks) / 2
			fork(lim, func() { recur(thunks[:half]) }, func() { recur(thunks[half:]) })
		}
	}
	recur(thunks)
}

// Range receives a range, a batch count n, and a range function f, divides the
// range into batches, and invokes the range function for each of these batches
// in parallel, covering the half-open interval from low to high, including low
// but excluding high.
//
// The range is specified by a low and high integer, with low <= high. The
// batches are determined by dividing up the size of the range (high - low) by
// n. If n is 0, a reasonable default is used that takes the current
// concurrency limit into account.
//
// Range returns only when all range functions have terminated.
//
// Range panics if high < low, or if n < 0.
func Range(low, high, n int, f func(low, high int)) {
	lim := currentLimiter()
	defer worker.Enter()()
	var recur func(int, int, int)
	recur = func(low, high, n int) {
		switch {
		case n == 1:
			f(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				f(low, high)
				return
			}
			fork(lim,
				func() { recur(low, mid, half) },
				func() { recur(mid, high, n-half) },
			)
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	recur(low, high, internal.ComputeNofBatches(low, high, n, lim.n))
}
