package parallel

import (
	"slices"
	"sync"

	"github.com/mathicgb/mtbb/internal"
	"github.com/mathicgb/mtbb/internal/worker"
)

// A Feeder adds tasks to the ForEach invocation it was passed to.
type Feeder[T any] struct {
	q *taskQueue[T]
}

// Add submits task for processing. The ForEach call that owns f does not
// return before task has been processed. Add panics if that call has
// already returned.
func (f *Feeder[T]) Add(task T) {
	f.q.push(task)
}

// ForEach invokes body once for every element of tasks, and once for every
// task that a body invocation adds through its Feeder, in parallel. The
// order in which tasks are processed is unspecified.
//
// ForEach returns only when no task is pending and no body invocation is
// running. If a body invocation panics, no further tasks are started, and
// ForEach panics with the first recovered value once the running
// invocations have finished.
func ForEach[T any](tasks []T, body func(task T, feeder *Feeder[T])) {
	if len(tasks) == 0 {
		return
	}
	q := &taskQueue[T]{
		g:       group{lim: currentLimiter()},
		body:    body,
		pending: slices.Clone(tasks),
		workers: 1,
	}
	q.cond.L = &q.mutex
	q.feeder.q = q
	defer func() {
		q.mutex.Lock()
		q.done = true
		q.mutex.Unlock()
	}()
	defer worker.Enter()()

	q.mutex.Lock()
	q.grow()
	q.mutex.Unlock()

	q.work()
	q.g.wait()
	if q.p != nil {
		panic(q.p)
	}
}

// taskQueue is the pending task store shared by the workers of one ForEach
// call. Tasks are taken from the end.
type taskQueue[T any] struct {
	g      group
	body   func(T, *Feeder[T])
	feeder Feeder[T]

	mutex   sync.Mutex
	cond    sync.Cond
	pending []T
	workers int
	running int
	p       interface{}
	done    bool
}

// grow starts helper workers while there are more pending tasks than
// workers free to take them. q.mutex must be held.
func (q *taskQueue[T]) grow() {
	for q.p == nil && len(q.pending) > q.workers-q.running {
		if !q.g.spawn(q.work) {
			return
		}
		q.workers++
	}
}

func (q *taskQueue[T]) push(task T) {
	q.mutex.Lock()
	if q.done {
		q.mutex.Unlock()
		panic("parallel: Feeder.Add called after ForEach returned")
	}
	q.pending = append(q.pending, task)
	q.grow()
	q.cond.Signal()
	q.mutex.Unlock()
}

// work processes tasks until the store is drained and no body invocation
// can add to it anymore.
func (q *taskQueue[T]) work() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	for {
		for len(q.pending) == 0 && q.running > 0 && q.p == nil {
			q.cond.Wait()
		}
		if len(q.pending) == 0 || q.p != nil {
			q.workers--
			q.cond.Broadcast()
			return
		}
		last := len(q.pending) - 1
		task := q.pending[last]
		var zero T
		q.pending[last] = zero
		q.pending = q.pending[:last]
		q.running++
		q.mutex.Unlock()

		p := q.run(task)

		q.mutex.Lock()
		q.running--
		if p != nil && q.p == nil {
			q.p = p
		}
		if q.running == 0 || q.p != nil {
			q.cond.Broadcast()
		}
	}
}

func (q *taskQueue[T]) run(task T) (p interface{}) {
	defer func() {
		p = internal.WrapPanic(recover())
	}()
	q.body(task, &q.feeder)
	return nil
}
