package parallel

import (
	"iter"
	"sync"

	"github.com/mathicgb/mtbb/internal/worker"
)

// ThreadLocal holds one instance of T per worker. Instances are created
// lazily, on the first call to Local from a worker, and survive across
// parallel calls: a worker that later runs on the same slot sees the same
// instance again.
//
// A goroutine that calls Local outside of any parallel function is bound to
// a worker slot of its own. The binding is reclaimed some time after the
// goroutine exits, and the instance then passes to the next goroutine
// bound to that slot. Instances are never discarded before Clear, so All
// still yields the contributions of exited goroutines.
type ThreadLocal[T any] struct {
	create func() T
	mutex  sync.RWMutex
	slots  []*T
}

// NewThreadLocal returns a ThreadLocal that initializes new instances with
// create. A nil create leaves them at the zero value.
func NewThreadLocal[T any](create func() T) *ThreadLocal[T] {
	return &ThreadLocal[T]{create: create}
}

// Local returns the instance of the calling worker, creating it if needed.
func (e *ThreadLocal[T]) Local() *T {
	slot := worker.Slot()
	e.mutex.RLock()
	if slot < len(e.slots) {
		if v := e.slots[slot]; v != nil {
			e.mutex.RUnlock()
			return v
		}
	}
	e.mutex.RUnlock()

	v := new(T)
	if e.create != nil {
		*v = e.create()
	}
	e.mutex.Lock()
	if slot >= len(e.slots) {
		e.slots = append(e.slots, make([]*T, slot+1-len(e.slots))...)
	}
	e.slots[slot] = v
	e.mutex.Unlock()
	return v
}

// All iterates over the instances created so far. It must not run
// concurrently with Clear.
func (e *ThreadLocal[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		e.mutex.RLock()
		snapshot := make([]*T, 0, len(e.slots))
		for _, v := range e.slots {
			if v != nil {
				snapshot = append(snapshot, v)
			}
		}
		e.mutex.RUnlock()
		for _, v := range snapshot {
			if !yield(v) {
				return
			}
		}
	}
}

// Size returns the number of instances created so far.
func (e *ThreadLocal[T]) Size() (n int) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	for _, v := range e.slots {
		if v != nil {
			n++
		}
	}
	return
}

func (e *ThreadLocal[T]) Empty() bool {
	return e.Size() == 0
}

// Clear discards all instances.
func (e *ThreadLocal[T]) Clear() {
	e.mutex.Lock()
	e.slots = nil
	e.mutex.Unlock()
}
