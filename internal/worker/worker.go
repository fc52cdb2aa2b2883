// Package worker assigns small, reusable slot numbers to the goroutines that
// execute parallel work, so that per-worker storage can be indexed by slot
// instead of by goroutine.
//
// A slot is owned by at most one goroutine at a time. Slots released by
// finished workers are handed out again lowest-first, which keeps the
// number of distinct slots close to the peak number of concurrently active
// workers.
package worker

import (
	"bytes"
	"container/heap"
	"runtime"
	"sync"

	"github.com/petermattis/goid"

	"github.com/mathicgb/mtbb/gsync"
)

// minSweep is the number of outside bindings at which Slot first looks for
// bindings of exited goroutines.
const minSweep = 64

var (
	bound gsync.Map[int64, int]

	mutex    sync.Mutex
	free     slotHeap
	next     int
	outside  = make(map[int64]int)
	sweepAt  = minSweep
	getID    = goid.Get
	stackBuf []byte
)

func init() {
	// goid reads the id from the runtime's goroutine struct, whose layout
	// is version specific. Fall back to parsing the stack header if the
	// two disagree.
	if goid.Get() != stackID() {
		getID = stackID
	}
}

func stackID() int64 {
	var buf [64]byte
	return goid.ExtractGID(buf[:runtime.Stack(buf[:], false)])
}

// Slot returns the slot of the calling goroutine. A goroutine that is not
// running inside Enter is bound to a slot on its first call and keeps it
// until it calls Release or exits. Bindings of exited goroutines are
// reclaimed in batches, whenever the number of such outside bindings has
// doubled since the last reclaim.
func Slot() int {
	id := getID()
	if slot, ok := bound.Load(id); ok {
		return slot
	}
	mutex.Lock()
	defer mutex.Unlock()
	if len(outside) >= sweepAt {
		sweepLocked()
	}
	slot := acquireLocked()
	outside[id] = slot
	bound.Store(id, slot)
	return slot
}

// sweepLocked releases the outside bindings of goroutines that no longer
// exist. mutex must be held.
func sweepLocked() {
	live := liveIDs()
	for id, slot := range outside {
		if !live[id] {
			delete(outside, id)
			bound.Delete(id)
			heap.Push(&free, slot)
		}
	}
	sweepAt = max(2*len(outside), minSweep)
}

// liveIDs returns the ids of all goroutines. mutex must be held.
func liveIDs() map[int64]bool {
	if len(stackBuf) == 0 {
		stackBuf = make([]byte, 64<<10)
	}
	for {
		n := runtime.Stack(stackBuf, true)
		if n < len(stackBuf) {
			live := make(map[int64]bool)
			header := []byte("goroutine ")
			for _, line := range bytes.Split(stackBuf[:n], []byte("\n")) {
				if bytes.HasPrefix(line, header) {
					live[goid.ExtractGID(line)] = true
				}
			}
			return live
		}
		stackBuf = make([]byte, 2*len(stackBuf))
	}
}

// Enter binds a slot to the calling goroutine for the duration of a unit of
// parallel work. The returned function gives the slot back. If the
// goroutine already has a slot, Enter keeps it and leave does nothing.
func Enter() (leave func()) {
	id := getID()
	if _, ok := bound.Load(id); ok {
		return func() {}
	}
	slot := acquire()
	bound.Store(id, slot)
	return func() {
		bound.Delete(id)
		release(slot)
	}
}

// Release gives back the slot that Slot bound to the calling goroutine
// outside of Enter, if there is one.
func Release() {
	id := getID()
	mutex.Lock()
	defer mutex.Unlock()
	if slot, ok := outside[id]; ok {
		delete(outside, id)
		bound.Delete(id)
		heap.Push(&free, slot)
	}
}

// Active returns the number of slots currently owned by some goroutine.
func Active() int {
	mutex.Lock()
	defer mutex.Unlock()
	return next - free.Len()
}

func acquire() int {
	mutex.Lock()
	defer mutex.Unlock()
	return acquireLocked()
}

func acquireLocked() int {
	if free.Len() > 0 {
		return heap.Pop(&free).(int)
	}
	slot := next
	next++
	return slot
}

func release(slot int) {
	mutex.Lock()
	heap.Push(&free, slot)
	mutex.Unlock()
}

type slotHeap []int

func (h slotHeap) Len() int           { return len(h) }
func (h slotHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h slotHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *slotHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *slotHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
