package gsync

import "sync"

// A Locker is a mutual exclusion lock with a non-blocking acquisition
// attempt. *sync.Mutex implements it.
type Locker interface {
	Lock()
	TryLock() bool
	Unlock()
}

var (
	_ Locker = (*sync.Mutex)(nil)
	_ Locker = NullMutex{}
	_ Locker = (*QueuingMutex)(nil)
)

// NullMutex is a Locker that performs no locking at all. It allows code to
// be written against Locker for data that a particular caller knows is
// never shared.
type NullMutex struct{}

func (NullMutex) Lock() {}

func (NullMutex) TryLock() bool { return true }

func (NullMutex) Unlock() {}

// QueuingMutex is a fair mutex: goroutines blocked in Lock acquire it in
// the order in which they called Lock.
//
// The zero value is an unlocked mutex. A QueuingMutex must not be copied
// after first use.
type QueuingMutex struct {
	mu      sync.Mutex
	cond    sync.Cond
	next    uint64
	serving uint64
}

func (m *QueuingMutex) Lock() {
	m.mu.Lock()
	if m.cond.L == nil {
		m.cond.L = &m.mu
	}
	ticket := m.next
	m.next++
	for m.serving != ticket {
		m.cond.Wait()
	}
	m.mu.Unlock()
}

// TryLock acquires m only if it is unlocked and nobody is queued for it.
func (m *QueuingMutex) TryLock() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.serving != m.next {
		return false
	}
	m.next++
	return true
}

// Unlock hands m to the longest waiting goroutine, if any. Unlocking an
// unlocked QueuingMutex panics.
func (m *QueuingMutex) Unlock() {
	m.mu.Lock()
	if m.serving == m.next {
		m.mu.Unlock()
		panic("gsync: unlock of unlocked QueuingMutex")
	}
	m.serving++
	if m.cond.L != nil {
		m.cond.Broadcast()
	}
	m.mu.Unlock()
}
