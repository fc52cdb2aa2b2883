package gsync

// ScopedLock ties ownership of a Locker to the lifetime of a scope. The
// zero value is unbound. The usual pattern is
//
//	l := gsync.NewScopedLock(&mu)
//	defer l.Close()
//
// which releases the lock on every return path, including a panic, unless
// it was already released explicitly.
//
// Binding an already bound ScopedLock, or releasing an unbound one, is a
// programming error and panics.
type ScopedLock struct {
	m Locker
}

// NewScopedLock returns a ScopedLock bound to m, which it locks.
func NewScopedLock(m Locker) *ScopedLock {
	l := new(ScopedLock)
	l.Acquire(m)
	return l
}

// Acquire locks m and binds it to l.
func (l *ScopedLock) Acquire(m Locker) {
	l.checkUnbound()
	m.Lock()
	l.m = m
}

// TryAcquire binds m to l only if m can be locked without blocking, and
// reports whether it did.
func (l *ScopedLock) TryAcquire(m Locker) bool {
	l.checkUnbound()
	if !m.TryLock() {
		return false
	}
	l.m = m
	return true
}

// Release unlocks the bound Locker and leaves l unbound.
func (l *ScopedLock) Release() {
	m := l.m
	if m == nil {
		panic("gsync: release of unbound ScopedLock")
	}
	l.m = nil
	m.Unlock()
}

// Close releases l if it is bound, and does nothing otherwise.
func (l *ScopedLock) Close() {
	if l.m != nil {
		l.Release()
	}
}

// Held reports whether l is currently bound.
func (l *ScopedLock) Held() bool {
	return l.m != nil
}

func (l *ScopedLock) checkUnbound() {
	if l.m != nil {
		panic("gsync: ScopedLock is already bound")
	}
}

// WithLock calls fn while holding m.
func WithLock(m Locker, fn func()) {
	l := NewScopedLock(m)
	defer l.Close()
	fn()
}
