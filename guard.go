package mtbb

import "github.com/mathicgb/mtbb/gsync"

type (
	// A Locker is implemented by every mutex type of this package.
	Locker = gsync.Locker

	// ScopedLock binds holding a Locker to a scope. Its zero value is
	// unbound. Binding a bound ScopedLock, or releasing an unbound one,
	// panics under both backends.
	ScopedLock = gsync.ScopedLock
)

// NewScopedLock locks m and returns a ScopedLock bound to it. Pair it with
// a deferred Close to release m on every path out of the scope:
//
//	l := mtbb.NewScopedLock(&mu)
//	defer l.Close()
func NewScopedLock(m Locker) *ScopedLock {
	return gsync.NewScopedLock(m)
}

// WithLock calls fn while holding m.
func WithLock(m Locker, fn func()) {
	gsync.WithLock(m, fn)
}
