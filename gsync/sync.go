// Package gsync provides synchronization abstractions shared by the parallel
// backend: typed concurrent maps, lock flavours with a common Locker
// interface, and a scope-bound lock guard.
package gsync

import "sync"

// Map is a type-safe version of sync.Map. It serves as a concurrent
// unordered map: all methods are safe for concurrent use, and iteration
// order is unspecified.
type Map[K comparable, V any] sync.Map

func (m *Map[K, V]) Delete(key K) {
	(*sync.Map)(m).Delete(key)
}

func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	v, ok := (*sync.Map)(m).Load(key)
	if ok {
		return v.(V), true
	}
	return
}

func (m *Map[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	v, loaded := (*sync.Map)(m).LoadAndDelete(key)
	if loaded {
		return v.(V), true
	}
	return
}

func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := (*sync.Map)(m).LoadOrStore(key, value)
	return v.(V), loaded
}

func (m *Map[K, V]) Range(f func(K, V) bool) {
	(*sync.Map)(m).Range(func(k any, v any) bool {
		return f(k.(K), v.(V))
	})
}

func (m *Map[K, V]) Store(key K, value V) {
	(*sync.Map)(m).Store(key, value)
}

// Len counts the entries by ranging over the map. Under concurrent
// modification the result is only a snapshot.
func (m *Map[K, V]) Len() (n int) {
	(*sync.Map)(m).Range(func(any, any) bool {
		n++
		return true
	})
	return
}

// Clear deletes all entries.
func (m *Map[K, V]) Clear() {
	(*sync.Map)(m).Clear()
}
