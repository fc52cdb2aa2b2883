package sequential

import "iter"

// ThreadLocal holds the single instance of T that belongs to the only
// worker there is.
type ThreadLocal[T any] struct {
	create func() T
	obj    *T
}

// NewThreadLocal returns a ThreadLocal that initializes its instance with
// create. A nil create leaves it at the zero value.
func NewThreadLocal[T any](create func() T) *ThreadLocal[T] {
	return &ThreadLocal[T]{create: create}
}

// Local returns the instance, creating it if needed.
func (e *ThreadLocal[T]) Local() *T {
	if e.obj == nil {
		e.obj = new(T)
		if e.create != nil {
			*e.obj = e.create()
		}
	}
	return e.obj
}

// All iterates over the instance, if it has been created.
func (e *ThreadLocal[T]) All() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		if e.obj != nil {
			yield(e.obj)
		}
	}
}

func (e *ThreadLocal[T]) Size() int {
	if e.obj == nil {
		return 0
	}
	return 1
}

func (e *ThreadLocal[T]) Empty() bool {
	return e.obj == nil
}

// Clear discards the instance.
func (e *ThreadLocal[T]) Clear() {
	e.obj = nil
}

// Map is an unordered map with the method set of gsync.Map. The zero value
// is an empty map ready to use.
type Map[K comparable, V any] struct {
	m map[K]V
}

func (m *Map[K, V]) Delete(key K) {
	delete(m.m, key)
}

func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	value, ok = m.m[key]
	return
}

func (m *Map[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	value, loaded = m.m[key]
	if loaded {
		delete(m.m, key)
	}
	return
}

func (m *Map[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	if actual, loaded = m.m[key]; loaded {
		return
	}
	m.Store(key, value)
	return value, false
}

// Range calls f for each entry until f returns false. f may delete
// entries.
func (m *Map[K, V]) Range(f func(K, V) bool) {
	for k, v := range m.m {
		if !f(k, v) {
			return
		}
	}
}

func (m *Map[K, V]) Store(key K, value V) {
	if m.m == nil {
		m.m = make(map[K]V)
	}
	m.m[key] = value
}

func (m *Map[K, V]) Len() int {
	return len(m.m)
}

func (m *Map[K, V]) Clear() {
	clear(m.m)
}
