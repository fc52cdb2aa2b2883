package mtbb_test

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathicgb/mtbb"
)

// The tests in this file hold under either backend.

func TestMutexLockUnlockCycle(t *testing.T) {
	var m mtbb.Mutex
	m.Lock()
	m.Unlock()
	m.Lock()
	m.Unlock()
	require.True(t, m.TryLock())
	m.Unlock()
}

func TestScopedLockReleasesOnEveryExit(t *testing.T) {
	var m mtbb.Mutex
	errEarly := errors.New("early")

	guarded := func(early bool) error {
		l := mtbb.NewScopedLock(&m)
		defer l.Close()
		assert.False(t, m.TryLock(), "mutex is locked while the guard is bound")
		if early {
			return errEarly
		}
		return nil
	}
	for _, early := range []bool{false, true, false} {
		_ = guarded(early)
		require.True(t, m.TryLock(), "mutex is unlocked after the guard's scope, early=%v", early)
		m.Unlock()
	}

	assert.Panics(t, func() {
		mtbb.WithLock(&m, func() { panic("boom") })
	})
	require.True(t, m.TryLock())
	m.Unlock()
}

func TestScopedLockAcquire(t *testing.T) {
	var m mtbb.Mutex
	var l mtbb.ScopedLock
	assert.False(t, l.Held())

	l.Acquire(&m)
	assert.True(t, l.Held())
	assert.Panics(t, func() { l.Acquire(&m) }, "double binding")
	l.Release()
	assert.Panics(t, l.Release, "release of unbound guard")

	require.True(t, l.TryAcquire(&m))
	l.Release()
}

func TestOtherLockers(t *testing.T) {
	var q mtbb.QueuingMutex
	var n mtbb.NullMutex
	for _, m := range []mtbb.Locker{&q, &n} {
		mtbb.WithLock(m, func() {})
		m.Lock()
		m.Unlock()
	}
}

func TestParallelForVisitsEveryIndexOnce(t *testing.T) {
	for _, size := range []int{0, 1, 5, 1000} {
		var m mtbb.Mutex
		seen := make([]int, size)
		mtbb.ParallelFor(mtbb.NewBlockedRange(0, size, 3), func(r mtbb.BlockedRange[int]) {
			mtbb.WithLock(&m, func() {
				for i := r.Begin(); i < r.End(); i++ {
					seen[i]++
				}
			})
		})
		for i, n := range seen {
			require.Equal(t, 1, n, "index %d of %d", i, size)
		}
	}
}

func TestParallelForStep(t *testing.T) {
	var m mtbb.Mutex
	var got []int64
	mtbb.ParallelForStep[int64](-10, 95, 5, func(i int64) {
		l := mtbb.NewScopedLock(&m)
		defer l.Close()
		got = append(got, i)
	})
	slices.Sort(got)
	var want []int64
	for i := int64(-10); i < 95; i += 5 {
		want = append(want, i)
	}
	assert.Equal(t, want, got)
}

func TestParallelForStepFullSpan(t *testing.T) {
	var m mtbb.Mutex
	counts := map[int8]int{}
	mtbb.ParallelForStep[int8](math.MinInt8, math.MaxInt8, 1, func(i int8) {
		mtbb.WithLock(&m, func() { counts[i]++ })
	})
	require.Len(t, counts, 255)
	for i, n := range counts {
		require.Equal(t, 1, n, "index %d", i)
	}
	assert.NotContains(t, counts, int8(math.MaxInt8))

	assert.Equal(t, 200, mtbb.NewBlockedRange[int8](-100, 100, 1).Size())
}

func TestFeederAddAfterReturnPanics(t *testing.T) {
	var escaped *mtbb.Feeder[int]
	mtbb.ParallelForEach([]int{1}, func(_ int, feeder *mtbb.Feeder[int]) {
		escaped = feeder
	})
	assert.Panics(t, func() { escaped.Add(2) })
}

func TestParallelForEachFeeder(t *testing.T) {
	var m mtbb.Mutex
	counts := map[int]int{}
	mtbb.ParallelForEach([]int{1, 2, 3}, func(v int, feeder *mtbb.Feeder[int]) {
		mtbb.WithLock(&m, func() { counts[v]++ })
		if v < 10 {
			feeder.Add(v * 10)
		}
	})
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1, 10: 1, 20: 1, 30: 1}, counts)
}

func TestParallelSort(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	type pair struct{ key, id int }
	s := make([]pair, 20000)
	for i := range s {
		s[i] = pair{key: rng.IntN(500), id: i}
	}
	less := func(a, b pair) bool { return a.key < b.key }
	mtbb.ParallelSort(s, less)
	for i := 1; i < len(s); i++ {
		require.False(t, less(s[i], s[i-1]), "at %d", i)
	}

	ids := make([]int, len(s))
	for i, p := range s {
		ids[i] = p.id
	}
	slices.Sort(ids)
	for i, id := range ids {
		require.Equal(t, i, id, "result is a permutation of the input")
	}
}

func TestThreadLocalAccumulation(t *testing.T) {
	tl := mtbb.NewThreadLocal(func() int64 { return 0 })
	mtbb.ParallelFor(mtbb.NewBlockedRange[int64](1, 10001, 16), func(r mtbb.BlockedRange[int64]) {
		local := tl.Local()
		for i := r.Begin(); i < r.End(); i++ {
			*local += i
		}
	})
	var sum int64
	for v := range tl.All() {
		sum += *v
	}
	assert.Equal(t, int64(10000*10001/2), sum)
	assert.GreaterOrEqual(t, tl.Size(), 1)
	assert.LessOrEqual(t, tl.Size(), mtbb.MaxConcurrency()+1)

	tl.Clear()
	assert.True(t, tl.Empty())
}

func TestUnorderedMap(t *testing.T) {
	var m mtbb.UnorderedMap[int, int]
	mtbb.ParallelForStep(0, 100, 1, func(i int) {
		m.LoadOrStore(i%10, i)
	})
	n := 0
	m.Range(func(k, v int) bool {
		assert.Equal(t, k, v%10)
		n++
		return true
	})
	assert.Equal(t, 10, n)
}

func TestSchedulerNestingDoesNotFail(t *testing.T) {
	outer := mtbb.NewScheduler(0, mtbb.WithLogger(nil))
	defer outer.Close()
	inner := mtbb.NewScheduler(2)
	innermost := mtbb.NewScheduler(16)
	assert.GreaterOrEqual(t, mtbb.MaxConcurrency(), 1)
	assert.LessOrEqual(t, mtbb.MaxConcurrency(), 2)
	innermost.Close()
	inner.Close()

	assert.Panics(t, func() { mtbb.NewScheduler(-1) })
}

func TestTickCountIsMonotonic(t *testing.T) {
	prev := mtbb.Now()
	for i := 0; i < 1000; i++ {
		next := mtbb.Now()
		require.GreaterOrEqual(t, next.Sub(prev).Seconds(), 0.0)
		prev = next
	}

	t1 := mtbb.Now()
	time.Sleep(10 * time.Millisecond)
	t2 := mtbb.Now()
	elapsed := t2.Sub(t1)
	assert.GreaterOrEqual(t, elapsed.Seconds(), 0.01)
	assert.Less(t, t1.Sub(t2).Seconds(), 0.0)
	assert.Equal(t, time.Duration(elapsed), elapsed.Duration())
}

func ExampleParallelForEach() {
	var m mtbb.Mutex
	var processed []int
	mtbb.ParallelForEach([]int{1, 2, 3}, func(v int, feeder *mtbb.Feeder[int]) {
		mtbb.WithLock(&m, func() { processed = append(processed, v) })
		if v < 10 {
			feeder.Add(v * 10)
		}
	})
	slices.Sort(processed)
	fmt.Println(processed)

	// Output:
	// [1 2 3 10 20 30]
}

func ExampleThreadLocal() {
	counts := mtbb.NewThreadLocal(func() int { return 0 })
	mtbb.ParallelForStep(0, 1000, 1, func(int) {
		*counts.Local()++
	})
	total := 0
	for c := range counts.All() {
		total += *c
	}
	fmt.Println(total)

	// Output:
	// 1000
}

func ExampleTickCount() {
	start := mtbb.Now()
	mtbb.ParallelSort([]int{3, 1, 2}, func(a, b int) bool { return a < b })
	fmt.Println(mtbb.Now().Sub(start).Seconds() >= 0)

	// Output:
	// true
}
