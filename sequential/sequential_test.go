package sequential_test

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mathicgb/mtbb/gsync"
	"github.com/mathicgb/mtbb/sequential"
)

func TestMutex(t *testing.T) {
	var m sequential.Mutex
	m.Lock()
	m.Unlock()
	m.Lock()
	m.Unlock()

	require.True(t, m.TryLock())
	assert.False(t, m.TryLock())
	m.Unlock()
}

func TestMutexFailsFast(t *testing.T) {
	var m sequential.Mutex
	assert.PanicsWithValue(t, "sequential: Unlock of unlocked Mutex", m.Unlock)

	m.Lock()
	assert.PanicsWithValue(t, "sequential: Lock of locked Mutex would deadlock", m.Lock)
}

func TestMutexWithScopedLock(t *testing.T) {
	var m sequential.Mutex
	func() {
		l := gsync.NewScopedLock(&m)
		defer l.Close()
		assert.False(t, m.TryLock())
	}()
	require.True(t, m.TryLock())
	m.Unlock()

	var l gsync.ScopedLock
	m.Lock()
	assert.False(t, l.TryAcquire(&m))
	assert.Panics(t, func() { l.Acquire(&m) }, "re-locking through a guard must not block")
	m.Unlock()
}

func TestBlockedRangeIsNeverDivisible(t *testing.T) {
	r := sequential.NewBlockedRange(0, 1000, 1)
	assert.False(t, r.IsDivisible())
	assert.Equal(t, 1000, r.Size())
	assert.Equal(t, 1, r.Grainsize())
	assert.Panics(t, func() { sequential.NewBlockedRange(1, 0, 1) })
}

func TestBlockedRangeWideSpans(t *testing.T) {
	assert.Equal(t, 200, sequential.NewBlockedRange[int8](-100, 100, 1).Size())
	assert.Equal(t, 255, sequential.NewBlockedRange[int8](math.MinInt8, math.MaxInt8, 1).Size())
	assert.Equal(t, math.MaxInt, sequential.NewBlockedRange[uint64](0, math.MaxUint64, 1).Size())
}

func TestForInvokesBodyOnce(t *testing.T) {
	calls := 0
	r := sequential.NewBlockedRange[int64](5, 50, 4)
	sequential.For(r, func(got sequential.BlockedRange[int64]) {
		calls++
		assert.Equal(t, r, got)
	})
	assert.Equal(t, 1, calls)
}

func TestForStep(t *testing.T) {
	var got []int
	sequential.ForStep(1, 11, 3, func(i int) { got = append(got, i) })
	assert.Equal(t, []int{1, 4, 7, 10}, got)

	var bytes []uint8
	sequential.ForStep[uint8](250, math.MaxUint8, 2, func(i uint8) { bytes = append(bytes, i) })
	assert.Equal(t, []uint8{250, 252, 254}, bytes)

	calls := 0
	sequential.ForStep(3, 3, 1, func(int) { calls++ })
	assert.Zero(t, calls)

	assert.Panics(t, func() { sequential.ForStep(0, 1, 0, func(int) {}) })
}

func TestForStepWideSpans(t *testing.T) {
	indices := func(begin, end, step int64) (s []int64) {
		for i := begin; i < end; i += step {
			s = append(s, i)
		}
		return
	}
	var extremes []int64
	for i, k := int64(math.MinInt64), 0; k < 16; i, k = i+1<<60, k+1 {
		extremes = append(extremes, i)
	}
	for _, tc := range []struct {
		name string
		run  func(record func(int64))
		want []int64
	}{
		{"int8", func(record func(int64)) {
			sequential.ForStep[int8](-100, 100, 1, func(i int8) { record(int64(i)) })
		}, indices(-100, 100, 1)},
		{"int8 full", func(record func(int64)) {
			sequential.ForStep[int8](math.MinInt8, math.MaxInt8, 1, func(i int8) { record(int64(i)) })
		}, indices(math.MinInt8, math.MaxInt8, 1)},
		{"int8 coarse", func(record func(int64)) {
			sequential.ForStep[int8](math.MinInt8, math.MaxInt8, 100, func(i int8) { record(int64(i)) })
		}, indices(math.MinInt8, math.MaxInt8, 100)},
		{"uint8 full", func(record func(int64)) {
			sequential.ForStep[uint8](0, math.MaxUint8, 1, func(i uint8) { record(int64(i)) })
		}, indices(0, math.MaxUint8, 1)},
		{"int64 full", func(record func(int64)) {
			sequential.ForStep[int64](math.MinInt64, math.MaxInt64, 1<<60, record)
		}, extremes},
	} {
		var got []int64
		tc.run(func(i int64) { got = append(got, i) })
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestFeederAddAfterReturnPanics(t *testing.T) {
	var escaped *sequential.Feeder[int]
	sequential.ForEach([]int{1}, func(_ int, feeder *sequential.Feeder[int]) {
		escaped = feeder
	})
	assert.PanicsWithValue(t, "sequential: Feeder.Add called after ForEach returned", func() {
		escaped.Add(2)
	})
}

func TestForEachOrder(t *testing.T) {
	var got []int
	sequential.ForEach([]int{1, 2, 3}, func(v int, feeder *sequential.Feeder[int]) {
		got = append(got, v)
		if v < 10 {
			feeder.Add(v * 10)
		}
	})
	assert.Equal(t, []int{1, 10, 2, 20, 3, 30}, got)
}

func TestForEachDrainsFedTasksLIFO(t *testing.T) {
	var got []string
	sequential.ForEach([]string{"a"}, func(v string, feeder *sequential.Feeder[string]) {
		got = append(got, v)
		if len(v) < 3 {
			feeder.Add(v + "x")
			feeder.Add(v + "y")
		}
	})
	assert.Equal(t, strings.Fields("a ay ayy ayx ax axy axx"), got)
}

func TestSort(t *testing.T) {
	s := []string{"pear", "fig", "apple", "kiwi", "banana"}
	byLen := func(a, b string) bool { return len(a) < len(b) }
	sequential.Sort(s, byLen)
	assert.True(t, sort.SliceIsSorted(s, func(i, j int) bool { return byLen(s[i], s[j]) }))
	assert.ElementsMatch(t, []string{"pear", "fig", "apple", "kiwi", "banana"}, s)
}

func TestThreadLocal(t *testing.T) {
	created := 0
	tl := sequential.NewThreadLocal(func() []int {
		created++
		return make([]int, 0, 4)
	})
	assert.True(t, tl.Empty())
	for range tl.All() {
		t.Fatal("All yielded before Local")
	}

	*tl.Local() = append(*tl.Local(), 1)
	*tl.Local() = append(*tl.Local(), 2)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, tl.Size())

	n := 0
	for v := range tl.All() {
		assert.Equal(t, []int{1, 2}, *v)
		n++
	}
	assert.Equal(t, 1, n)

	tl.Clear()
	assert.True(t, tl.Empty())
	assert.Empty(t, *tl.Local())
	assert.Equal(t, 2, created)
}

func TestMap(t *testing.T) {
	var m sequential.Map[int, string]
	_, ok := m.Load(1)
	assert.False(t, ok)
	m.Delete(1)

	v, loaded := m.LoadOrStore(1, "one")
	assert.False(t, loaded)
	assert.Equal(t, "one", v)
	v, loaded = m.LoadOrStore(1, "uno")
	assert.True(t, loaded)
	assert.Equal(t, "one", v)

	m.Store(2, "two")
	assert.Equal(t, 2, m.Len())
	m.Range(func(k int, _ string) bool {
		m.Delete(k)
		return true
	})
	assert.Zero(t, m.Len())

	m.Store(3, "three")
	v, loaded = m.LoadAndDelete(3)
	assert.True(t, loaded)
	assert.Equal(t, "three", v)
	m.Store(4, "four")
	m.Clear()
	assert.Zero(t, m.Len())
}

func TestScheduler(t *testing.T) {
	outer := sequential.NewScheduler(0, sequential.WithLogger(slog.Default()))
	inner := sequential.NewScheduler(8)
	assert.Equal(t, 8, inner.Limit())
	assert.Equal(t, 1, sequential.MaxConcurrency())
	inner.Close()
	outer.Close()
	assert.Panics(t, func() { sequential.NewScheduler(-2) })
}
