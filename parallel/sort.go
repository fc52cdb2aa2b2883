package parallel

import (
	"slices"

	"github.com/mathicgb/mtbb/internal/worker"
)

// SortGrain is the length below which Sort sorts sequentially.
const SortGrain = 1 << 11

// Sort sorts s according to less, which must be a strict weak ordering.
// It is a parallel merge sort: both halves of s are sorted in parallel and
// then merged. Sort is not guaranteed to be stable.
func Sort[T any](s []T, less func(a, b T) bool) {
	cmp := func(a, b T) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	}
	if len(s) <= SortGrain {
		slices.SortFunc(s, cmp)
		return
	}
	lim := currentLimiter()
	defer worker.Enter()()
	buf := make([]T, len(s))
	var recur func(s, buf []T)
	recur = func(s, buf []T) {
		if len(s) <= SortGrain {
			slices.SortFunc(s, cmp)
			return
		}
		mid := len(s) / 2
		fork(lim,
			func() { recur(s[:mid], buf[:mid]) },
			func() { recur(s[mid:], buf[mid:]) },
		)
		merge(s[:mid], s[mid:], buf, less)
		copy(s, buf)
	}
	recur(s, buf)
}

// merge merges the sorted slices a and b into dst, which must have room
// for both.
func merge[T any](a, b, dst []T, less func(a, b T) bool) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if less(b[j], a[i]) {
			dst[k] = b[j]
			j++
		} else {
			dst[k] = a[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}
