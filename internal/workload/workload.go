// Package workload contains the benchmarks run by mtbbbench. They are
// written against the mtbb facade only, so they run unchanged under either
// backend, and each one checks its own result.
package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/mathicgb/mtbb"
)

// ErrCheck is returned when a workload computed a wrong result.
var ErrCheck = errors.New("workload: check failed")

// Params are the inputs shared by all workloads.
type Params struct {
	Size  int
	Grain int
	Seed  uint64
}

// Result describes one workload run.
type Result struct {
	Name     string
	Elapsed  mtbb.Interval
	Checksum int64
}

// A Func runs a workload.
type Func func(Params) (Result, error)

var registry = map[string]Func{
	"for":     SumSquares,
	"step":    Strided,
	"foreach": Reach,
	"sort":    Sort,
}

// Names lists the registered workloads in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the workload with the given name.
func Lookup(name string) (Func, error) {
	if f, ok := registry[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("workload: unknown workload %q (known: %v)", name, Names())
}

// SumSquares adds up i*i for i in [0, Size) with ParallelFor, accumulating
// into per-worker partial sums.
func SumSquares(p Params) (Result, error) {
	start := mtbb.Now()
	partial := mtbb.NewThreadLocal(func() int64 { return 0 })
	mtbb.ParallelFor(mtbb.NewBlockedRange(0, int64(p.Size), p.Grain), func(r mtbb.BlockedRange[int64]) {
		sum := partial.Local()
		for i := r.Begin(); i < r.End(); i++ {
			*sum += i * i
		}
	})
	var total int64
	for sum := range partial.All() {
		total += *sum
	}
	res := Result{Name: "for", Elapsed: mtbb.Now().Sub(start), Checksum: total}

	n := int64(p.Size)
	if want := (n - 1) * n * (2*n - 1) / 6; total != want {
		return res, fmt.Errorf("%w: sum of squares below %d is %d, want %d", ErrCheck, n, total, want)
	}
	return res, nil
}

const stride = 7

// Strided collects every seventh index of [0, Size) with ParallelForStep
// into a slice shared under a Mutex.
func Strided(p Params) (Result, error) {
	start := mtbb.Now()
	var (
		mutex   mtbb.Mutex
		indices []int
	)
	mtbb.ParallelForStep(0, p.Size, stride, func(i int) {
		l := mtbb.NewScopedLock(&mutex)
		defer l.Close()
		indices = append(indices, i)
	})
	res := Result{Name: "step", Elapsed: mtbb.Now().Sub(start), Checksum: int64(len(indices))}

	slices.Sort(indices)
	for k, i := range indices {
		if i != k*stride {
			return res, fmt.Errorf("%w: index %d at position %d", ErrCheck, i, k)
		}
	}
	if want := (p.Size + stride - 1) / stride; len(indices) != want {
		return res, fmt.Errorf("%w: %d indices, want %d", ErrCheck, len(indices), want)
	}
	return res, nil
}

// graph is a directed graph in which every node has two successors.
type graph [][2]int

func newGraph(size int, seed uint64) graph {
	rng := rand.New(rand.NewPCG(seed, uint64(size)))
	g := make(graph, size)
	for i := range g {
		g[i] = [2]int{rng.IntN(size), rng.IntN(size)}
	}
	return g
}

// reachable counts the nodes reachable from node 0 with a plain depth
// first search.
func (g graph) reachable() int {
	if len(g) == 0 {
		return 0
	}
	seen := make([]bool, len(g))
	seen[0] = true
	stack := []int{0}
	count := 1
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range g[v] {
			if !seen[w] {
				seen[w] = true
				count++
				stack = append(stack, w)
			}
		}
	}
	return count
}

// Reach discovers the nodes reachable from node 0 of a random graph with
// ParallelForEach, feeding each newly visited successor as a new task.
func Reach(p Params) (Result, error) {
	g := newGraph(p.Size, p.Seed)
	start := mtbb.Now()
	var visited mtbb.UnorderedMap[int, struct{}]
	var roots []int
	if len(g) > 0 {
		visited.Store(0, struct{}{})
		roots = []int{0}
	}
	mtbb.ParallelForEach(roots, func(v int, feeder *mtbb.Feeder[int]) {
		for _, w := range g[v] {
			if _, loaded := visited.LoadOrStore(w, struct{}{}); !loaded {
				feeder.Add(w)
			}
		}
	})
	count := visited.Len()
	res := Result{Name: "foreach", Elapsed: mtbb.Now().Sub(start), Checksum: int64(count)}

	if want := g.reachable(); count != want {
		return res, fmt.Errorf("%w: reached %d nodes, want %d", ErrCheck, count, want)
	}
	return res, nil
}

// Sort sorts Size pseudo-random integers with ParallelSort.
func Sort(p Params) (Result, error) {
	rng := rand.New(rand.NewPCG(p.Seed, 0))
	s := make([]int64, p.Size)
	var sum int64
	for i := range s {
		s[i] = rng.Int64N(1 << 40)
		sum += s[i]
	}
	start := mtbb.Now()
	mtbb.ParallelSort(s, func(a, b int64) bool { return a < b })
	res := Result{Name: "sort", Elapsed: mtbb.Now().Sub(start), Checksum: sum}

	var after int64
	for i, v := range s {
		if i > 0 && v < s[i-1] {
			return res, fmt.Errorf("%w: out of order at %d", ErrCheck, i)
		}
		after += v
	}
	if after != sum {
		return res, fmt.Errorf("%w: elements changed during sort", ErrCheck)
	}
	return res, nil
}
