// Package threads holds the process-wide worker pool that image filters
// split their rows across. The pool size is a hint set by effects from
// the host's CPU count; a limit of 1 runs everything on the caller.
package threads

import (
	"runtime"
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

var (
	mu    sync.Mutex
	limit = runtime.GOMAXPROCS(0)
	pools = map[int]*workerpool.Pool{}
)

// Limit sets the number of workers used by ParallelRows. n <= 0 selects
// GOMAXPROCS. Pools are kept per size, so a render already running on a
// previous pool is not disturbed.
func Limit(n int) {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	mu.Lock()
	limit = n
	mu.Unlock()
}

// Current returns the active limit.
func Current() int {
	mu.Lock()
	defer mu.Unlock()
	return limit
}

// Pool returns the pool for the active limit.
func Pool() *workerpool.Pool {
	mu.Lock()
	defer mu.Unlock()
	p, ok := pools[limit]
	if !ok {
		p = workerpool.New(limit)
		pools[limit] = p
	}
	return p
}

// ParallelRows calls fn over [0, h) in contiguous chunks. fn must not call
// ParallelRows itself.
func ParallelRows(h int, fn func(y0, y1 int)) {
	if h <= 0 {
		return
	}
	if h < 2 || Current() == 1 {
		fn(0, h)
		return
	}
	Pool().ParallelFor(h, fn)
}
