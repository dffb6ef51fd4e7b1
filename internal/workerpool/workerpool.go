// Package workerpool provides the process-wide worker pools used for parallel
// chunk compression and decompression.
//
// Pools are shared by size: every container configured with n threads runs its
// tasks on the same n workers. Acquire and Release keep a reference count and the
// workers stop when the last user releases the pool.
package workerpool

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/schunk/errs"
)

// ErrTaskPanic wraps the value recovered from a panicking task.
var ErrTaskPanic = errors.New("worker task panicked")

// Pool is a fixed set of workers executing indexed tasks.
type Pool struct {
	size int
	refs int // guarded by registryMu

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	group  errgroup.Group
}

type job struct {
	index   int
	fn      func(i int) error
	results []error
	wg      *sync.WaitGroup
}

var (
	registryMu sync.Mutex
	pools      = map[int]*Pool{}
)

// Acquire returns the shared pool with n workers, starting it on first use.
// Every successful Acquire must be paired with one Release.
func Acquire(n int) (*Pool, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidThreadCount, n)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if p, ok := pools[n]; ok {
		p.refs++
		return p, nil
	}

	p := newPool(n)
	p.refs = 1
	pools[n] = p

	return p, nil
}

func newPool(n int) *Pool {
	p := &Pool{size: n}
	if n == 1 {
		return p
	}

	p.jobs = make(chan job, n)
	for range n {
		p.group.Go(func() error {
			for j := range p.jobs {
				j.run()
			}

			return nil
		})
	}

	return p
}

// Release drops one reference. The last Release stops the workers and waits for
// them to exit.
func (p *Pool) Release() {
	registryMu.Lock()
	if p.refs <= 0 {
		registryMu.Unlock()
		return
	}
	p.refs--
	last := p.refs == 0
	if last && pools[p.size] == p {
		delete(pools, p.size)
	}
	registryMu.Unlock()

	if last {
		p.stop()
	}
}

func (p *Pool) stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.jobs != nil {
		close(p.jobs)
	}
	p.mu.Unlock()

	_ = p.group.Wait()
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Run executes task(0) .. task(k-1) and blocks until all of them finished.
//
// The returned slice has one slot per task index holding that task's error,
// so callers can report failures in submission order regardless of completion
// order. A panicking task is reported as an error wrapping ErrTaskPanic.
//
// Single-worker pools, single tasks and stopped pools run inline on the caller.
func (p *Pool) Run(k int, task func(i int) error) []error {
	if k <= 0 {
		return nil
	}

	results := make([]error, k)
	var wg sync.WaitGroup
	wg.Add(k)

	p.mu.RLock()
	if p.size == 1 || k == 1 || p.closed {
		p.mu.RUnlock()
		for i := range k {
			job{index: i, fn: task, results: results, wg: &wg}.run()
		}

		return results
	}

	for i := range k {
		p.jobs <- job{index: i, fn: task, results: results, wg: &wg}
	}
	p.mu.RUnlock()

	wg.Wait()

	return results
}

func (j job) run() {
	defer j.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			j.results[j.index] = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()

	j.results[j.index] = j.fn(j.index)
}

// FirstError returns the first non-nil error of a Run result.
func FirstError(results []error) error {
	for _, err := range results {
		if err != nil {
			return err
		}
	}

	return nil
}
