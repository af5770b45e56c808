// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package parallel runs row bands of a draw across a fixed set of worker
// goroutines.
package parallel

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a pool of goroutines for band-parallel drawing.
//
// Each worker has its own queue and steals from the others when its queue
// is empty, so bands of uneven cost still balance.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// closeMu orders dispatch against Close: Bands holds it for reading
	// while queueing, Close for writing while closing done.
	closeMu sync.RWMutex
}

// NewPool starts a pool with the given number of workers. If workers is 0
// or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			work()
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				work()
			}
		}
	}
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }

// Bands splits rows [0, n) into at most Workers contiguous bands and runs
// fn on each, waiting for all of them. A panic in fn is recovered and
// returned as an error once every band has finished.
//
// After Close, bands run on the calling goroutine.
func (p *Pool) Bands(n int, fn func(y0, y1 int)) error {
	if n <= 0 {
		return nil
	}
	bands := min(p.workers, n)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicked any
	)
	run := func(y0, y1 int) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				mu.Lock()
				if panicked == nil {
					panicked = r
				}
				mu.Unlock()
			}
		}()
		fn(y0, y1)
	}

	wg.Add(bands)
	p.closeMu.RLock()
	inline := !p.running.Load()
	for i := range bands {
		y0, y1 := n*i/bands, n*(i+1)/bands
		if inline {
			run(y0, y1)
			continue
		}
		p.queues[i%p.workers] <- func() { run(y0, y1) }
	}
	p.closeMu.RUnlock()
	wg.Wait()

	if panicked != nil {
		return fmt.Errorf("parallel: band panicked: %v", panicked)
	}
	return nil
}

// Close stops the workers after their queued work completes. Close is
// safe to call multiple times.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.closeMu.Unlock()
		return
	}
	close(p.done)
	p.closeMu.Unlock()
	p.wg.Wait()
}
