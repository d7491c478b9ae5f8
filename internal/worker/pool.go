// Package worker runs blocking units of work on a fixed set of goroutines.
//
// HTTP handlers hand the fetch and aggregate cycle to the pool and wait for
// its result, so the number of concurrent outbound provider calls is bounded
// by the pool size rather than by the number of inbound requests.
package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolStopped is returned by Submit after Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

// Config sets the pool dimensions.
type Config struct {
	Workers   int // number of goroutines
	QueueSize int // buffered jobs waiting for a worker
}

// Pool owns a buffered job channel and the workers draining it.
type Pool struct {
	jobs   chan func()
	quit   chan struct{}
	exited chan struct{} // closed once every worker has returned
	once   sync.Once
	wg     sync.WaitGroup
}

// NewPool starts cfg.Workers goroutines. At least one worker is always started.
func NewPool(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}

	p := &Pool{
		jobs:   make(chan func(), cfg.QueueSize),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	for range cfg.Workers {
		p.wg.Add(1)
		go p.run()
	}
	go func() {
		p.wg.Wait()
		close(p.exited)
	}()
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.quit:
			return
		}
	}
}

// Stop prevents new submissions and waits for running jobs to finish.
// Jobs still queued when Stop is called are abandoned; their submitters
// receive ErrPoolStopped.
func (p *Pool) Stop() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}

type result[T any] struct {
	value T
	err   error
}

// Submit runs fn on a pool worker and waits for its result. If ctx ends first,
// Submit returns ctx.Err() and fn keeps running in the background. A job that
// a worker picked up before Stop still delivers its result; only jobs left in
// the queue get ErrPoolStopped.
func Submit[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	done := make(chan result[T], 1)
	job := func() {
		v, err := fn()
		done <- result[T]{value: v, err: err}
	}

	select {
	case <-p.quit:
		return zero, ErrPoolStopped
	default:
	}

	select {
	case p.jobs <- job:
	case <-p.quit:
		return zero, ErrPoolStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case r := <-done:
		return r.value, r.err
	case <-p.exited:
		// Workers send before returning, so a started job has landed by now.
		select {
		case r := <-done:
			return r.value, r.err
		default:
			return zero, ErrPoolStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
