package workerpool

import (
	"context"
	"fmt"
	"sync"
)

// Task is a unit of work submitted to the pool
type Task func() error

// Pool runs tasks across a fixed number of workers. The per-series
// forecasting loop is embarrassingly parallel; the pool bounds its fan-out
// while callers serialize any shared accumulation themselves.
type Pool struct {
	workerCount int
	tasks       chan Task
	errors      chan error
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a pool with the given number of workers
func New(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workerCount: workerCount,
		tasks:       make(chan Task, workerCount*2),
		errors:      make(chan error, workerCount),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			if err := task(); err != nil {
				select {
				case p.errors <- err:
				default:
					// Error channel full; later errors are dropped
				}
			}
		}
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Submit queues a task for execution
func (p *Pool) Submit(task Task) error {
	select {
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is stopped")
	case p.tasks <- task:
		return nil
	}
}

// Wait closes the queue and blocks until all submitted tasks finish
func (p *Pool) Wait() {
	close(p.tasks)
	p.wg.Wait()
}

// Stop aborts the pool without draining the queue
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Errors returns the channel carrying task errors
func (p *Pool) Errors() <-chan error {
	return p.errors
}
