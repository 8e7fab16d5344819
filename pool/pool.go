package pool

import (
	"context"
	"sync"

	"assetConverter/task"
)

// WorkerPool bounds the number of concurrently running tasks with a
// buffered-channel semaphore. The limit is fixed at construction.
type WorkerPool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewWorkerPool(maxWorkers int) *WorkerPool {
	return &WorkerPool{
		sem: make(chan struct{}, maxWorkers),
	}
}

// Submit schedules one task. The handler runs once a worker slot is
// free; if the context is cancelled first, the task is skipped. Handlers
// are fully independent and never observe each other's outcomes.
func (p *WorkerPool) Submit(ctx context.Context, t task.Task, handler func(context.Context, task.Task)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
			handler(ctx, t)
		case <-ctx.Done():
		}
	}()
}

// Wait blocks until every submitted task has finished.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}
