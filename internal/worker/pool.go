package worker

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/baharkarakas/jobcard-backend/internal/metrics"
)

var ErrStopped = errors.New("worker pool stopped")

type task func()

// Pool runs fire-and-forget side effects (event publishing, blob cleanup).
type Pool struct {
	wg      sync.WaitGroup
	mu      sync.RWMutex
	jobs    chan task
	stopped bool
}

func NewPool(n, queue int) *Pool {
	if queue <= 0 {
		queue = 1024
	}
	p := &Pool{jobs: make(chan task, queue)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
				run(job)
			}
		}()
	}
	return p
}

func run(job task) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("worker panic", "err", rec)
		}
	}()
	job()
}

// Submit enqueues f; it blocks while the queue is full.
func (p *Pool) Submit(f task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	p.jobs <- f
	metrics.WorkerQueueDepth.Set(float64(len(p.jobs)))
	return nil
}

// Stop drains queued jobs and waits for the workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
