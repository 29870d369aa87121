// Package worker fans batches of questions out to a bounded set of
// goroutines and rations outbound requests per host.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of pool work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job hands back. GetError reports the job-level
// failure, if any.
type Result interface {
	GetError() error
}

// Pool runs submitted jobs on a fixed number of worker goroutines.
// Submissions and results flow through buffered channels so neither
// side stalls the other under normal load.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	once    sync.Once
}

// NewPool sizes a pool. Worker counts below one are clamped to one so
// a bad concurrency setting degrades to serial processing. Cancelling
// ctx stops the workers and unblocks pending submissions.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers*2),
		results: make(chan Result, workers*2),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			select {
			case p.results <- job.Execute(p.ctx):
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. After Shutdown or context cancellation the job
// is dropped rather than blocking the caller.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, lets the workers drain it and returns every
// result. Call it once, after all submissions.
func (p *Pool) Wait() []Result {
	close(p.jobs)

	go func() {
		p.wg.Wait()
		p.finish()
	}()

	var collected []Result
	for res := range p.results {
		collected = append(collected, res)
	}
	return collected
}

// Shutdown cancels in-flight jobs and stops the workers without
// draining the queue.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
	p.finish()
}

func (p *Pool) finish() {
	p.once.Do(func() { close(p.results) })
}
