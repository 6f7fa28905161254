// Package workerpool runs jobs on a fixed number of goroutines.
package workerpool

import (
	"context"
	"sync"
)

// DefaultWorkers is used when a pool is created with a non-positive size.
const DefaultWorkers = 10

// Pool distributes jobs across a fixed set of workers and collects results.
// Once its context is cancelled, queued jobs are drained without being run.
type Pool[Job any, Result any] struct {
	numWorkers int
	jobs       chan Job
	results    chan Result
	wg         sync.WaitGroup
}

// New creates a pool with numWorkers workers and room for numJobs queued jobs.
// If numWorkers is 0 or negative, it defaults to DefaultWorkers.
// If numJobs is less than numWorkers, the pool is sized to match numJobs.
func New[Job any, Result any](numWorkers, numJobs int) *Pool[Job, Result] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	if numJobs > 0 {
		numWorkers = min(numWorkers, numJobs)
	}
	if numJobs < 0 {
		numJobs = 0
	}

	return &Pool[Job, Result]{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numJobs),
		results:    make(chan Result, numJobs),
	}
}

// Workers returns the number of workers the pool starts.
func (p *Pool[Job, Result]) Workers() int {
	return p.numWorkers
}

// Start launches the workers. fn runs once per job unless ctx is done by the
// time the job is dequeued, in which case the job produces no result.
func (p *Pool[Job, Result]) Start(ctx context.Context, fn func(context.Context, Job) Result) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				if ctx.Err() != nil {
					continue
				}
				p.results <- fn(ctx, job)
			}
		}()
	}
}

// Submit adds a job to the queue.
func (p *Pool[Job, Result]) Submit(job Job) {
	p.jobs <- job
}

// Close closes the job queue. The results channel is closed once every
// worker has returned.
func (p *Pool[Job, Result]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the channel of worker outputs.
func (p *Pool[Job, Result]) Results() <-chan Result {
	return p.results
}
