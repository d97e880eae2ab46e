package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("worker: pool is stopped")

// Job is one unit of work. It runs under a context bounded by the pool's
// job timeout.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// WorkerPool manages a pool of workers and a queue of jobs.
type WorkerPool struct {
	JobQueue   chan Job
	MaxWorkers int
	// JobTimeout bounds each job; zero means no deadline.
	JobTimeout time.Duration

	logger  *zap.SugaredLogger
	base    context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// New creates a new WorkerPool.
func New(maxWorkers, queueSize int, jobTimeout time.Duration, logger *zap.SugaredLogger) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	base, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		JobQueue:   make(chan Job, queueSize),
		MaxWorkers: maxWorkers,
		JobTimeout: jobTimeout,
		logger:     logger,
		base:       base,
		cancel:     cancel,
	}
}

// Start creates and starts the worker goroutines.
func (wp *WorkerPool) Start() {
	for i := 1; i <= wp.MaxWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit adds a job to the queue, blocking while it is full. It gives up
// when ctx is done or the pool is stopped.
func (wp *WorkerPool) Submit(ctx context.Context, job Job) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.stopped {
		return ErrStopped
	}
	select {
	case wp.JobQueue <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("could not queue %s: %w", job.Name, ctx.Err())
	case <-wp.base.Done():
		return ErrStopped
	}
}

// Stop cancels running jobs, rejects new ones and waits for workers to exit.
func (wp *WorkerPool) Stop() {
	wp.cancel()
	wp.mu.Lock()
	if !wp.stopped {
		wp.stopped = true
		close(wp.JobQueue)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}

// Pending returns the number of queued jobs.
func (wp *WorkerPool) Pending() int {
	return len(wp.JobQueue)
}

// worker is a goroutine that continuously processes jobs from the JobQueue.
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	for job := range wp.JobQueue {
		wp.run(id, job)
	}
}

func (wp *WorkerPool) run(id int, job Job) {
	ctx := wp.base
	if wp.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wp.JobTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Errorw("job panicked", "worker", id, "job", job.Name, "panic", r)
		}
	}()
	start := time.Now()
	job.Run(ctx)
	wp.logger.Debugw("job finished", "worker", id, "job", job.Name, "took", time.Since(start))
}
