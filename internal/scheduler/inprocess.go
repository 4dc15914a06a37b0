package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"printsite_backend/internal/notification"
	"printsite_backend/platform/logger"
	"printsite_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrQueueFull is returned when the in-process buffer has no room.
	ErrQueueFull = errors.New("notification queue full")
	// ErrQueueStopped is returned once Run has begun its final drain.
	ErrQueueStopped = errors.New("notification queue stopped")
)

const drainTimeout = 10 * time.Second

// InProcessQueue runs notification jobs on goroutines inside the API
// process. It is used when no Redis is configured. Jobs still buffered when
// the process stops are attempted once more within drainTimeout; after
// that, Enqueue refuses new jobs with ErrQueueStopped.
type InProcessQueue struct {
	jobs       chan notification.Job
	dispatcher Dispatcher
	workers    int
	log        *logger.Logger

	mu      sync.RWMutex
	stopped bool
}

// Compile-time check that InProcessQueue implements Enqueuer.
var _ Enqueuer = (*InProcessQueue)(nil)

// NewInProcessQueue creates a queue with the given buffer size and worker count.
func NewInProcessQueue(size, workers int, dispatcher Dispatcher, log *logger.Logger) *InProcessQueue {
	if size < 1 {
		size = 256
	}
	if workers < 1 {
		workers = 2
	}
	return &InProcessQueue{
		jobs:       make(chan notification.Job, size),
		dispatcher: dispatcher,
		workers:    workers,
		log:        log,
	}
}

// Enqueue buffers job without blocking.
func (q *InProcessQueue) Enqueue(ctx context.Context, job notification.Job) error {
	err := q.enqueue(ctx, job)
	metrics.Enqueues.WithLabelValues(string(job.Kind), metrics.Result(err == nil)).Inc()
	return err
}

func (q *InProcessQueue) enqueue(ctx context.Context, job notification.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		return ErrQueueStopped
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run starts the workers and blocks until ctx is cancelled.
func (q *InProcessQueue) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < q.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case job := <-q.jobs:
					q.deliver(gctx, job)
				}
			}
		})
	}
	err := g.Wait()

	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()

	q.drain()
	return err
}

func (q *InProcessQueue) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	drained := 0
	for {
		select {
		case job := <-q.jobs:
			q.deliver(ctx, job)
			drained++
		default:
			if drained > 0 {
				q.log.Info("drained notification queue", "jobs", drained)
			}
			return
		}
	}
}

// deliver ignores the dispatch error: the dispatcher has already logged it
// and jobs are never retried.
func (q *InProcessQueue) deliver(ctx context.Context, job notification.Job) {
	_ = q.dispatcher.Dispatch(ctx, job)
}
