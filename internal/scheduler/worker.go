package scheduler

import (
	"context"
	"fmt"

	"printsite_backend/internal/notification"
	"printsite_backend/platform/config"
	"printsite_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Dispatcher delivers one notification job.
type Dispatcher interface {
	Dispatch(ctx context.Context, job notification.Job) error
}

// Worker consumes notification tasks from Redis.
type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, dispatcher Dispatcher, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := newWorker(dispatcher, log)
	w.server = server
	return w, nil
}

func newWorker(dispatcher Dispatcher, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:        mux,
		dispatcher: dispatcher,
		log:        log,
	}
	mux.HandleFunc(TaskNotificationDeliver, w.handleNotification)
	return w
}

// Run serves tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		w.log.Error("notification worker failed to start", "error", err)
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

// handleNotification never asks asynq to retry. Failures land in the
// archived set where an operator can inspect and resend them.
func (w *Worker) handleNotification(ctx context.Context, task *asynq.Task) error {
	job, err := ParseNotificationPayload(task)
	if err != nil {
		w.log.Error("invalid notification task", "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.dispatcher.Dispatch(ctx, job); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return nil
}
