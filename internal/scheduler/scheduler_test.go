package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"printsite_backend/internal/notification"
	"printsite_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string      { return c.redisURL }
func (testSchedulerConfig) GetRedisTLSInsecure() bool  { return false }
func (testSchedulerConfig) GetAsynqQueueName() string  { return "notifications" }
func (testSchedulerConfig) GetAsynqConcurrency() int   { return 2 }
func (testSchedulerConfig) GetInProcessQueueSize() int { return 4 }

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []notification.Job
	err  error
	done chan struct{}
}

func newRecordingDispatcher(expected int) *recordingDispatcher {
	return &recordingDispatcher{done: make(chan struct{}, expected)}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, job notification.Job) error {
	d.mu.Lock()
	d.jobs = append(d.jobs, job)
	d.mu.Unlock()
	d.done <- struct{}{}
	return d.err
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.jobs)
}

func TestNotificationTaskRoundTrip(t *testing.T) {
	job := notification.NewJob(notification.KindQuoteInternal, uuid.New())

	task, err := NewNotificationTask(job)
	if err != nil {
		t.Fatalf("NewNotificationTask: %v", err)
	}
	if task.Type() != TaskNotificationDeliver {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	got, err := ParseNotificationPayload(task)
	if err != nil {
		t.Fatalf("ParseNotificationPayload: %v", err)
	}
	if got != job {
		t.Fatalf("expected %+v, got %+v", job, got)
	}
}

func TestNewNotificationTaskRejectsInvalidJob(t *testing.T) {
	if _, err := NewNotificationTask(notification.Job{Kind: "quote.unknown", RecordID: uuid.New()}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestClientEnqueueWritesPendingTask(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	info, err := client.enqueue(context.Background(), notification.NewJob(notification.KindContactInternal, uuid.New()))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if info.Queue != "notifications" {
		t.Fatalf("expected notifications queue, got %q", info.Queue)
	}
	if info.MaxRetry != 0 {
		t.Fatalf("expected no retries, got %d", info.MaxRetry)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	pending, err := rdb.LLen(context.Background(), "asynq:{notifications}:pending").Result()
	if err != nil {
		t.Fatalf("LLen: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected 1 pending task, got %d", pending)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestWorkerSkipsRetryOnFailure(t *testing.T) {
	dispatcher := newRecordingDispatcher(1)
	dispatcher.err = errors.New("smtp down")
	w := newWorker(dispatcher, logger.New("test"))

	task, err := NewNotificationTask(notification.NewJob(notification.KindQuoteCustomerConfirm, uuid.New()))
	if err != nil {
		t.Fatalf("NewNotificationTask: %v", err)
	}

	err = w.handleNotification(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if dispatcher.count() != 1 {
		t.Fatalf("expected one dispatch, got %d", dispatcher.count())
	}
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	dispatcher := newRecordingDispatcher(1)
	w := newWorker(dispatcher, logger.New("test"))

	err := w.handleNotification(context.Background(), asynq.NewTask(TaskNotificationDeliver, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if dispatcher.count() != 0 {
		t.Fatal("malformed payload must not be dispatched")
	}
}

func TestInProcessQueueDeliversJobs(t *testing.T) {
	dispatcher := newRecordingDispatcher(2)
	q := NewInProcessQueue(4, 1, dispatcher, logger.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(ctx) }()

	for _, kind := range []notification.Kind{notification.KindQuoteInternal, notification.KindQuoteCustomerConfirm} {
		if err := q.Enqueue(context.Background(), notification.NewJob(kind, uuid.New())); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case <-dispatcher.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for dispatch %d", i+1)
		}
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestInProcessQueueFull(t *testing.T) {
	q := NewInProcessQueue(1, 1, newRecordingDispatcher(2), logger.New("test"))
	job := notification.NewJob(notification.KindContactInternal, uuid.New())

	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if err := q.Enqueue(context.Background(), job); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestInProcessQueueDrainsOnShutdown(t *testing.T) {
	dispatcher := newRecordingDispatcher(3)
	q := NewInProcessQueue(4, 1, dispatcher, logger.New("test"))
	for i := 0; i < 3; i++ {
		if err := q.Enqueue(context.Background(), notification.NewJob(notification.KindQuoteInternal, uuid.New())); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dispatcher.count() != 3 {
		t.Fatalf("expected 3 drained jobs, got %d", dispatcher.count())
	}
}

func TestInProcessQueueRejectsJobsAfterStop(t *testing.T) {
	dispatcher := newRecordingDispatcher(1)
	q := NewInProcessQueue(4, 1, dispatcher, logger.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- q.Run(ctx) }()
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}

	err := q.Enqueue(context.Background(), notification.NewJob(notification.KindQuoteInternal, uuid.New()))
	if !errors.Is(err, ErrQueueStopped) {
		t.Fatalf("expected ErrQueueStopped, got %v", err)
	}
	if dispatcher.count() != 0 {
		t.Fatalf("expected no dispatch after stop, got %d", dispatcher.count())
	}
}
