package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"printsite_backend/internal/notification"
	"printsite_backend/platform/config"
	"printsite_backend/platform/metrics"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// taskTimeout bounds one delivery attempt on the worker.
const taskTimeout = 2 * time.Minute

// Enqueuer hands notification jobs to a background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job notification.Job) error
}

// Client enqueues notification jobs on Redis through asynq.
type Client struct {
	client *asynq.Client
	queue  string
}

// Compile-time check that Client implements Enqueuer.
var _ Enqueuer = (*Client)(nil)

// NewClient connects an asynq client to the configured Redis.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Enqueue schedules job for immediate delivery. Jobs are never retried: a
// failed delivery is archived for manual resend.
func (c *Client) Enqueue(ctx context.Context, job notification.Job) error {
	_, err := c.enqueue(ctx, job)
	metrics.Enqueues.WithLabelValues(string(job.Kind), metrics.Result(err == nil)).Inc()
	return err
}

func (c *Client) enqueue(ctx context.Context, job notification.Job) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("scheduler client not initialized")
	}

	task, err := NewNotificationTask(job)
	if err != nil {
		return nil, err
	}

	return c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(0),
		asynq.Timeout(taskTimeout),
		asynq.Retention(7*24*time.Hour),
	)
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
