package scheduler

import (
	"encoding/json"
	"fmt"

	"printsite_backend/internal/notification"

	"github.com/hibiken/asynq"
)

const TaskNotificationDeliver = "notification:deliver"

func NewNotificationTask(job notification.Job) (*asynq.Task, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNotificationDeliver, data), nil
}

func ParseNotificationPayload(task *asynq.Task) (notification.Job, error) {
	var job notification.Job
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return notification.Job{}, fmt.Errorf("decode notification payload: %w", err)
	}
	if err := job.Validate(); err != nil {
		return notification.Job{}, err
	}
	return job, nil
}
