package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"admatch/internal/tasks"
)

// Ensure AsynqJobClient satisfies JobClient.
var _ JobClient = (*AsynqJobClient)(nil)

// AsynqJobClient enqueues background tasks on Redis through asynq.
type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(opt asynq.RedisClientOpt) *AsynqJobClient {
	return &AsynqJobClient{client: asynq.NewClient(opt)}
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues a task and logs the outcome.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, errors.New("asynq job client is not initialized")
	}
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.WithField("task_type", task.Type()).WithError(err).Error("enqueue failed")
		return nil, err
	}
	log.WithFields(log.Fields{
		"task_type": task.Type(),
		"task_id":   info.ID,
		"queue":     info.Queue,
	}).Debug("task enqueued")
	return info, nil
}

// EnqueueCoverageAudit enqueues a coverage audit under auditID. The task id
// is the audit id, so enqueueing the same audit twice is rejected by asynq.
func (jc *AsynqJobClient) EnqueueCoverageAudit(ctx context.Context, auditID string, categories []string) (*asynq.TaskInfo, error) {
	task, err := tasks.NewCoverageAuditTask(tasks.CoverageAuditPayload{AuditID: auditID, Categories: categories})
	if err != nil {
		return nil, err
	}
	info, err := jc.Enqueue(ctx, task,
		asynq.Queue(tasks.QueueAudits),
		asynq.TaskID(auditID),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil, fmt.Errorf("coverage audit %s: %w", auditID, ErrDuplicate)
		}
		return nil, fmt.Errorf("enqueue coverage audit %s: %w", auditID, err)
	}
	return info, nil
}
