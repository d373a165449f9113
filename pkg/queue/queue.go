package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueEmails is the Redis list key for moderation notification emails.
	QueueEmails = "worker:emails"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeEmail JobType = "email"
)

// EmailPayload is the payload for moderation notification email jobs.
type EmailPayload struct {
	EmailType      string `json:"email_type"` // "submission_approved" or "submission_rejected"
	SubmissionID   string `json:"submission_id"`
	ToolSlug       string `json:"tool_slug,omitempty"`
	RecipientEmail string `json:"recipient_email"`
	Subject        string `json:"subject"`
	BodyText       string `json:"body_text"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client *redis.Client
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client *redis.Client, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueueEmail enqueues a notification email job.
func (q *Queue) EnqueueEmail(ctx context.Context, payload EmailPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeEmail,
		Payload:   body,
		Attempt:   0,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, QueueEmails, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued email job", zap.String("job_id", job.ID), zap.String("email_type", payload.EmailType))
	return nil
}

// DequeueEmail blocks up to timeout waiting for an email job. Returns nil job on timeout.
func (q *Queue) DequeueEmail(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.client.BLPop(ctx, timeout, QueueEmails).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blpop: %w", err)
	}
	// BLPop returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected blpop result length %d", len(res))
	}
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	return &job, nil
}

// Retry re-enqueues a failed job, or moves it to the DLQ after MaxRetries.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if job.Attempt >= MaxRetries {
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt))
		return q.client.RPush(ctx, QueueDLQ, raw).Err()
	}
	return q.client.RPush(ctx, QueueEmails, raw).Err()
}
