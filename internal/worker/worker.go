package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toolhunt-ai/backend/config"
	"github.com/toolhunt-ai/backend/internal/emaillogs"
	"github.com/toolhunt-ai/backend/internal/models"
	"github.com/toolhunt-ai/backend/pkg/queue"
)

// EmailProcessor processes moderation notification jobs: send via SMTP when
// configured, record the outcome in email_logs either way.
type EmailProcessor struct {
	logs   *emaillogs.Repository
	queue  *queue.Queue
	email  config.EmailConfig
	logger *zap.Logger
}

// NewEmailProcessor creates a notification email processor.
func NewEmailProcessor(logs *emaillogs.Repository, q *queue.Queue, email config.EmailConfig, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{logs: logs, queue: q, email: email, logger: logger}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	entry := &models.EmailLog{
		EmailType:      payload.EmailType,
		RecipientEmail: payload.RecipientEmail,
		Subject:        payload.Subject,
	}
	if id, err := uuid.Parse(payload.SubmissionID); err == nil {
		entry.SubmissionID = &id
	}

	if p.email.SMTPHost == "" {
		entry.Status = models.EmailStatusSkipped
		if err := p.logs.Record(ctx, entry); err != nil {
			return fmt.Errorf("record email log: %w", err)
		}
		p.logger.Info("smtp not configured, email skipped",
			zap.String("email_type", payload.EmailType), zap.String("recipient", payload.RecipientEmail))
		return nil
	}

	sendErr := p.send(payload)
	now := time.Now()
	if sendErr != nil {
		entry.Status = models.EmailStatusFailed
		entry.ErrorMessage = sendErr.Error()
	} else {
		entry.Status = models.EmailStatusSent
		entry.SentAt = &now
	}
	if err := p.logs.Record(ctx, entry); err != nil {
		return fmt.Errorf("record email log: %w", err)
	}
	if sendErr != nil {
		return fmt.Errorf("send email: %w", sendErr)
	}

	p.logger.Info("notification email sent",
		zap.String("email_type", payload.EmailType), zap.String("recipient", payload.RecipientEmail))
	return nil
}

func (p *EmailProcessor) send(payload queue.EmailPayload) error {
	addr := fmt.Sprintf("%s:%d", p.email.SMTPHost, p.email.SMTPPort)
	from := p.email.FromAddress
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		p.email.FromName, from, payload.RecipientEmail, payload.Subject, payload.BodyText)

	var auth smtp.Auth
	if p.email.SMTPUser != "" {
		auth = smtp.PlainAuth("", p.email.SMTPUser, p.email.SMTPPass, p.email.SMTPHost)
	}
	return smtp.SendMail(addr, auth, from, []string{payload.RecipientEmail}, []byte(msg))
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.DequeueEmail(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
