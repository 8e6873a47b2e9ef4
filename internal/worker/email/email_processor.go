package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"

	"timesheets.service/internal/core"
	"timesheets.service/internal/core/model"
	"timesheets.service/internal/ports/messaging"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/internal/worker"
)

type EmailProcessor struct {
	emailService core.EmailService
	repo         repository.TimesheetRepository
}

// NewProcessor sets up a new processor for handling email-related jobs.
// It needs an email service to send emails and a repository to update the job status.
func NewProcessor(emailService core.EmailService, repo repository.TimesheetRepository) *EmailProcessor {
	return &EmailProcessor{
		emailService: emailService,
		repo:         repo,
	}
}

// Process is the main entry point for handling a message from the email queue.
// It tries to send an email and will tell the worker to retry if something goes wrong.
func (p *EmailProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("empty email message")
	}
	var event messaging.EmailEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal email event")
		return false, 0, err // Do not retry on malformed message
	}

	record, err := p.repo.GetRecord(ctx, event.RecordID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, 0, fmt.Errorf("record %d does not exist: %w", event.RecordID, err)
	}
	if err != nil {
		// If we can't get the record, retry after a short delay.
		return true, 10, fmt.Errorf("failed to get record from db for email processing: %w", err)
	}

	switch record.EmailStatus {
	case model.StatusJobCompleted, model.StatusJobFailed:
		log.Ctx(ctx).Info().Int64("record_id", event.RecordID).Str("status", string(record.EmailStatus)).Msg("Email job already settled. Skipping.")
		return false, 0, nil
	}

	err = p.emailService.SendShiftSummary(ctx, event.Email, event.EmployeeName, event.HoursWorked)
	if err != nil {
		newCount := record.EmailRetryCount + 1
		if newCount >= worker.MaxRetries {
			if uerr := p.repo.UpdateEmailStatus(ctx, event.RecordID, model.StatusJobFailed, newCount); uerr != nil {
				log.Ctx(ctx).Error().Err(uerr).Msg("Failed to mark email job as failed")
			}
			return false, 0, fmt.Errorf("giving up after %d attempts: %w", newCount, err)
		}
		if uerr := p.repo.UpdateEmailStatus(ctx, event.RecordID, model.StatusJobPending, newCount); uerr != nil {
			log.Ctx(ctx).Error().Err(uerr).Msg("Failed to record email retry")
		}
		return true, worker.CalculateBackoff(newCount), err
	}

	err = p.repo.UpdateEmailStatus(ctx, event.RecordID, model.StatusJobCompleted, record.EmailRetryCount)
	return false, 0, err
}
