package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"timesheets.service/internal/core/model"
	"timesheets.service/internal/ports/messaging"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/internal/worker"
)

// Processor handles jobs from the payroll queue, which involves calling the payroll API.
// It uses a circuit breaker to avoid hammering the payroll system if it's having issues.
type Processor struct {
	repo   repository.TimesheetRepository
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewProcessor creates a new processor for the payroll queue. It sets up a
// circuit breaker to protect the payroll API from being overwhelmed.
func NewProcessor(r repository.TimesheetRepository, client Client) *Processor {
	settings := gobreaker.Settings{
		Name:        "Payroll-API",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Trip if failure rate is bigger then 50% after at least 10 requests
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	}

	return &Processor{
		repo:   r,
		client: client,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

// Process is the core logic for handling a message from the payroll queue.
// It calls the payroll API through a circuit breaker and handles retries with exponential backoff.
func (p *Processor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	if msg.Body == nil {
		return false, 0, errors.New("empty payroll message")
	}
	var event messaging.ClockOutEvent
	if err := json.Unmarshal([]byte(*msg.Body), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal payroll event")
		return false, 0, err // Do not retry on malformed message
	}

	log.Ctx(ctx).Info().Str("employee", event.EmployeeName).Float64("hours_worked", event.HoursWorked).Msg("Processing clock-out")

	record, err := p.repo.GetRecord(ctx, event.RecordID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, 0, fmt.Errorf("record %d does not exist: %w", event.RecordID, err)
	}
	if err != nil {
		return true, 10, fmt.Errorf("failed to get record from db: %w", err)
	}

	switch record.PayrollStatus {
	case model.StatusJobCompleted, model.StatusJobFailed:
		return false, 0, nil
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.client.RecordShift(ctx, event)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			log.Ctx(ctx).Warn().Msg("Circuit Breaker is OPEN; skipping Payroll API call")
		}
		newCount := record.PayrollRetryCount + 1
		if newCount >= worker.MaxRetries {
			if uerr := p.repo.UpdatePayrollStatus(ctx, event.RecordID, model.StatusJobFailed, newCount); uerr != nil {
				log.Ctx(ctx).Error().Err(uerr).Msg("Failed to mark payroll job as failed")
			}
			return false, 0, fmt.Errorf("giving up after %d attempts: %w", newCount, err)
		}
		if uerr := p.repo.UpdatePayrollStatus(ctx, event.RecordID, model.StatusJobPending, newCount); uerr != nil {
			log.Ctx(ctx).Error().Err(uerr).Msg("Failed to record payroll retry")
		}

		delay := worker.CalculateBackoff(newCount)
		return true, delay, err
	}

	err = p.repo.UpdatePayrollStatus(ctx, event.RecordID, model.StatusJobCompleted, record.PayrollRetryCount)
	return false, 0, err
}
