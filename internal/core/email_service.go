package core

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timesheets.service/pkg/telemetry"
)

const shiftSummarySubject = "Work Shift Summary"

// EmailService sends the summary mail an employee receives after clocking out.
type EmailService interface {
	SendShiftSummary(ctx context.Context, to, employee string, hours float64) error
}

// SESClient is the part of the SES API the email service uses.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESEmailService struct {
	client SESClient
	sender string
}

func NewSESEmailService(client SESClient, sender string) *SESEmailService {
	return &SESEmailService{client: client, sender: sender}
}

func (s *SESEmailService) SendShiftSummary(ctx context.Context, to, employee string, hours float64) error {
	tracer := otel.Tracer("ses-email-service")
	ctx, span := tracer.Start(ctx, "send_email", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	// Enrich span with the employee if the worker tagged the context
	if name := telemetry.EmployeeFromContext(ctx); name != "" {
		span.SetAttributes(attribute.String("app.employee", name))
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(shiftSummarySubject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(ShiftSummaryBody(employee, hours)),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

// ShiftSummaryBody is the plain text of the summary mail.
func ShiftSummaryBody(employee string, hours float64) string {
	return fmt.Sprintf("Hello %s,\n\nYou have successfully clocked out. Total hours worked: %.2f hours.", employee, hours)
}

// LogEmailService logs summaries instead of sending them. Local runs use it
// when no SES endpoint is available.
type LogEmailService struct{}

func (LogEmailService) SendShiftSummary(ctx context.Context, to, employee string, hours float64) error {
	log.Ctx(ctx).Info().Str("to", to).Str("employee", employee).Float64("hours_worked", hours).Msg("Shift summary not sent, no SES configured")
	return nil
}
