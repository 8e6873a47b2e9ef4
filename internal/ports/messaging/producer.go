package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer publishes domain events as JSON through a MessageSender.
type Producer struct {
	sender          MessageSender
	payrollQueueURL string
	emailQueueURL   string
}

func NewProducer(sender MessageSender, payrollQueueURL, emailQueueURL string) *Producer {
	return &Producer{
		sender:          sender,
		payrollQueueURL: payrollQueueURL,
		emailQueueURL:   emailQueueURL,
	}
}

func NewSQSProducer(client SQSClient, payrollQueueURL, emailQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, payrollQueueURL, emailQueueURL)
}

func (p *Producer) PublishPayroll(ctx context.Context, event ClockOutEvent) error {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int64("app.record_id", event.RecordID),
		attribute.String("app.employee", event.EmployeeName),
	)
	return p.publish(ctx, p.payrollQueueURL, EventTypeClockOut, event)
}

func (p *Producer) PublishEmail(ctx context.Context, event EmailEvent) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.record_id", event.RecordID))
	return p.publish(ctx, p.emailQueueURL, EventTypeEmail, event)
}

func (p *Producer) publish(ctx context.Context, destination, eventType string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}
	if err := p.sender.SendMessage(ctx, destination, eventType, b); err != nil {
		return fmt.Errorf("failed to send %s message: %w", eventType, err)
	}
	return nil
}
