package core

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	return &ses.SendEmailOutput{}, f.err
}

func TestSESEmailService_SendShiftSummary(t *testing.T) {
	client := &fakeSES{}
	svc := NewSESEmailService(client, "no-reply@example.com")

	require.NoError(t, svc.SendShiftSummary(context.Background(), "alice@example.com", "alice", 8.5))
	require.NotNil(t, client.input)
	assert.Equal(t, "no-reply@example.com", *client.input.Source)
	assert.Equal(t, []string{"alice@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "Work Shift Summary", *client.input.Message.Subject.Data)
	assert.Contains(t, *client.input.Message.Body.Text.Data, "Hello alice")
	assert.Contains(t, *client.input.Message.Body.Text.Data, "8.50 hours")
}

func TestSESEmailService_Error(t *testing.T) {
	svc := NewSESEmailService(&fakeSES{err: errors.New("throttled")}, "no-reply@example.com")
	assert.ErrorContains(t, svc.SendShiftSummary(context.Background(), "a@example.com", "a", 1), "throttled")
}

func TestLogEmailService(t *testing.T) {
	assert.NoError(t, LogEmailService{}.SendShiftSummary(context.Background(), "a@example.com", "a", 1))
}
