package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSender) Send(email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.response, f.err
}

func TestEmailService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		sender := &fakeSender{response: &rest.Response{StatusCode: 202}}
		svc := &emailService{client: sender, fromEmail: "crib@example.com", fromName: "Tool Crib"}

		due := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
		err := svc.SendDecisionNotification(ctx, "ana@example.com", "Ana", "Drill", 2, true, &due)
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)

		msg := sender.sent[0]
		assert.Equal(t, "Tool Request Approved: Drill", msg.Subject)
		assert.Equal(t, "crib@example.com", msg.From.Address)
		require.Len(t, msg.Personalizations, 1)
		assert.Equal(t, "ana@example.com", msg.Personalizations[0].To[0].Address)
		require.NotEmpty(t, msg.Content)
		assert.Contains(t, msg.Content[0].Value, "2026-03-07")
	})

	t.Run("Error Status", func(t *testing.T) {
		sender := &fakeSender{response: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
		svc := &emailService{client: sender}

		err := svc.SendReturnConfirmation(ctx, "ana@example.com", "Ana", "Drill", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("Transport Error", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("connection reset")}
		svc := &emailService{client: sender}

		err := svc.SendOverdueReminder(ctx, "ana@example.com", "Ana", "Drill", 1, time.Now())
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestFineEmail(t *testing.T) {
	subject, body := fineEmail("Ana", "Drill", Settlement{
		Requested: 4,
		Returned:  2,
		Broken:    2,
		DaysLate:  3,
		DueDate:   time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		Fine:      decimal.NewFromInt(50),
	})
	assert.Equal(t, "Fine Statement: Drill", subject)
	assert.Contains(t, body, "2 unit(s) were not returned")
	assert.Contains(t, body, "3 day(s)")
	assert.Contains(t, body, "Total fine: 50.00")
}

func TestNewEmailService_WithoutKeyOnlyLogs(t *testing.T) {
	svc := NewEmailService("", "crib@example.com", "Tool Crib")
	_, ok := svc.(*logEmailService)
	require.True(t, ok)
	assert.NoError(t, svc.SendLowStockAlert(context.Background(), "cara@example.com", "Cara", "Drill", "Assembly Crib", 1, 2))
}
