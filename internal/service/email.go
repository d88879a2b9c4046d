package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"toolcrib-backend/internal/logger"
)

// mailSender is the part of the SendGrid client the service uses.
type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

// NewEmailService sends through SendGrid. With an empty API key it returns a
// service that only logs what it would have sent.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		logger.Warn("SendGrid API key not configured, e-mails will only be logged")
		return &logEmailService{}
	}
	return &emailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, to, toName, subject, body string) error {
	logger.ExternalServiceCall("sendgrid", "Send", "to", to, "subject", subject)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	response, err := s.client.Send(message)
	if err != nil {
		err = fmt.Errorf("failed to send email via sendgrid: %w", err)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", to)
		return err
	}
	if response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
		logger.ExternalServiceResult("sendgrid", "Send", err, "to", to)
		return err
	}

	logger.ExternalServiceResult("sendgrid", "Send", nil, "to", to, "status", response.StatusCode)
	return nil
}

func (s *emailService) SendDecisionNotification(ctx context.Context, email, name, toolName string, quantity int64, approved bool, dueDate *time.Time) error {
	subject, body := decisionEmail(name, toolName, quantity, approved, dueDate)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendReturnConfirmation(ctx context.Context, email, name, toolName string, returned int64) error {
	subject, body := returnEmail(name, toolName, returned)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendFineStatement(ctx context.Context, email, name, toolName string, st Settlement) error {
	subject, body := fineEmail(name, toolName, st)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendOverdueReminder(ctx context.Context, email, name, toolName string, quantity int64, dueDate time.Time) error {
	subject, body := overdueEmail(name, toolName, quantity, dueDate)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendLowStockAlert(ctx context.Context, email, name, toolName, cribName string, available, threshold int64) error {
	subject, body := lowStockEmail(name, toolName, cribName, available, threshold)
	return s.send(ctx, email, name, subject, body)
}

const signature = "\n\nBest regards,\nThe Tool Crib Team"

func decisionEmail(name, toolName string, quantity int64, approved bool, dueDate *time.Time) (string, string) {
	if !approved {
		return fmt.Sprintf("Tool Request Rejected: %s", toolName),
			fmt.Sprintf("Hello %s,\n\nYour request for %d x %s was rejected.", name, quantity, toolName) + signature
	}
	body := fmt.Sprintf("Hello %s,\n\nYour request for %d x %s was approved. You can pick it up at your tool crib.", name, quantity, toolName)
	if dueDate != nil {
		body += fmt.Sprintf("\n\nPlease return it by %s.", dueDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("Tool Request Approved: %s", toolName), body + signature
}

func returnEmail(name, toolName string, returned int64) (string, string) {
	return fmt.Sprintf("Tool Returned: %s", toolName),
		fmt.Sprintf("Hello %s,\n\nWe recorded the return of %d x %s. No fine is due.", name, returned, toolName) + signature
}

func fineEmail(name, toolName string, st Settlement) (string, string) {
	body := fmt.Sprintf("Hello %s,\n\nWe recorded the return of %d of %d x %s.", name, st.Returned, st.Requested, toolName)
	if st.Broken > 0 {
		body += fmt.Sprintf("\n%d unit(s) were not returned and are counted as broken.", st.Broken)
	}
	if st.DaysLate > 0 {
		body += fmt.Sprintf("\nThe return was %d day(s) after the due date %s.", st.DaysLate, st.DueDate.Format("2006-01-02"))
	}
	body += fmt.Sprintf("\n\nTotal fine: %s", st.Fine.StringFixed(2))
	return fmt.Sprintf("Fine Statement: %s", toolName), body + signature
}

func overdueEmail(name, toolName string, quantity int64, dueDate time.Time) (string, string) {
	return fmt.Sprintf("Overdue Tool: %s", toolName),
		fmt.Sprintf("Hello %s,\n\n%d x %s was due back on %s. Please return it to your tool crib as soon as possible.",
			name, quantity, toolName, dueDate.Format("2006-01-02")) + signature
}

func lowStockEmail(name, toolName, cribName string, available, threshold int64) (string, string) {
	return fmt.Sprintf("Low Stock: %s", toolName),
		fmt.Sprintf("Hello %s,\n\n%s in %s is down to %d available (minimum %d).",
			name, toolName, cribName, available, threshold) + signature
}

type logEmailService struct{}

func (logEmailService) log(ctx context.Context, to, subject string) error {
	logger.InfoContext(ctx, "E-mail not sent, delivery disabled", "to", to, "subject", subject)
	return nil
}

func (l logEmailService) SendDecisionNotification(ctx context.Context, email, name, toolName string, quantity int64, approved bool, dueDate *time.Time) error {
	subject, _ := decisionEmail(name, toolName, quantity, approved, dueDate)
	return l.log(ctx, email, subject)
}

func (l logEmailService) SendReturnConfirmation(ctx context.Context, email, name, toolName string, returned int64) error {
	subject, _ := returnEmail(name, toolName, returned)
	return l.log(ctx, email, subject)
}

func (l logEmailService) SendFineStatement(ctx context.Context, email, name, toolName string, st Settlement) error {
	subject, _ := fineEmail(name, toolName, st)
	return l.log(ctx, email, subject)
}

func (l logEmailService) SendOverdueReminder(ctx context.Context, email, name, toolName string, quantity int64, dueDate time.Time) error {
	subject, _ := overdueEmail(name, toolName, quantity, dueDate)
	return l.log(ctx, email, subject)
}

func (l logEmailService) SendLowStockAlert(ctx context.Context, email, name, toolName, cribName string, available, threshold int64) error {
	subject, _ := lowStockEmail(name, toolName, cribName, available, threshold)
	return l.log(ctx, email, subject)
}
