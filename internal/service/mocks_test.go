package service_test

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/service"
)

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendDecisionNotification(ctx context.Context, email, name, toolName string, quantity int64, approved bool, dueDate *time.Time) error {
	args := m.Called(ctx, email, name, toolName, quantity, approved, dueDate)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnConfirmation(ctx context.Context, email, name, toolName string, returned int64) error {
	args := m.Called(ctx, email, name, toolName, returned)
	return args.Error(0)
}
func (m *MockEmailService) SendFineStatement(ctx context.Context, email, name, toolName string, s service.Settlement) error {
	args := m.Called(ctx, email, name, toolName, s)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, name, toolName string, quantity int64, dueDate time.Time) error {
	args := m.Called(ctx, email, name, toolName, quantity, dueDate)
	return args.Error(0)
}
func (m *MockEmailService) SendLowStockAlert(ctx context.Context, email, name, toolName, cribName string, available, threshold int64) error {
	args := m.Called(ctx, email, name, toolName, cribName, available, threshold)
	return args.Error(0)
}

// newQuietEmailService accepts every e-mail so tests can assert on the calls
// they care about.
func newQuietEmailService() *MockEmailService {
	m := new(MockEmailService)
	m.On("SendDecisionNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendReturnConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendFineStatement", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendOverdueReminder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("SendLowStockAlert", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}

// failingNotifications rejects every write.
type failingNotifications struct{}

func (failingNotifications) Create(ctx context.Context, note *domain.Notification) error {
	return errors.New("notifications table unavailable")
}

func (failingNotifications) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error) {
	return nil, 0, nil
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }
