package service

import (
	"context"
	"time"

	"toolcrib-backend/internal/domain"
)

type ToolRequestService interface {
	CreateToolRequest(ctx context.Context, actor domain.Actor, lines []domain.RequestLine) (*domain.ToolRequest, error)
	DecideRequestItem(ctx context.Context, actor domain.Actor, itemID int64, approve bool) (*domain.ToolRequestItem, error)
	ReturnToolItem(ctx context.Context, actor domain.Actor, itemID, returnedQty int64, returnedAt time.Time) (*domain.ToolRequestItem, error)
	ListRequestItems(ctx context.Context, actor domain.Actor, filter domain.ItemFilter) ([]domain.RequestItemView, int32, error)
	ListUnreturnedItems(ctx context.Context, actor domain.Actor, toolCribID int64) ([]domain.RequestItemView, error)
}

type InventoryService interface {
	GetInventorySnapshot(ctx context.Context, actor domain.Actor, toolCribID int64, filter domain.InventoryFilter) ([]domain.InventoryView, error)
	AssignToolToWorkplace(ctx context.Context, actor domain.Actor, workplaceID, toolID, quantity int64) (*domain.Inventory, error)
}

type ReportService interface {
	TopDemandedTools(ctx context.Context) ([]*domain.ToolStat, error)
	TopBrokenTools(ctx context.Context) ([]*domain.ToolStat, error)
	TopPricedTools(ctx context.Context) ([]*domain.ToolStat, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, actor domain.Actor, page, pageSize int32) ([]domain.Notification, int32, error)
}

type EmailService interface {
	SendDecisionNotification(ctx context.Context, email, name, toolName string, quantity int64, approved bool, dueDate *time.Time) error
	SendReturnConfirmation(ctx context.Context, email, name, toolName string, returned int64) error
	SendFineStatement(ctx context.Context, email, name, toolName string, s Settlement) error
	SendOverdueReminder(ctx context.Context, email, name, toolName string, quantity int64, dueDate time.Time) error
	SendLowStockAlert(ctx context.Context, email, name, toolName, cribName string, available, threshold int64) error
}

// Clock is the time source for request, approval and due dates.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return realClock{} }

// LendingPolicy holds the tunables of the lending workflow.
type LendingPolicy struct {
	DefaultReturnDays int
	Location          *time.Location
	ReportTopN        int
}

func (p LendingPolicy) withDefaults() LendingPolicy {
	if p.DefaultReturnDays <= 0 {
		p.DefaultReturnDays = 5
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.ReportTopN <= 0 {
		p.ReportTopN = 3
	}
	return p
}
