package repository

import (
	"context"
	"time"

	"toolcrib-backend/internal/domain"
)

type ToolRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Tool, error)
	ListTopPriced(ctx context.Context, limit int) ([]domain.ToolStat, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// PremisesRepository answers questions about the workplace hierarchy and who
// manages which part of it.
type PremisesRepository interface {
	ResolvePlacement(ctx context.Context, workerID int64) (*domain.Placement, error)
	GetToolCrib(ctx context.Context, id int64) (*domain.ToolCrib, error)
	GetToolCribByWorkplace(ctx context.Context, workplaceID int64) (*domain.ToolCrib, error)
	ListManagedToolCribs(ctx context.Context, managerID int64) ([]domain.ToolCrib, error)
	ListManagedWorkplaces(ctx context.Context, managerID int64) ([]int64, error)
	IsFacilityManager(ctx context.Context, userID, workplaceID int64) (bool, error)
	ListToolCribManagers(ctx context.Context, toolCribID int64) ([]domain.User, error)
}

type InventoryRepository interface {
	Get(ctx context.Context, toolCribID, toolID int64) (*domain.Inventory, error)
	// GetForUpdate reads the row and holds a write lock on it until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, toolCribID, toolID int64) (*domain.Inventory, error)
	UpdateQuantities(ctx context.Context, inv *domain.Inventory) error
	Restock(ctx context.Context, toolCribID, toolID, quantity int64) (*domain.Inventory, error)
	CreateLog(ctx context.Context, log *domain.InventoryLog) error
	List(ctx context.Context, toolCribID int64, filter domain.InventoryFilter) ([]domain.InventoryView, error)
	ListBelowThreshold(ctx context.Context) ([]domain.InventoryView, error)
	ListTopBroken(ctx context.Context, limit int) ([]domain.ToolStat, error)
}

type ToolRequestRepository interface {
	// Create persists the header and all of its items, filling in their ids.
	Create(ctx context.Context, req *domain.ToolRequest) error
	GetRequest(ctx context.Context, id int64) (*domain.ToolRequest, error)
	GetItem(ctx context.Context, id int64) (*domain.ToolRequestItem, error)
	GetItemForUpdate(ctx context.Context, id int64) (*domain.ToolRequestItem, error)
	UpdateItem(ctx context.Context, item *domain.ToolRequestItem) error
	ListItems(ctx context.Context, scope domain.ItemScope, filter domain.ItemFilter) ([]domain.RequestItemView, int32, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]domain.RequestItemView, error)
	ListTopDemanded(ctx context.Context, limit int) ([]domain.ToolStat, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int32, error)
}

// TxRepositories are bound to a single transaction.
type TxRepositories struct {
	Tools         ToolRepository
	Premises      PremisesRepository
	Inventory     InventoryRepository
	Requests      ToolRequestRepository
	Notifications NotificationRepository
}

// Transactor runs fn inside one transaction. fn's error rolls it back; a nil
// return commits. fn may be invoked more than once when the backend retries
// a transaction that lost a lock race, so it must not leak state between
// attempts.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// Store groups every repository plus the transactor for wiring.
type Store struct {
	Transactor
	Tools         ToolRepository
	Users         UserRepository
	Premises      PremisesRepository
	Inventory     InventoryRepository
	Requests      ToolRequestRepository
	Notifications NotificationRepository
}
