package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Inventory struct {
	ID                int64     `json:"id"`
	ToolCribID        int64     `json:"tool_crib_id"`
	ToolID            int64     `json:"tool_id"`
	TotalQuantity     int64     `json:"total_quantity"`
	AvailableQuantity int64     `json:"available_quantity"`
	BrokenQuantity    int64     `json:"broken_quantity"`
	MinimumThreshold  int64     `json:"minimum_threshold"`
	LastUpdated       time.Time `json:"last_updated"`
}

func (i *Inventory) IsLowStock() bool {
	return i.AvailableQuantity < i.MinimumThreshold
}

// InventoryLog records a restock of a tool into a workplace's crib.
type InventoryLog struct {
	ID               int64     `json:"id"`
	ToolID           int64     `json:"tool_id"`
	ToolCribID       int64     `json:"tool_crib_id"`
	WorkplaceID      int64     `json:"workplace_id"`
	AssignedBy       int64     `json:"assigned_by"`
	QuantityAssigned int64     `json:"quantity_assigned"`
	AssignedAt       time.Time `json:"assigned_at"`
}

// InventoryView is an inventory row joined with its catalog entry.
type InventoryView struct {
	Inventory
	Tool Tool `json:"tool"`
}

type InventoryFilter struct {
	Name         string
	IsPerishable *bool
	Categories   []ToolCategory
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	LowStockOnly bool
}
