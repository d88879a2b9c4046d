package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"toolcrib-backend/internal/domain"
)

type inventoryRepository struct {
	access
}

func (r *inventoryRepository) Get(ctx context.Context, toolCribID, toolID int64) (*domain.Inventory, error) {
	var out *domain.Inventory
	err := r.read(func(st *state) error {
		inv, ok := st.inventory[inventoryKey{toolCribID, toolID}]
		if !ok {
			return domain.NewNotFoundError("tool %d is not stocked in tool crib %d", toolID, toolCribID)
		}
		out = &inv
		return nil
	})
	return out, err
}

// GetForUpdate needs no row lock here: transactions already hold the store lock.
func (r *inventoryRepository) GetForUpdate(ctx context.Context, toolCribID, toolID int64) (*domain.Inventory, error) {
	return r.Get(ctx, toolCribID, toolID)
}

func (r *inventoryRepository) UpdateQuantities(ctx context.Context, inv *domain.Inventory) error {
	return r.write(func(st *state) error {
		key := inventoryKey{inv.ToolCribID, inv.ToolID}
		cur, ok := st.inventory[key]
		if !ok || cur.ID != inv.ID {
			return domain.NewNotFoundError("inventory row %d not found", inv.ID)
		}
		cur.AvailableQuantity = inv.AvailableQuantity
		cur.BrokenQuantity = inv.BrokenQuantity
		cur.LastUpdated = time.Now()
		inv.LastUpdated = cur.LastUpdated
		st.inventory[key] = cur
		return nil
	})
}

func (r *inventoryRepository) Restock(ctx context.Context, toolCribID, toolID, quantity int64) (*domain.Inventory, error) {
	var out *domain.Inventory
	err := r.write(func(st *state) error {
		key := inventoryKey{toolCribID, toolID}
		inv, ok := st.inventory[key]
		if !ok {
			inv = domain.Inventory{ID: st.nextID(), ToolCribID: toolCribID, ToolID: toolID}
		}
		inv.TotalQuantity += quantity
		inv.AvailableQuantity += quantity
		inv.LastUpdated = time.Now()
		st.inventory[key] = inv
		out = &inv
		return nil
	})
	return out, err
}

func (r *inventoryRepository) CreateLog(ctx context.Context, l *domain.InventoryLog) error {
	return r.write(func(st *state) error {
		l.ID = st.nextID()
		st.inventoryLogs = append(st.inventoryLogs, *l)
		return nil
	})
}

func matchesInventoryFilter(v domain.InventoryView, f domain.InventoryFilter) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(v.Tool.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.IsPerishable != nil && v.Tool.IsPerishable != *f.IsPerishable {
		return false
	}
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if c == v.Tool.Category {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil && v.Tool.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && v.Tool.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.LowStockOnly && !v.IsLowStock() {
		return false
	}
	return true
}

func (r *inventoryRepository) list(match func(domain.InventoryView) bool) ([]domain.InventoryView, error) {
	var views []domain.InventoryView
	err := r.read(func(st *state) error {
		for _, inv := range st.inventory {
			v := domain.InventoryView{Inventory: inv, Tool: st.tools[inv.ToolID]}
			if match(v) {
				views = append(views, v)
			}
		}
		return nil
	})
	sort.Slice(views, func(i, j int) bool {
		if views[i].Tool.Name != views[j].Tool.Name {
			return views[i].Tool.Name < views[j].Tool.Name
		}
		return views[i].ID < views[j].ID
	})
	return views, err
}

func (r *inventoryRepository) List(ctx context.Context, toolCribID int64, filter domain.InventoryFilter) ([]domain.InventoryView, error) {
	return r.list(func(v domain.InventoryView) bool {
		return v.ToolCribID == toolCribID && matchesInventoryFilter(v, filter)
	})
}

func (r *inventoryRepository) ListBelowThreshold(ctx context.Context) ([]domain.InventoryView, error) {
	return r.list(func(v domain.InventoryView) bool { return v.IsLowStock() })
}

func (r *inventoryRepository) ListTopBroken(ctx context.Context, limit int) ([]domain.ToolStat, error) {
	var stats []domain.ToolStat
	err := r.read(func(st *state) error {
		sums := make(map[int64]int64)
		for _, inv := range st.inventory {
			if inv.BrokenQuantity > 0 {
				sums[inv.ToolID] += inv.BrokenQuantity
			}
		}
		stats = rankByQuantity(st, sums, limit)
		return nil
	})
	return stats, err
}
