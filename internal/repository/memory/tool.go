package memory

import (
	"context"
	"sort"

	"toolcrib-backend/internal/domain"
)

type toolRepository struct {
	access
}

func (r *toolRepository) GetByID(ctx context.Context, id int64) (*domain.Tool, error) {
	var out *domain.Tool
	err := r.read(func(st *state) error {
		t, ok := st.tools[id]
		if !ok {
			return domain.NewNotFoundError("tool %d not found", id)
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *toolRepository) ListTopPriced(ctx context.Context, limit int) ([]domain.ToolStat, error) {
	var stats []domain.ToolStat
	err := r.read(func(st *state) error {
		for _, t := range st.tools {
			stats = append(stats, domain.ToolStat{ToolID: t.ID, ToolName: t.Name, Price: t.Price})
		}
		return nil
	})
	sort.Slice(stats, func(i, j int) bool {
		if c := stats[i].Price.Cmp(stats[j].Price); c != 0 {
			return c > 0
		}
		return stats[i].ToolID < stats[j].ToolID
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats, err
}

// rankByQuantity orders per-tool sums descending and resolves names and prices.
func rankByQuantity(st *state, sums map[int64]int64, limit int) []domain.ToolStat {
	stats := make([]domain.ToolStat, 0, len(sums))
	for toolID, qty := range sums {
		t := st.tools[toolID]
		stats = append(stats, domain.ToolStat{ToolID: toolID, ToolName: t.Name, Quantity: qty, Price: t.Price})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Quantity != stats[j].Quantity {
			return stats[i].Quantity > stats[j].Quantity
		}
		return stats[i].ToolID < stats[j].ToolID
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}
