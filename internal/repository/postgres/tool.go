package postgres

import (
	"context"
	"fmt"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
)

type toolRepository struct {
	db DBTX
}

func NewToolRepository(db DBTX) repository.ToolRepository {
	return &toolRepository{db: db}
}

func (r *toolRepository) GetByID(ctx context.Context, id int64) (*domain.Tool, error) {
	t := &domain.Tool{}
	query := `SELECT id, name, price, is_perishable, return_period_days, fine_amount, category, image_url FROM tools WHERE id = $1`
	logger.DatabaseCall("SELECT", "tools", "toolID", id)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Price, &t.IsPerishable, &t.ReturnPeriodDays, &t.FineAmount, &t.Category, &t.ImageURL)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "toolID", id)
		return nil, notFound(err, "tool %d not found", id)
	}
	if t.ReturnPeriodDays != nil && *t.ReturnPeriodDays < 0 {
		err := fmt.Errorf("tool %d has negative return period %d", id, *t.ReturnPeriodDays)
		logger.DatabaseResult("SELECT", 1, err, "toolID", id)
		return nil, err
	}
	return t, nil
}

func (r *toolRepository) ListTopPriced(ctx context.Context, limit int) ([]domain.ToolStat, error) {
	query := `SELECT id, name, price FROM tools ORDER BY price DESC, id ASC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.ToolStat
	for rows.Next() {
		var s domain.ToolStat
		if err := rows.Scan(&s.ToolID, &s.ToolName, &s.Price); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
