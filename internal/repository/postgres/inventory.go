package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
)

const dialectPostgres = "postgres"

var errBuildingQuery = errors.New("building query failed")

type inventoryRepository struct {
	db DBTX
}

func NewInventoryRepository(db DBTX) repository.InventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `id, tool_crib_id, tool_id, total_quantity, available_quantity, broken_quantity, minimum_threshold, last_updated`

func (r *inventoryRepository) Get(ctx context.Context, toolCribID, toolID int64) (*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM tool_inventory WHERE tool_crib_id = $1 AND tool_id = $2`
	return r.getOne(ctx, query, toolCribID, toolID)
}

func (r *inventoryRepository) GetForUpdate(ctx context.Context, toolCribID, toolID int64) (*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM tool_inventory WHERE tool_crib_id = $1 AND tool_id = $2 FOR UPDATE`
	return r.getOne(ctx, query, toolCribID, toolID)
}

func (r *inventoryRepository) getOne(ctx context.Context, query string, toolCribID, toolID int64) (*domain.Inventory, error) {
	logger.DatabaseCall("SELECT", "tool_inventory", "toolCribID", toolCribID, "toolID", toolID)
	inv := &domain.Inventory{}
	err := r.db.QueryRowContext(ctx, query, toolCribID, toolID).Scan(
		&inv.ID, &inv.ToolCribID, &inv.ToolID, &inv.TotalQuantity, &inv.AvailableQuantity,
		&inv.BrokenQuantity, &inv.MinimumThreshold, &inv.LastUpdated,
	)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "toolCribID", toolCribID, "toolID", toolID)
		return nil, notFound(err, "tool %d is not stocked in tool crib %d", toolID, toolCribID)
	}
	return inv, nil
}

func (r *inventoryRepository) UpdateQuantities(ctx context.Context, inv *domain.Inventory) error {
	query := `UPDATE tool_inventory SET available_quantity = $1, broken_quantity = $2, last_updated = $3 WHERE id = $4`
	inv.LastUpdated = time.Now()
	res, err := r.db.ExecContext(ctx, query, inv.AvailableQuantity, inv.BrokenQuantity, inv.LastUpdated, inv.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "inventoryID", inv.ID)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil, "inventoryID", inv.ID)
	if n == 0 {
		return domain.NewNotFoundError("inventory row %d not found", inv.ID)
	}
	return nil
}

func (r *inventoryRepository) Restock(ctx context.Context, toolCribID, toolID, quantity int64) (*domain.Inventory, error) {
	query := `INSERT INTO tool_inventory (tool_crib_id, tool_id, total_quantity, available_quantity, broken_quantity, minimum_threshold, last_updated)
	          VALUES ($1, $2, $3, $3, 0, 0, NOW())
	          ON CONFLICT (tool_crib_id, tool_id) DO UPDATE
	          SET total_quantity = tool_inventory.total_quantity + EXCLUDED.total_quantity,
	              available_quantity = tool_inventory.available_quantity + EXCLUDED.available_quantity,
	              last_updated = NOW()
	          RETURNING ` + inventoryColumns
	logger.DatabaseCall("UPSERT", "tool_inventory", "toolCribID", toolCribID, "toolID", toolID, "quantity", quantity)
	inv := &domain.Inventory{}
	err := r.db.QueryRowContext(ctx, query, toolCribID, toolID, quantity).Scan(
		&inv.ID, &inv.ToolCribID, &inv.ToolID, &inv.TotalQuantity, &inv.AvailableQuantity,
		&inv.BrokenQuantity, &inv.MinimumThreshold, &inv.LastUpdated,
	)
	logger.DatabaseResult("UPSERT", 1, err, "toolCribID", toolCribID, "toolID", toolID)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *inventoryRepository) CreateLog(ctx context.Context, l *domain.InventoryLog) error {
	query := `INSERT INTO tool_inventory_logs (tool_id, tool_crib_id, workplace_id, assigned_by, quantity_assigned, assigned_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, l.ToolID, l.ToolCribID, l.WorkplaceID, l.AssignedBy, l.QuantityAssigned, l.AssignedAt).Scan(&l.ID)
}

func inventoryViewQuery() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T("tool_inventory").As("ti")).
		Join(goqu.T("tools").As("t"), goqu.On(goqu.I("t.id").Eq(goqu.I("ti.tool_id")))).
		Select(
			goqu.I("ti.id"), goqu.I("ti.tool_crib_id"), goqu.I("ti.tool_id"),
			goqu.I("ti.total_quantity"), goqu.I("ti.available_quantity"), goqu.I("ti.broken_quantity"),
			goqu.I("ti.minimum_threshold"), goqu.I("ti.last_updated"),
			goqu.I("t.id"), goqu.I("t.name"), goqu.I("t.price"), goqu.I("t.is_perishable"),
			goqu.I("t.return_period_days"), goqu.I("t.fine_amount"), goqu.I("t.category"), goqu.I("t.image_url"),
		).
		Order(goqu.I("t.name").Asc(), goqu.I("ti.id").Asc()).
		Prepared(true)
}

func inventoryFilterExpressions(f domain.InventoryFilter) []goqu.Expression {
	exprs := make([]goqu.Expression, 0)
	if f.Name != "" {
		exprs = append(exprs, goqu.I("t.name").ILike("%"+f.Name+"%"))
	}
	if f.IsPerishable != nil {
		exprs = append(exprs, goqu.I("t.is_perishable").Eq(*f.IsPerishable))
	}
	if len(f.Categories) > 0 {
		cats := make([]string, 0, len(f.Categories))
		for _, c := range f.Categories {
			cats = append(cats, string(c))
		}
		exprs = append(exprs, goqu.I("t.category").In(cats))
	}
	if f.MinPrice != nil {
		exprs = append(exprs, goqu.I("t.price").Gte(f.MinPrice.String()))
	}
	if f.MaxPrice != nil {
		exprs = append(exprs, goqu.I("t.price").Lte(f.MaxPrice.String()))
	}
	if f.LowStockOnly {
		exprs = append(exprs, goqu.I("ti.available_quantity").Lt(goqu.I("ti.minimum_threshold")))
	}
	return exprs
}

func (r *inventoryRepository) List(ctx context.Context, toolCribID int64, filter domain.InventoryFilter) ([]domain.InventoryView, error) {
	exprs := append([]goqu.Expression{goqu.I("ti.tool_crib_id").Eq(toolCribID)}, inventoryFilterExpressions(filter)...)
	query, args, err := inventoryViewQuery().Where(exprs...).ToSQL()
	if err != nil {
		return nil, errors.Join(errBuildingQuery, err)
	}
	return r.listViews(ctx, query, args...)
}

func (r *inventoryRepository) ListBelowThreshold(ctx context.Context) ([]domain.InventoryView, error) {
	query, args, err := inventoryViewQuery().
		Where(goqu.I("ti.available_quantity").Lt(goqu.I("ti.minimum_threshold"))).
		ToSQL()
	if err != nil {
		return nil, errors.Join(errBuildingQuery, err)
	}
	return r.listViews(ctx, query, args...)
}

func (r *inventoryRepository) listViews(ctx context.Context, query string, args ...any) ([]domain.InventoryView, error) {
	logger.DatabaseCall("SELECT", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var views []domain.InventoryView
	for rows.Next() {
		var v domain.InventoryView
		if err := rows.Scan(
			&v.ID, &v.ToolCribID, &v.ToolID, &v.TotalQuantity, &v.AvailableQuantity, &v.BrokenQuantity,
			&v.MinimumThreshold, &v.LastUpdated,
			&v.Tool.ID, &v.Tool.Name, &v.Tool.Price, &v.Tool.IsPerishable, &v.Tool.ReturnPeriodDays,
			&v.Tool.FineAmount, &v.Tool.Category, &v.Tool.ImageURL,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(views)), nil)
	return views, nil
}

func (r *inventoryRepository) ListTopBroken(ctx context.Context, limit int) ([]domain.ToolStat, error) {
	query := `SELECT t.id, t.name, t.price, SUM(ti.broken_quantity) AS broken
	          FROM tool_inventory ti
	          JOIN tools t ON t.id = ti.tool_id
	          GROUP BY t.id, t.name, t.price
	          HAVING SUM(ti.broken_quantity) > 0
	          ORDER BY broken DESC, t.id ASC
	          LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []domain.ToolStat
	for rows.Next() {
		var s domain.ToolStat
		if err := rows.Scan(&s.ToolID, &s.ToolName, &s.Price, &s.Quantity); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
