package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
)

type toolRequestRepository struct {
	db DBTX
}

func NewToolRequestRepository(db DBTX) repository.ToolRequestRepository {
	return &toolRequestRepository{db: db}
}

func (r *toolRequestRepository) Create(ctx context.Context, req *domain.ToolRequest) error {
	logger.EnterMethod("toolRequestRepository.Create", "workerID", req.WorkerID, "items", len(req.Items))

	query := `INSERT INTO tool_requests (worker_id, workplace_id, request_date, approval_date, return_date)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	logger.DatabaseCall("INSERT", "tool_requests", "workerID", req.WorkerID)
	err := r.db.QueryRowContext(ctx, query, req.WorkerID, req.WorkplaceID, req.RequestDate, req.ApprovalDate, req.ReturnDate).Scan(&req.ID)
	if err != nil {
		logger.ExitMethodWithError("toolRequestRepository.Create", err, "workerID", req.WorkerID)
		return err
	}

	itemQuery := `INSERT INTO tool_request_items (tool_request_id, tool_id, req_quantity, ret_quantity, brk_quantity, approval_status, return_status, fine)
	              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	for i := range req.Items {
		item := &req.Items[i]
		item.RequestID = req.ID
		err := r.db.QueryRowContext(ctx, itemQuery,
			item.RequestID, item.ToolID, item.ReqQuantity, item.RetQuantity, item.BrkQuantity,
			item.ApprovalStatus, item.ReturnStatus, item.Fine,
		).Scan(&item.ID)
		if err != nil {
			logger.ExitMethodWithError("toolRequestRepository.Create", err, "requestID", req.ID, "toolID", item.ToolID)
			return err
		}
	}

	logger.ExitMethod("toolRequestRepository.Create", "requestID", req.ID)
	return nil
}

func (r *toolRequestRepository) GetRequest(ctx context.Context, id int64) (*domain.ToolRequest, error) {
	req := &domain.ToolRequest{}
	query := `SELECT id, worker_id, workplace_id, request_date, approval_date, return_date FROM tool_requests WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&req.ID, &req.WorkerID, &req.WorkplaceID, &req.RequestDate, &req.ApprovalDate, &req.ReturnDate)
	if err != nil {
		return nil, notFound(err, "tool request %d not found", id)
	}
	return req, nil
}

const itemColumns = `id, tool_request_id, tool_id, req_quantity, ret_quantity, brk_quantity, approval_status, return_status, approved_by_crib, approved_by_wpm, return_date, fine`

func (r *toolRequestRepository) GetItem(ctx context.Context, id int64) (*domain.ToolRequestItem, error) {
	return r.getItem(ctx, `SELECT `+itemColumns+` FROM tool_request_items WHERE id = $1`, id)
}

func (r *toolRequestRepository) GetItemForUpdate(ctx context.Context, id int64) (*domain.ToolRequestItem, error) {
	return r.getItem(ctx, `SELECT `+itemColumns+` FROM tool_request_items WHERE id = $1 FOR UPDATE`, id)
}

func (r *toolRequestRepository) getItem(ctx context.Context, query string, id int64) (*domain.ToolRequestItem, error) {
	logger.DatabaseCall("SELECT", "tool_request_items", "itemID", id)
	item := &domain.ToolRequestItem{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.RequestID, &item.ToolID, &item.ReqQuantity, &item.RetQuantity, &item.BrkQuantity,
		&item.ApprovalStatus, &item.ReturnStatus, &item.ApprovedByCrib, &item.ApprovedByWpm, &item.ReturnDate, &item.Fine,
	)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err, "itemID", id)
		return nil, notFound(err, "tool request item %d not found", id)
	}
	return item, nil
}

func (r *toolRequestRepository) UpdateItem(ctx context.Context, item *domain.ToolRequestItem) error {
	query := `UPDATE tool_request_items
	          SET ret_quantity = $1, brk_quantity = $2, approval_status = $3, return_status = $4,
	              approved_by_crib = $5, approved_by_wpm = $6, return_date = $7, fine = $8
	          WHERE id = $9`
	res, err := r.db.ExecContext(ctx, query,
		item.RetQuantity, item.BrkQuantity, item.ApprovalStatus, item.ReturnStatus,
		item.ApprovedByCrib, item.ApprovedByWpm, item.ReturnDate, item.Fine, item.ID,
	)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "itemID", item.ID)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil, "itemID", item.ID)
	if n == 0 {
		return domain.NewNotFoundError("tool request item %d not found", item.ID)
	}
	return nil
}

func itemViewQuery() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(goqu.T("tool_request_items").As("i")).
		Join(goqu.T("tool_requests").As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("i.tool_request_id")))).
		Join(goqu.T("tools").As("t"), goqu.On(goqu.I("t.id").Eq(goqu.I("i.tool_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("r.worker_id")))).
		Select(
			goqu.I("i.id"), goqu.I("i.tool_request_id"), goqu.I("i.tool_id"), goqu.I("i.req_quantity"),
			goqu.I("i.ret_quantity"), goqu.I("i.brk_quantity"), goqu.I("i.approval_status"), goqu.I("i.return_status"),
			goqu.I("i.approved_by_crib"), goqu.I("i.approved_by_wpm"), goqu.I("i.return_date"), goqu.I("i.fine"),
			goqu.I("r.worker_id"), goqu.I("u.name"), goqu.I("u.email"), goqu.I("r.workplace_id"),
			goqu.I("t.name"), goqu.I("t.category"), goqu.I("r.request_date"), goqu.I("r.return_date"),
		).
		Prepared(true)
}

func unreturnedExpression() goqu.Expression {
	return goqu.And(
		goqu.I("i.approval_status").Eq(string(domain.ApprovalStatusApproved)),
		goqu.I("i.return_status").Eq(string(domain.ReturnStatusPending)),
	)
}

func itemScopeExpressions(scope domain.ItemScope, f domain.ItemFilter) []goqu.Expression {
	exprs := make([]goqu.Expression, 0)
	if scope.WorkerID != nil {
		exprs = append(exprs, goqu.I("r.worker_id").Eq(*scope.WorkerID))
	}
	if len(scope.WorkplaceIDs) > 0 {
		exprs = append(exprs, goqu.I("r.workplace_id").In(scope.WorkplaceIDs))
	}
	if scope.Category != nil {
		exprs = append(exprs, goqu.I("t.category").Eq(string(*scope.Category)))
	}
	if scope.Unreturned {
		exprs = append(exprs, unreturnedExpression())
	}

	if f.ToolName != "" {
		exprs = append(exprs, goqu.I("t.name").ILike("%"+f.ToolName+"%"))
	}
	if f.WorkerName != "" {
		exprs = append(exprs, goqu.I("u.name").ILike("%"+f.WorkerName+"%"))
	}
	if f.ApprovalStatus != "" {
		exprs = append(exprs, goqu.I("i.approval_status").Eq(string(f.ApprovalStatus)))
	}
	if f.ReturnStatus != "" {
		exprs = append(exprs, goqu.I("i.return_status").Eq(string(f.ReturnStatus)))
	}
	if f.From != nil {
		exprs = append(exprs, goqu.I("r.request_date").Gte(*f.From))
	}
	if f.To != nil {
		exprs = append(exprs, goqu.I("r.request_date").Lte(*f.To))
	}
	return exprs
}

func (r *toolRequestRepository) ListItems(ctx context.Context, scope domain.ItemScope, filter domain.ItemFilter) ([]domain.RequestItemView, int32, error) {
	if scope.WorkplaceIDs != nil && len(scope.WorkplaceIDs) == 0 {
		return nil, 0, nil
	}
	filter.Normalize()

	ds := itemViewQuery().Where(itemScopeExpressions(scope, filter)...)

	countQuery, countArgs, err := ds.ClearSelect().Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return nil, 0, errors.Join(errBuildingQuery, err)
	}
	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count request items: %w", err)
	}

	offset := uint((filter.Page - 1) * filter.PageSize)
	query, args, err := ds.
		Order(goqu.I("r.request_date").Desc(), goqu.I("i.id").Desc()).
		Limit(uint(filter.PageSize)).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, 0, errors.Join(errBuildingQuery, err)
	}

	views, err := r.listViews(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return views, count, nil
}

func (r *toolRequestRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.RequestItemView, error) {
	query, args, err := itemViewQuery().
		Where(
			unreturnedExpression(),
			goqu.COALESCE(goqu.I("i.return_date"), goqu.I("r.return_date")).Lt(asOf),
		).
		Order(goqu.I("i.id").Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.Join(errBuildingQuery, err)
	}
	return r.listViews(ctx, query, args...)
}

func (r *toolRequestRepository) listViews(ctx context.Context, query string, args ...any) ([]domain.RequestItemView, error) {
	logger.DatabaseCall("SELECT", query)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list request items: %w", err)
	}
	defer rows.Close()

	var views []domain.RequestItemView
	for rows.Next() {
		var v domain.RequestItemView
		if err := rows.Scan(
			&v.ID, &v.RequestID, &v.ToolID, &v.ReqQuantity, &v.RetQuantity, &v.BrkQuantity,
			&v.ApprovalStatus, &v.ReturnStatus, &v.ApprovedByCrib, &v.ApprovedByWpm, &v.ReturnDate, &v.Fine,
			&v.WorkerID, &v.WorkerName, &v.WorkerEmail, &v.WorkplaceID,
			&v.ToolName, &v.ToolCategory, &v.RequestDate, &v.RequestReturnDate,
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

func (r *toolRequestRepository) ListTopDemanded(ctx context.Context, limit int) ([]domain.ToolStat, error) {
	query := `SELECT t.id, t.name, t.price, SUM(i.req_quantity) AS demanded
	          FROM tool_request_items i
	          JOIN tools t ON t.id = i.tool_id
	          GROUP BY t.id, t.name, t.price
	          ORDER BY demanded DESC, t.id ASC
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
