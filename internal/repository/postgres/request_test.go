package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository/postgres"
)

var itemCols = []string{"id", "tool_request_id", "tool_id", "req_quantity", "ret_quantity", "brk_quantity", "approval_status", "return_status", "approved_by_crib", "approved_by_wpm", "return_date", "fine"}

var itemViewCols = append(append([]string{}, itemCols...),
	"worker_id", "name", "email", "workplace_id", "name", "category", "request_date", "return_date")

func TestToolRequestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRequestRepository(db)
	now := time.Now()

	req := &domain.ToolRequest{
		WorkerID:    11,
		WorkplaceID: 2,
		RequestDate: now,
		ReturnDate:  now.AddDate(0, 0, 5),
		Items: []domain.ToolRequestItem{
			{ToolID: 7, ReqQuantity: 2, ApprovalStatus: domain.ApprovalStatusPending, ReturnStatus: domain.ReturnStatusPending, Fine: decimal.Zero},
			{ToolID: 8, ReqQuantity: 1, ApprovalStatus: domain.ApprovalStatusPending, ReturnStatus: domain.ReturnStatusPending, Fine: decimal.Zero},
		},
	}

	mock.ExpectQuery("INSERT INTO tool_requests").
		WithArgs(req.WorkerID, req.WorkplaceID, req.RequestDate, nil, req.ReturnDate).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectQuery("INSERT INTO tool_request_items").
		WithArgs(int64(100), int64(7), int64(2), int64(0), int64(0), "PENDING", "PENDING", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1000))
	mock.ExpectQuery("INSERT INTO tool_request_items").
		WithArgs(int64(100), int64(8), int64(1), int64(0), int64(0), "PENDING", "PENDING", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1001))

	err = repo.Create(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, int64(100), req.ID)
	assert.Equal(t, int64(1000), req.Items[0].ID)
	assert.Equal(t, int64(100), req.Items[1].RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRequestRepository_GetItemForUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRequestRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		due := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM tool_request_items WHERE id = \\$1 FOR UPDATE").
			WithArgs(int64(1000)).
			WillReturnRows(sqlmock.NewRows(itemCols).
				AddRow(1000, 100, 7, 2, 0, 0, "APPROVED", "PENDING", 40, nil, due, "0"))

		item, err := repo.GetItemForUpdate(ctx, 1000)
		assert.NoError(t, err)
		assert.Equal(t, domain.ApprovalStatusApproved, item.ApprovalStatus)
		assert.NotNil(t, item.ApprovedByCrib)
		assert.Equal(t, int64(40), *item.ApprovedByCrib)
		assert.Nil(t, item.ApprovedByWpm)
		assert.NotNil(t, item.ReturnDate)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM tool_request_items").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(itemCols))

		item, err := repo.GetItemForUpdate(ctx, 5)
		assert.Nil(t, item)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestToolRequestRepository_UpdateItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRequestRepository(db)
	approver := int64(40)
	item := &domain.ToolRequestItem{
		ID:             1000,
		ApprovalStatus: domain.ApprovalStatusApproved,
		ReturnStatus:   domain.ReturnStatusPending,
		ApprovedByCrib: &approver,
		Fine:           decimal.Zero,
	}

	mock.ExpectExec("UPDATE tool_request_items").
		WithArgs(int64(0), int64(0), "APPROVED", "PENDING", int64(40), nil, nil, sqlmock.AnyArg(), int64(1000)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateItem(context.Background(), item))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToolRequestRepository_ListItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRequestRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Scoped To Worker", func(t *testing.T) {
		worker := int64(11)
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "tool_request_items" AS "i"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT (.+) FROM "tool_request_items" AS "i" (.+)"r"."worker_id" = (.+) ORDER BY`).
			WillReturnRows(sqlmock.NewRows(itemViewCols).
				AddRow(1000, 100, 7, 2, 0, 0, "PENDING", "PENDING", nil, nil, nil, "0",
					11, "Ana", "ana@example.com", 2, "Drill", "NORMAL", now, now.AddDate(0, 0, 5)))

		views, total, err := repo.ListItems(ctx, domain.ItemScope{WorkerID: &worker}, domain.ItemFilter{ToolName: "dri"})
		assert.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Len(t, views, 1)
		assert.Equal(t, "Drill", views[0].ToolName)
		assert.Equal(t, "Ana", views[0].WorkerName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Workplace Scope", func(t *testing.T) {
		views, total, err := repo.ListItems(ctx, domain.ItemScope{WorkplaceIDs: []int64{}}, domain.ItemFilter{})
		assert.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, views)
	})
}

func TestToolRequestRepository_ListOverdue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRequestRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+)COALESCE\("i"."return_date", "r"."return_date"\) < `).
		WillReturnRows(sqlmock.NewRows(itemViewCols).
			AddRow(1000, 100, 7, 2, 0, 0, "APPROVED", "PENDING", 40, nil, now.AddDate(0, 0, -2), "0",
				11, "Ana", "ana@example.com", 2, "Drill", "NORMAL", now.AddDate(0, 0, -9), now.AddDate(0, 0, -4)))

	views, err := repo.ListOverdue(context.Background(), now)
	assert.NoError(t, err)
	assert.Len(t, views, 1)
	assert.Equal(t, "ana@example.com", views[0].WorkerEmail)
}

func TestToolRequestRepository_ListTopDemanded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewToolRequestRepository(db)

	mock.ExpectQuery("SELECT (.+) SUM\\(i.req_quantity\\) AS demanded").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "demanded"}).AddRow(7, "Drill", "80.00", 14))

	stats, err := repo.ListTopDemanded(context.Background(), 3)
	assert.NoError(t, err)
	assert.Len(t, stats, 1)
	assert.Equal(t, int64(14), stats[0].Quantity)
}
