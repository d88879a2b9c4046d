package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository/postgres"
)

func TestPremisesRepository_ResolvePlacement(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPremisesRepository(db)
	ctx := context.Background()
	cols := []string{"id", "id", "id", "id"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.id, ws.id, wp.id, tc.id").
			WithArgs(int64(11)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(11, 21, 2, 3))

		p, err := repo.ResolvePlacement(ctx, 11)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), p.WorkplaceID)
		assert.Equal(t, int64(3), p.ToolCribID)
	})

	t.Run("No Workstation", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.id, ws.id, wp.id, tc.id").
			WithArgs(int64(12)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(12, nil, nil, nil))

		p, err := repo.ResolvePlacement(ctx, 12)
		assert.Nil(t, p)
		assert.True(t, errors.Is(err, domain.ErrWorkerNotProvisioned))
		assert.Contains(t, err.Error(), "workstation")
	})

	t.Run("No Tool Crib", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.id, ws.id, wp.id, tc.id").
			WithArgs(int64(13)).
			WillReturnRows(sqlmock.NewRows(cols).AddRow(13, 21, 2, nil))

		_, err := repo.ResolvePlacement(ctx, 13)
		assert.True(t, errors.Is(err, domain.ErrWorkerNotProvisioned))
		assert.Contains(t, err.Error(), "tool crib")
	})

	t.Run("Unknown Worker", func(t *testing.T) {
		mock.ExpectQuery("SELECT u.id, ws.id, wp.id, tc.id").
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.ResolvePlacement(ctx, 99)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPremisesRepository_IsFacilityManager(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPremisesRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2), int64(50)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.IsFacilityManager(context.Background(), 50, 2)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestPremisesRepository_ListToolCribManagers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPremisesRepository(db)

	mock.ExpectQuery("SELECT u.id, u.name, u.email, u.role").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow(40, "Cara", "cara@example.com", "TOOL_CRIB_MANAGER"))

	users, err := repo.ListToolCribManagers(context.Background(), 3)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, domain.RoleToolCribManager, users[0].Role)
}
