package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository/postgres"
)

func TestNotificationRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)
	note := &domain.Notification{
		UserID:     11,
		Title:      "Tool request approved",
		Message:    "Your request for Drill was approved",
		Attributes: map[string]string{"item_id": "1000"},
	}

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(int64(11), note.Title, note.Message, false, []byte(`{"item_id":"1000"}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	err = repo.Create(context.Background(), note)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), note.ID)
}

func TestNotificationRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewNotificationRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM notifications").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM notifications WHERE user_id = \\$1").
		WithArgs(int64(11), int32(20), int32(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "is_read", "attributes", "created_on"}).
			AddRow(3, 11, "Fine issued", "You were fined 50", false, []byte(`{"item_id":"1000"}`), time.Now()))

	notes, total, err := repo.List(context.Background(), 11, 20, 0)
	assert.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Len(t, notes, 1)
	assert.Equal(t, "1000", notes[0].Attributes["item_id"])
}
