package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolcrib-backend/internal/service"
)

func TestNotificationService_GetNotifications(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		id := f.request(t, drill, 1)
		_, err := f.requests.DecideRequestItem(testCtx, cribActor, id, i%2 == 0)
		require.NoError(t, err)
	}
	svc := service.NewNotificationService(f.store.Notifications)

	notes, total, err := svc.GetNotifications(testCtx, ana, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(3), total)
	assert.Len(t, notes, 2)

	notes, _, err = svc.GetNotifications(testCtx, ana, 2, 2)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	notes, total, err = svc.GetNotifications(testCtx, cribActor, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, notes)
}
