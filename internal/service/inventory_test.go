package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/service"
)

func TestInventoryService_GetInventorySnapshot(t *testing.T) {
	f := newFixture(t)
	svc := service.NewInventoryService(f.store, f.clock)

	t.Run("Members Can View", func(t *testing.T) {
		for _, actor := range []domain.Actor{ana, cribActor, wpmActor, fmActor, ownerActor} {
			views, err := svc.GetInventorySnapshot(testCtx, actor, crib, domain.InventoryFilter{})
			require.NoError(t, err, "actor %+v", actor)
			assert.Len(t, views, 3)
		}
	})

	t.Run("Filtered", func(t *testing.T) {
		perishable := true
		views, err := svc.GetInventorySnapshot(testCtx, cribActor, crib, domain.InventoryFilter{IsPerishable: &perishable})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Gloves", views[0].Tool.Name)

		views, err = svc.GetInventorySnapshot(testCtx, cribActor, crib, domain.InventoryFilter{
			Categories: []domain.ToolCategory{domain.ToolCategorySpecial},
		})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, scope, views[0].ToolID)
	})

	t.Run("Outsiders Cannot View", func(t *testing.T) {
		_, err := svc.GetInventorySnapshot(testCtx, otherActor, crib, domain.InventoryFilter{})
		assert.True(t, errors.Is(err, domain.ErrNotAuthorized))

		_, err = svc.GetInventorySnapshot(testCtx, ben, crib, domain.InventoryFilter{})
		assert.True(t, errors.Is(err, domain.ErrWorkerNotProvisioned))
	})

	t.Run("Unknown Crib", func(t *testing.T) {
		_, err := svc.GetInventorySnapshot(testCtx, ownerActor, 999, domain.InventoryFilter{})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestInventoryService_AssignToolToWorkplace(t *testing.T) {
	t.Run("Restocks Existing Row", func(t *testing.T) {
		f := newFixture(t)
		svc := service.NewInventoryService(f.store, f.clock)

		inv, err := svc.AssignToolToWorkplace(testCtx, fmActor, workplace, drill, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(15), inv.TotalQuantity)
		assert.Equal(t, int64(15), inv.AvailableQuantity)
	})

	t.Run("Creates New Row", func(t *testing.T) {
		f := newFixture(t)
		svc := service.NewInventoryService(f.store, f.clock)

		inv, err := svc.AssignToolToWorkplace(testCtx, fmActor, workplace2, scope, 3)
		require.NoError(t, err)
		assert.Equal(t, crib2, inv.ToolCribID)
		assert.Equal(t, int64(3), inv.TotalQuantity)
		assert.Zero(t, inv.MinimumThreshold)
	})

	t.Run("Only Facility Manager", func(t *testing.T) {
		f := newFixture(t)
		svc := service.NewInventoryService(f.store, f.clock)

		_, err := svc.AssignToolToWorkplace(testCtx, cribActor, workplace, drill, 5)
		assert.True(t, errors.Is(err, domain.ErrNotAuthorized))
		assert.Equal(t, int64(10), f.available(t, drill))
	})

	t.Run("Invalid Quantity", func(t *testing.T) {
		f := newFixture(t)
		svc := service.NewInventoryService(f.store, f.clock)

		_, err := svc.AssignToolToWorkplace(testCtx, fmActor, workplace, drill, 0)
		assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
	})

	t.Run("Unknown Tool", func(t *testing.T) {
		f := newFixture(t)
		svc := service.NewInventoryService(f.store, f.clock)

		_, err := svc.AssignToolToWorkplace(testCtx, fmActor, workplace, 99, 1)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
