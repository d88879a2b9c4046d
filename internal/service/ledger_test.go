package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository"
	"toolcrib-backend/internal/service"
)

func TestReserve(t *testing.T) {
	f := newFixture(t)

	t.Run("Success", func(t *testing.T) {
		err := f.store.WithinTx(testCtx, func(ctx context.Context, tx repository.TxRepositories) error {
			inv, err := service.Reserve(ctx, tx.Inventory, crib, drill, 10)
			require.NoError(t, err)
			assert.Zero(t, inv.AvailableQuantity)
			return nil
		})
		require.NoError(t, err)
		assert.Zero(t, f.available(t, drill))
	})

	t.Run("Insufficient", func(t *testing.T) {
		err := f.store.WithinTx(testCtx, func(ctx context.Context, tx repository.TxRepositories) error {
			_, err := service.Reserve(ctx, tx.Inventory, crib, drill, 1)
			return err
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
		assert.Contains(t, err.Error(), "requested 1, only 0 available")
	})

	t.Run("Unknown Row", func(t *testing.T) {
		err := f.store.WithinTx(testCtx, func(ctx context.Context, tx repository.TxRepositories) error {
			_, err := service.Reserve(ctx, tx.Inventory, crib2, drill, 1)
			return err
		})
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("Non Positive Quantity", func(t *testing.T) {
		err := f.store.WithinTx(testCtx, func(ctx context.Context, tx repository.TxRepositories) error {
			_, err := service.Reserve(ctx, tx.Inventory, crib, drill, 0)
			return err
		})
		assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
	})
}

func TestRelease(t *testing.T) {
	f := newFixture(t)

	t.Run("Returned And Broken", func(t *testing.T) {
		err := f.store.WithinTx(testCtx, func(ctx context.Context, tx repository.TxRepositories) error {
			if _, err := service.Reserve(ctx, tx.Inventory, crib, drill, 5); err != nil {
				return err
			}
			inv, err := service.Release(ctx, tx.Inventory, crib, drill, 3, 2)
			require.NoError(t, err)
			assert.Equal(t, int64(8), inv.AvailableQuantity)
			assert.Equal(t, int64(2), inv.BrokenQuantity)
			assert.Equal(t, int64(10), inv.TotalQuantity)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("Capped At Total", func(t *testing.T) {
		err := f.store.WithinTx(testCtx, func(ctx context.Context, tx repository.TxRepositories) error {
			inv, err := service.Release(ctx, tx.Inventory, crib, drill, 50, 0)
			require.NoError(t, err)
			assert.Equal(t, inv.TotalQuantity, inv.AvailableQuantity)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), f.available(t, drill))
	})

	t.Run("Negative Quantity", func(t *testing.T) {
		err := f.store.WithinTx(testCtx, func(ctx context.Context, tx repository.TxRepositories) error {
			_, err := service.Release(ctx, tx.Inventory, crib, drill, -1, 0)
			return err
		})
		assert.True(t, errors.Is(err, domain.ErrInvalidQuantity))
	})
}
