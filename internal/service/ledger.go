package service

import (
	"context"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
)

// Reserve takes qty units of a tool out of a crib's available stock. The row
// is locked first, so concurrent reservations against the same row queue up
// and availability can never go negative. It must run inside a transaction.
func Reserve(ctx context.Context, inv repository.InventoryRepository, toolCribID, toolID, qty int64) (*domain.Inventory, error) {
	logger.EnterMethod("ledger.Reserve", "toolCribID", toolCribID, "toolID", toolID, "qty", qty)

	if qty <= 0 {
		return nil, domain.NewInvalidQuantityError("reserve quantity must be positive, got %d", qty)
	}
	row, err := inv.GetForUpdate(ctx, toolCribID, toolID)
	if err != nil {
		logger.ExitMethodWithError("ledger.Reserve", err)
		return nil, err
	}
	if row.AvailableQuantity-qty < 0 {
		err := domain.NewInsufficientStockError(toolID, qty, row.AvailableQuantity)
		logger.ExitMethodWithError("ledger.Reserve", err)
		return nil, err
	}

	row.AvailableQuantity -= qty
	if err := inv.UpdateQuantities(ctx, row); err != nil {
		logger.ExitMethodWithError("ledger.Reserve", err)
		return nil, err
	}

	logger.ExitMethod("ledger.Reserve", "available", row.AvailableQuantity)
	return row, nil
}

// Release credits a return: returned units go back to available, broken
// units are added to the broken count. Available is capped at total.
func Release(ctx context.Context, inv repository.InventoryRepository, toolCribID, toolID, returnedQty, brokenQty int64) (*domain.Inventory, error) {
	logger.EnterMethod("ledger.Release", "toolCribID", toolCribID, "toolID", toolID, "returned", returnedQty, "broken", brokenQty)

	if returnedQty < 0 || brokenQty < 0 {
		return nil, domain.NewInvalidQuantityError("release quantities must not be negative (returned %d, broken %d)", returnedQty, brokenQty)
	}
	row, err := inv.GetForUpdate(ctx, toolCribID, toolID)
	if err != nil {
		logger.ExitMethodWithError("ledger.Release", err)
		return nil, err
	}

	row.AvailableQuantity += returnedQty
	if row.AvailableQuantity > row.TotalQuantity {
		logger.Warn("Release would exceed total, capping available",
			"toolCribID", toolCribID, "toolID", toolID,
			"available", row.AvailableQuantity, "total", row.TotalQuantity)
		row.AvailableQuantity = row.TotalQuantity
	}
	row.BrokenQuantity += brokenQty

	if err := inv.UpdateQuantities(ctx, row); err != nil {
		logger.ExitMethodWithError("ledger.Release", err)
		return nil, err
	}

	logger.ExitMethod("ledger.Release", "available", row.AvailableQuantity, "broken", row.BrokenQuantity)
	return row, nil
}
