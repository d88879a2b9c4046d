package service

import (
	"context"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/repository"
)

type inventoryService struct {
	store *repository.Store
	clock Clock
}

func NewInventoryService(store *repository.Store, clock Clock) InventoryService {
	if clock == nil {
		clock = SystemClock()
	}
	return &inventoryService{store: store, clock: clock}
}

func (s *inventoryService) GetInventorySnapshot(ctx context.Context, actor domain.Actor, toolCribID int64, filter domain.InventoryFilter) ([]domain.InventoryView, error) {
	logger.EnterMethod("inventoryService.GetInventorySnapshot", "actorID", actor.UserID, "toolCribID", toolCribID)

	crib, err := s.store.Premises.GetToolCrib(ctx, toolCribID)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.GetInventorySnapshot", err)
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, crib); err != nil {
		logger.ExitMethodWithError("inventoryService.GetInventorySnapshot", err)
		return nil, err
	}

	views, err := s.store.Inventory.List(ctx, crib.ID, filter)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.GetInventorySnapshot", err)
		return nil, err
	}

	logger.ExitMethod("inventoryService.GetInventorySnapshot", "count", len(views))
	return views, nil
}

// authorizeView admits everyone attached to the crib's workplace: its
// workers and managers, the facility manager above it and the owner.
func (s *inventoryService) authorizeView(ctx context.Context, actor domain.Actor, crib *domain.ToolCrib) error {
	var (
		ok  bool
		err error
	)
	switch actor.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleWorker:
		placement, perr := s.store.Premises.ResolvePlacement(ctx, actor.UserID)
		if perr != nil {
			return perr
		}
		ok = placement.ToolCribID == crib.ID
	case domain.RoleToolCribManager:
		ok, err = managesToolCrib(ctx, s.store.Premises, actor.UserID, crib.ID)
	case domain.RoleWorkplaceManager:
		ok, err = managesWorkplace(ctx, s.store.Premises, actor.UserID, crib.WorkplaceID)
	case domain.RoleFacilityManager:
		ok, err = s.store.Premises.IsFacilityManager(ctx, actor.UserID, crib.WorkplaceID)
	}
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewNotAuthorizedError("user %d cannot view tool crib %d", actor.UserID, crib.ID)
	}
	return nil
}

func (s *inventoryService) AssignToolToWorkplace(ctx context.Context, actor domain.Actor, workplaceID, toolID, quantity int64) (*domain.Inventory, error) {
	logger.EnterMethod("inventoryService.AssignToolToWorkplace", "actorID", actor.UserID, "workplaceID", workplaceID, "toolID", toolID, "quantity", quantity)

	if err := requireRole(actor, domain.RoleFacilityManager); err != nil {
		logger.ExitMethodWithError("inventoryService.AssignToolToWorkplace", err)
		return nil, err
	}
	if quantity <= 0 {
		err := domain.NewInvalidQuantityError("assigned quantity must be positive, got %d", quantity)
		logger.ExitMethodWithError("inventoryService.AssignToolToWorkplace", err)
		return nil, err
	}
	ok, err := s.store.Premises.IsFacilityManager(ctx, actor.UserID, workplaceID)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.AssignToolToWorkplace", err)
		return nil, err
	}
	if !ok {
		err := domain.NewNotAuthorizedError("user %d does not manage the facility of workplace %d", actor.UserID, workplaceID)
		logger.ExitMethodWithError("inventoryService.AssignToolToWorkplace", err)
		return nil, err
	}
	crib, err := s.store.Premises.GetToolCribByWorkplace(ctx, workplaceID)
	if err != nil {
		logger.ExitMethodWithError("inventoryService.AssignToolToWorkplace", err)
		return nil, err
	}

	var inv *domain.Inventory
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		if _, err := tx.Tools.GetByID(ctx, toolID); err != nil {
			return err
		}
		row, err := tx.Inventory.Restock(ctx, crib.ID, toolID, quantity)
		if err != nil {
			return err
		}
		if err := tx.Inventory.CreateLog(ctx, &domain.InventoryLog{
			ToolID:           toolID,
			ToolCribID:       crib.ID,
			WorkplaceID:      workplaceID,
			AssignedBy:       actor.UserID,
			QuantityAssigned: quantity,
			AssignedAt:       s.clock.Now(),
		}); err != nil {
			return err
		}
		inv = row
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("inventoryService.AssignToolToWorkplace", err)
		return nil, err
	}

	logger.InfoContext(ctx, "Tool assigned to workplace", "workplaceID", workplaceID, "toolID", toolID, "quantity", quantity, "total", inv.TotalQuantity)
	logger.ExitMethod("inventoryService.AssignToolToWorkplace", "inventoryID", inv.ID)
	return inv, nil
}
