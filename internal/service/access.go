package service

import (
	"context"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/repository"
)

func requireRole(actor domain.Actor, roles ...domain.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return domain.NewNotAuthorizedError("role %s may not perform this operation", actor.Role)
}

func managesToolCrib(ctx context.Context, premises repository.PremisesRepository, managerID, toolCribID int64) (bool, error) {
	cribs, err := premises.ListManagedToolCribs(ctx, managerID)
	if err != nil {
		return false, err
	}
	for _, c := range cribs {
		if c.ID == toolCribID {
			return true, nil
		}
	}
	return false, nil
}

func managesWorkplace(ctx context.Context, premises repository.PremisesRepository, managerID, workplaceID int64) (bool, error) {
	ids, err := premises.ListManagedWorkplaces(ctx, managerID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == workplaceID {
			return true, nil
		}
	}
	return false, nil
}

// authorizeDecision routes an item to its approver: SPECIAL tools go to the
// workplace manager, NORMAL tools to the manager of the workplace's crib.
func authorizeDecision(ctx context.Context, premises repository.PremisesRepository, actor domain.Actor, category domain.ToolCategory, workplaceID, toolCribID int64) error {
	if !actor.Role.IsApprover() {
		return domain.NewNotAuthorizedError("role %s cannot decide tool requests", actor.Role)
	}

	switch {
	case category == domain.ToolCategorySpecial && actor.Role == domain.RoleWorkplaceManager:
		ok, err := managesWorkplace(ctx, premises, actor.UserID, workplaceID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotAuthorizedError("user %d does not manage workplace %d", actor.UserID, workplaceID)
		}
		return nil
	case category == domain.ToolCategoryNormal && actor.Role == domain.RoleToolCribManager:
		ok, err := managesToolCrib(ctx, premises, actor.UserID, toolCribID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotAuthorizedError("user %d does not manage tool crib %d", actor.UserID, toolCribID)
		}
		return nil
	default:
		return domain.NewCategoryMismatchError(category, actor.Role)
	}
}

// itemScopeFor returns the slice of request items the actor may list. A nil
// scope with a nil error means the actor manages nothing and sees no items.
func itemScopeFor(ctx context.Context, premises repository.PremisesRepository, actor domain.Actor) (*domain.ItemScope, error) {
	switch actor.Role {
	case domain.RoleWorker:
		id := actor.UserID
		return &domain.ItemScope{WorkerID: &id}, nil
	case domain.RoleToolCribManager:
		cribs, err := premises.ListManagedToolCribs(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if len(cribs) == 0 {
			return nil, nil
		}
		ids := make([]int64, 0, len(cribs))
		for _, c := range cribs {
			ids = append(ids, c.WorkplaceID)
		}
		return &domain.ItemScope{WorkplaceIDs: ids}, nil
	case domain.RoleWorkplaceManager:
		ids, err := premises.ListManagedWorkplaces(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		special := domain.ToolCategorySpecial
		return &domain.ItemScope{WorkplaceIDs: ids, Category: &special}, nil
	default:
		return nil, domain.NewNotAuthorizedError("role %s has no request item listing", actor.Role)
	}
}
