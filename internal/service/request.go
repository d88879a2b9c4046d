package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/metrics"
	"toolcrib-backend/internal/repository"
)

type toolRequestService struct {
	store    *repository.Store
	emailSvc EmailService
	clock    Clock
	policy   LendingPolicy
	metrics  *metrics.Recorder
}

func NewToolRequestService(
	store *repository.Store,
	emailSvc EmailService,
	clock Clock,
	policy LendingPolicy,
	recorder *metrics.Recorder,
) ToolRequestService {
	if clock == nil {
		clock = SystemClock()
	}
	return &toolRequestService{
		store:    store,
		emailSvc: emailSvc,
		clock:    clock,
		policy:   policy.withDefaults(),
		metrics:  recorder,
	}
}

func (s *toolRequestService) CreateToolRequest(ctx context.Context, actor domain.Actor, lines []domain.RequestLine) (*domain.ToolRequest, error) {
	logger.EnterMethod("toolRequestService.CreateToolRequest", "workerID", actor.UserID, "items", len(lines))

	if err := requireRole(actor, domain.RoleWorker); err != nil {
		logger.ExitMethodWithError("toolRequestService.CreateToolRequest", err)
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		logger.ExitMethodWithError("toolRequestService.CreateToolRequest", err)
		return nil, err
	}

	placement, err := s.store.Premises.ResolvePlacement(ctx, actor.UserID)
	if err != nil {
		logger.ExitMethodWithError("toolRequestService.CreateToolRequest", err, "workerID", actor.UserID)
		return nil, err
	}

	now := s.clock.Now()
	var created *domain.ToolRequest
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		req := &domain.ToolRequest{
			WorkerID:    actor.UserID,
			WorkplaceID: placement.WorkplaceID,
			RequestDate: now,
			ReturnDate:  now.AddDate(0, 0, s.policy.DefaultReturnDays),
			Items:       make([]domain.ToolRequestItem, 0, len(lines)),
		}
		for _, line := range lines {
			if _, err := tx.Tools.GetByID(ctx, line.ToolID); err != nil {
				return err
			}
			inv, err := tx.Inventory.Get(ctx, placement.ToolCribID, line.ToolID)
			if err != nil {
				return err
			}
			// Admission only. Stock is reserved when the item is approved.
			if line.Quantity > inv.AvailableQuantity {
				return domain.NewInsufficientStockError(line.ToolID, line.Quantity, inv.AvailableQuantity)
			}
			req.Items = append(req.Items, domain.ToolRequestItem{
				ToolID:         line.ToolID,
				ReqQuantity:    line.Quantity,
				ApprovalStatus: domain.ApprovalStatusPending,
				ReturnStatus:   domain.ReturnStatusPending,
			})
		}
		if err := tx.Requests.Create(ctx, req); err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("toolRequestService.CreateToolRequest", err, "workerID", actor.UserID)
		return nil, err
	}

	s.metrics.RequestCreated(ctx, len(created.Items))
	logger.InfoContext(ctx, "Tool request created", "requestID", created.ID, "workerID", actor.UserID, "items", len(created.Items))
	logger.ExitMethod("toolRequestService.CreateToolRequest", "requestID", created.ID)
	return created, nil
}

func validateLines(lines []domain.RequestLine) error {
	if len(lines) == 0 {
		return domain.NewInvalidArgumentError("a tool request needs at least one item")
	}
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.NewInvalidQuantityError("quantity for tool %d must be positive, got %d", line.ToolID, line.Quantity)
		}
		if seen[line.ToolID] {
			return domain.NewInvalidArgumentError("tool %d appears more than once in the request", line.ToolID)
		}
		seen[line.ToolID] = true
	}
	return nil
}

func (s *toolRequestService) DecideRequestItem(ctx context.Context, actor domain.Actor, itemID int64, approve bool) (*domain.ToolRequestItem, error) {
	logger.EnterMethod("toolRequestService.DecideRequestItem", "itemID", itemID, "actorID", actor.UserID, "approve", approve)

	var (
		decided *domain.ToolRequestItem
		tool    *domain.Tool
		req     *domain.ToolRequest
		cribID  int64
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		item, err := tx.Requests.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item.IsDecided() {
			return domain.NewAlreadyProcessedError(item.ID, item.ApprovalStatus)
		}

		tool, err = tx.Tools.GetByID(ctx, item.ToolID)
		if err != nil {
			return err
		}
		req, err = tx.Requests.GetRequest(ctx, item.RequestID)
		if err != nil {
			return err
		}
		crib, err := tx.Premises.GetToolCribByWorkplace(ctx, req.WorkplaceID)
		if err != nil {
			return err
		}
		cribID = crib.ID

		if err := authorizeDecision(ctx, tx.Premises, actor, tool.Category, req.WorkplaceID, crib.ID); err != nil {
			return err
		}

		approver := actor.UserID
		if actor.Role == domain.RoleWorkplaceManager {
			item.ApprovedByWpm = &approver
		} else {
			item.ApprovedByCrib = &approver
		}

		if !approve {
			item.ApprovalStatus = domain.ApprovalStatusRejected
		} else {
			if _, err := Reserve(ctx, tx.Inventory, crib.ID, tool.ID, item.ReqQuantity); err != nil {
				return err
			}
			item.ApprovalStatus = domain.ApprovalStatusApproved
			if tool.IsPerishable {
				item.ReturnStatus = domain.ReturnStatusUnreturnable
				item.ReturnDate = nil
				item.RetQuantity = 0
			} else {
				due := s.clock.Now().AddDate(0, 0, tool.ReturnPeriod(s.policy.DefaultReturnDays))
				item.ReturnStatus = domain.ReturnStatusPending
				item.ReturnDate = &due
			}
		}

		if err := tx.Requests.UpdateItem(ctx, item); err != nil {
			return err
		}
		decided = item
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.metrics.Stockout(ctx, cribID)
		}
		logger.ExitMethodWithError("toolRequestService.DecideRequestItem", err, "itemID", itemID)
		return nil, err
	}

	s.metrics.Decision(ctx, string(tool.Category), approve)
	logger.InfoContext(ctx, "Tool request item decided",
		"itemID", decided.ID, "status", decided.ApprovalStatus, "actorID", actor.UserID)

	s.notifyDecision(ctx, req.WorkerID, tool, decided)

	logger.ExitMethod("toolRequestService.DecideRequestItem", "itemID", decided.ID)
	return decided, nil
}

func (s *toolRequestService) notifyDecision(ctx context.Context, workerID int64, tool *domain.Tool, item *domain.ToolRequestItem) {
	approved := item.ApprovalStatus == domain.ApprovalStatusApproved
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}

	err := s.store.Notifications.Create(ctx, &domain.Notification{
		UserID:  workerID,
		Title:   fmt.Sprintf("Tool request %s", verdict),
		Message: fmt.Sprintf("Your request for %d x %s was %s", item.ReqQuantity, tool.Name, verdict),
		Attributes: map[string]string{
			"type":    "TOOL_REQUEST_DECISION",
			"item_id": fmt.Sprintf("%d", item.ID),
			"status":  string(item.ApprovalStatus),
		},
	})
	if err != nil {
		logger.WarnContext(ctx, "Decision notification failed", "itemID", item.ID, "workerID", workerID, "error", err)
	}

	worker, err := s.store.Users.GetByID(ctx, workerID)
	if err != nil {
		logger.WarnContext(ctx, "Skipping decision e-mail, worker lookup failed", "workerID", workerID, "error", err)
		return
	}
	if err := s.emailSvc.SendDecisionNotification(ctx, worker.Email, worker.Name, tool.Name, item.ReqQuantity, approved, item.ReturnDate); err != nil {
		logger.WarnContext(ctx, "Decision e-mail failed", "itemID", item.ID, "error", err)
	}
}

func (s *toolRequestService) ReturnToolItem(ctx context.Context, actor domain.Actor, itemID, returnedQty int64, returnedAt time.Time) (*domain.ToolRequestItem, error) {
	logger.EnterMethod("toolRequestService.ReturnToolItem", "itemID", itemID, "actorID", actor.UserID, "returned", returnedQty)

	if err := requireRole(actor, domain.RoleToolCribManager); err != nil {
		logger.ExitMethodWithError("toolRequestService.ReturnToolItem", err)
		return nil, err
	}
	if returnedAt.IsZero() {
		returnedAt = s.clock.Now()
	}

	var (
		returned   *domain.ToolRequestItem
		tool       *domain.Tool
		req        *domain.ToolRequest
		settlement Settlement
		healed     bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.TxRepositories) error {
		healed = false

		item, err := tx.Requests.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		req, err = tx.Requests.GetRequest(ctx, item.RequestID)
		if err != nil {
			return err
		}
		crib, err := tx.Premises.GetToolCribByWorkplace(ctx, req.WorkplaceID)
		if err != nil {
			return err
		}
		ok, err := managesToolCrib(ctx, tx.Premises, actor.UserID, crib.ID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewNotAuthorizedError("user %d does not manage tool crib %d", actor.UserID, crib.ID)
		}

		if item.ReturnStatus == domain.ReturnStatusReturned {
			return domain.NewAlreadyReturnedError(item.ID)
		}
		tool, err = tx.Tools.GetByID(ctx, item.ToolID)
		if err != nil {
			return err
		}
		if tool.IsPerishable {
			if item.ReturnStatus == domain.ReturnStatusUnreturnable {
				return domain.NewNotReturnableError(item.ID)
			}
			// Repair a perishable item left in a returnable state and let
			// the repair commit; the caller still gets NotReturnable.
			item.ReturnStatus = domain.ReturnStatusUnreturnable
			item.ReturnDate = nil
			item.RetQuantity = 0
			if err := tx.Requests.UpdateItem(ctx, item); err != nil {
				return err
			}
			healed = true
			return nil
		}
		if item.ApprovalStatus != domain.ApprovalStatusApproved {
			return domain.NewNotApprovedError(item.ID, item.ApprovalStatus)
		}
		if returnedQty < 0 || returnedQty > item.ReqQuantity {
			return domain.NewInvalidQuantityError("returned quantity must be between 0 and %d, got %d", item.ReqQuantity, returnedQty)
		}

		due := req.ReturnDate
		if item.ReturnDate != nil {
			due = *item.ReturnDate
		}
		settlement = ComputeSettlement(item.ReqQuantity, returnedQty, tool.FineAmount, due, returnedAt, s.policy.Location)

		actual := returnedAt
		item.RetQuantity = settlement.Returned
		item.BrkQuantity = settlement.Broken
		item.Fine = settlement.Fine
		item.ReturnStatus = domain.ReturnStatusReturned
		item.ReturnDate = &actual

		if _, err := Release(ctx, tx.Inventory, crib.ID, tool.ID, settlement.Returned, settlement.Broken); err != nil {
			return err
		}
		if err := tx.Requests.UpdateItem(ctx, item); err != nil {
			return err
		}
		returned = item
		return nil
	})
	if err == nil && healed {
		logger.WarnContext(ctx, "Perishable item was returnable, marked unreturnable", "itemID", itemID)
		err = domain.NewNotReturnableError(itemID)
	}
	if err != nil {
		logger.ExitMethodWithError("toolRequestService.ReturnToolItem", err, "itemID", itemID)
		return nil, err
	}

	fine, _ := settlement.Fine.Float64()
	s.metrics.Return(ctx, settlement.DaysLate > 0, fine)
	logger.InfoContext(ctx, "Tool request item returned",
		"itemID", returned.ID, "returned", returned.RetQuantity, "broken", returned.BrkQuantity,
		"daysLate", settlement.DaysLate, "fine", returned.Fine.String())

	s.notifyReturn(ctx, req.WorkerID, tool, returned, settlement)

	logger.ExitMethod("toolRequestService.ReturnToolItem", "itemID", returned.ID)
	return returned, nil
}

func (s *toolRequestService) notifyReturn(ctx context.Context, workerID int64, tool *domain.Tool, item *domain.ToolRequestItem, st Settlement) {
	message := fmt.Sprintf("Return of %d x %s recorded", st.Returned, tool.Name)
	if st.Fine.IsPositive() {
		message = fmt.Sprintf("Return of %d x %s recorded with a fine of %s", st.Returned, tool.Name, st.Fine.StringFixed(2))
	}
	err := s.store.Notifications.Create(ctx, &domain.Notification{
		UserID:  workerID,
		Title:   "Tool returned",
		Message: message,
		Attributes: map[string]string{
			"type":    "TOOL_RETURN",
			"item_id": fmt.Sprintf("%d", item.ID),
			"fine":    st.Fine.StringFixed(2),
		},
	})
	if err != nil {
		logger.WarnContext(ctx, "Return notification failed", "itemID", item.ID, "workerID", workerID, "error", err)
	}

	worker, err := s.store.Users.GetByID(ctx, workerID)
	if err != nil {
		logger.WarnContext(ctx, "Skipping return e-mail, worker lookup failed", "workerID", workerID, "error", err)
		return
	}
	if st.Fine.IsPositive() {
		err = s.emailSvc.SendFineStatement(ctx, worker.Email, worker.Name, tool.Name, st)
	} else {
		err = s.emailSvc.SendReturnConfirmation(ctx, worker.Email, worker.Name, tool.Name, st.Returned)
	}
	if err != nil {
		logger.WarnContext(ctx, "Return e-mail failed", "itemID", item.ID, "error", err)
	}
}

func (s *toolRequestService) ListRequestItems(ctx context.Context, actor domain.Actor, filter domain.ItemFilter) ([]domain.RequestItemView, int32, error) {
	logger.EnterMethod("toolRequestService.ListRequestItems", "actorID", actor.UserID, "role", actor.Role)

	scope, err := itemScopeFor(ctx, s.store.Premises, actor)
	if err != nil {
		logger.ExitMethodWithError("toolRequestService.ListRequestItems", err)
		return nil, 0, err
	}
	if scope == nil {
		logger.ExitMethod("toolRequestService.ListRequestItems", "count", 0)
		return []domain.RequestItemView{}, 0, nil
	}

	filter.Normalize()
	items, total, err := s.store.Requests.ListItems(ctx, *scope, filter)
	if err != nil {
		logger.ExitMethodWithError("toolRequestService.ListRequestItems", err)
		return nil, 0, err
	}

	logger.ExitMethod("toolRequestService.ListRequestItems", "count", len(items), "total", total)
	return items, total, nil
}

func (s *toolRequestService) ListUnreturnedItems(ctx context.Context, actor domain.Actor, toolCribID int64) ([]domain.RequestItemView, error) {
	logger.EnterMethod("toolRequestService.ListUnreturnedItems", "actorID", actor.UserID, "toolCribID", toolCribID)

	if err := requireRole(actor, domain.RoleToolCribManager); err != nil {
		logger.ExitMethodWithError("toolRequestService.ListUnreturnedItems", err)
		return nil, err
	}
	crib, err := s.store.Premises.GetToolCrib(ctx, toolCribID)
	if err != nil {
		logger.ExitMethodWithError("toolRequestService.ListUnreturnedItems", err)
		return nil, err
	}
	ok, err := managesToolCrib(ctx, s.store.Premises, actor.UserID, crib.ID)
	if err != nil {
		logger.ExitMethodWithError("toolRequestService.ListUnreturnedItems", err)
		return nil, err
	}
	if !ok {
		err := domain.NewNotAuthorizedError("user %d does not manage tool crib %d", actor.UserID, crib.ID)
		logger.ExitMethodWithError("toolRequestService.ListUnreturnedItems", err)
		return nil, err
	}

	scope := domain.ItemScope{WorkplaceIDs: []int64{crib.WorkplaceID}, Unreturned: true}
	filter := domain.ItemFilter{Page: 1, PageSize: 200}
	var all []domain.RequestItemView
	for {
		items, total, err := s.store.Requests.ListItems(ctx, scope, filter)
		if err != nil {
			logger.ExitMethodWithError("toolRequestService.ListUnreturnedItems", err)
			return nil, err
		}
		all = append(all, items...)
		if len(items) == 0 || int32(len(all)) >= total {
			break
		}
		filter.Page++
	}

	logger.ExitMethod("toolRequestService.ListUnreturnedItems", "count", len(all))
	return all, nil
}
