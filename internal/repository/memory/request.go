package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"toolcrib-backend/internal/domain"
)

type requestRepository struct {
	access
}

func (r *requestRepository) Create(ctx context.Context, req *domain.ToolRequest) error {
	return r.write(func(st *state) error {
		req.ID = st.nextID()
		for i := range req.Items {
			req.Items[i].ID = st.nextID()
			req.Items[i].RequestID = req.ID
			st.items[req.Items[i].ID] = req.Items[i]
		}
		header := *req
		header.Items = nil
		st.requests[req.ID] = header
		return nil
	})
}

func (r *requestRepository) GetRequest(ctx context.Context, id int64) (*domain.ToolRequest, error) {
	var out *domain.ToolRequest
	err := r.read(func(st *state) error {
		req, ok := st.requests[id]
		if !ok {
			return domain.NewNotFoundError("tool request %d not found", id)
		}
		out = &req
		return nil
	})
	return out, err
}

func (r *requestRepository) GetItem(ctx context.Context, id int64) (*domain.ToolRequestItem, error) {
	var out *domain.ToolRequestItem
	err := r.read(func(st *state) error {
		item, ok := st.items[id]
		if !ok {
			return domain.NewNotFoundError("tool request item %d not found", id)
		}
		out = &item
		return nil
	})
	return out, err
}

func (r *requestRepository) GetItemForUpdate(ctx context.Context, id int64) (*domain.ToolRequestItem, error) {
	return r.GetItem(ctx, id)
}

func (r *requestRepository) UpdateItem(ctx context.Context, item *domain.ToolRequestItem) error {
	return r.write(func(st *state) error {
		if _, ok := st.items[item.ID]; !ok {
			return domain.NewNotFoundError("tool request item %d not found", item.ID)
		}
		st.items[item.ID] = *item
		return nil
	})
}

func viewOf(st *state, item domain.ToolRequestItem) domain.RequestItemView {
	req := st.requests[item.RequestID]
	worker := st.users[req.WorkerID]
	tool := st.tools[item.ToolID]
	return domain.RequestItemView{
		ToolRequestItem:   item,
		WorkerID:          req.WorkerID,
		WorkerName:        worker.Name,
		WorkerEmail:       worker.Email,
		WorkplaceID:       req.WorkplaceID,
		ToolName:          tool.Name,
		ToolCategory:      tool.Category,
		RequestDate:       req.RequestDate,
		RequestReturnDate: req.ReturnDate,
	}
}

func isUnreturned(item domain.ToolRequestItem) bool {
	return item.ApprovalStatus == domain.ApprovalStatusApproved && item.ReturnStatus == domain.ReturnStatusPending
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func matchesScope(v domain.RequestItemView, scope domain.ItemScope, f domain.ItemFilter) bool {
	if scope.WorkerID != nil && v.WorkerID != *scope.WorkerID {
		return false
	}
	if scope.WorkplaceIDs != nil {
		found := false
		for _, id := range scope.WorkplaceIDs {
			if id == v.WorkplaceID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if scope.Category != nil && v.ToolCategory != *scope.Category {
		return false
	}
	if scope.Unreturned && !isUnreturned(v.ToolRequestItem) {
		return false
	}
	if f.ToolName != "" && !containsFold(v.ToolName, f.ToolName) {
		return false
	}
	if f.WorkerName != "" && !containsFold(v.WorkerName, f.WorkerName) {
		return false
	}
	if f.ApprovalStatus != "" && v.ApprovalStatus != f.ApprovalStatus {
		return false
	}
	if f.ReturnStatus != "" && v.ReturnStatus != f.ReturnStatus {
		return false
	}
	if f.From != nil && v.RequestDate.Before(*f.From) {
		return false
	}
	if f.To != nil && v.RequestDate.After(*f.To) {
		return false
	}
	return true
}

func (r *requestRepository) ListItems(ctx context.Context, scope domain.ItemScope, filter domain.ItemFilter) ([]domain.RequestItemView, int32, error) {
	filter.Normalize()

	var views []domain.RequestItemView
	err := r.read(func(st *state) error {
		for _, item := range st.items {
			v := viewOf(st, item)
			if matchesScope(v, scope, filter) {
				views = append(views, v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].RequestDate.Equal(views[j].RequestDate) {
			return views[i].RequestDate.After(views[j].RequestDate)
		}
		return views[i].ID > views[j].ID
	})
	offset := (filter.Page - 1) * filter.PageSize
	return page(views, filter.PageSize, offset), int32(len(views)), nil
}

func (r *requestRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]domain.RequestItemView, error) {
	var views []domain.RequestItemView
	err := r.read(func(st *state) error {
		for _, item := range st.items {
			if !isUnreturned(item) {
				continue
			}
			v := viewOf(st, item)
			due := v.RequestReturnDate
			if item.ReturnDate != nil {
				due = *item.ReturnDate
			}
			if due.Before(asOf) {
				views = append(views, v)
			}
		}
		return nil
	})
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, err
}

func (r *requestRepository) ListTopDemanded(ctx context.Context, limit int) ([]domain.ToolStat, error) {
	var stats []domain.ToolStat
	err := r.read(func(st *state) error {
		sums := make(map[int64]int64)
		for _, item := range st.items {
			sums[item.ToolID] += item.ReqQuantity
		}
		stats = rankByQuantity(st, sums, limit)
		return nil
	})
	return stats, err
}
