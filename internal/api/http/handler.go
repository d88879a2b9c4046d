package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/service"
	"toolcrib-backend/internal/utils"
)

// Handler exposes the tool crib services over JSON/HTTP.
type Handler struct {
	requests      service.ToolRequestService
	inventory     service.InventoryService
	reports       service.ReportService
	notifications service.NotificationService
}

func NewHandler(
	requests service.ToolRequestService,
	inventory service.InventoryService,
	reports service.ReportService,
	notifications service.NotificationService,
) *Handler {
	return &Handler{
		requests:      requests,
		inventory:     inventory,
		reports:       reports,
		notifications: notifications,
	}
}

type createToolRequestBody struct {
	Items []domain.RequestLine `json:"items"`
}

type decisionBody struct {
	Approve *bool `json:"approve"`
}

type returnBody struct {
	ReturnedQuantity *int64    `json:"returned_quantity"`
	ReturnedAt       time.Time `json:"returned_at"`
}

type assignBody struct {
	ToolID   int64 `json:"tool_id"`
	Quantity int64 `json:"quantity"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateToolRequest(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var body createToolRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	req, err := h.requests.CreateToolRequest(r.Context(), actor, body.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) ListRequestItems(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	filter, err := itemFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, total, err := h.requests.ListRequestItems(r.Context(), actor, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.Normalize()
	writeJSON(w, http.StatusOK, listResponse[domain.RequestItemView]{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

func (h *Handler) DecideRequestItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body decisionBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Approve == nil {
		writeError(w, r, domain.NewInvalidArgumentError("approve is required"))
		return
	}

	item, err := h.requests.DecideRequestItem(r.Context(), actor, id, *body.Approve)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) ReturnToolItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body returnBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.ReturnedQuantity == nil {
		writeError(w, r, domain.NewInvalidArgumentError("returned_quantity is required"))
		return
	}

	item, err := h.requests.ReturnToolItem(r.Context(), actor, id, *body.ReturnedQuantity, body.ReturnedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) GetInventorySnapshot(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter, err := inventoryFilterFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views, err := h.inventory.GetInventorySnapshot(r.Context(), actor, id, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.InventoryView]{Items: views, Total: int32(len(views))})
}

func (h *Handler) ListUnreturnedItems(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.requests.ListUnreturnedItems(r.Context(), actor, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.RequestItemView]{Items: items, Total: int32(len(items))})
}

func (h *Handler) AssignToolToWorkplace(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body assignBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	inv, err := h.inventory.AssignToolToWorkplace(r.Context(), actor, id, body.ToolID, body.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) report(query func(r *http.Request) ([]*domain.ToolStat, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := query(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tools": stats})
	}
}

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	page, err := queryInt32(r, "page", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	pageSize, err := queryInt32(r, "page_size", 20)
	if err != nil {
		writeError(w, r, err)
		return
	}

	notes, total, err := h.notifications.GetNotifications(r.Context(), actor, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Notification]{Items: notes, Total: total, Page: page, PageSize: pageSize})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.NewInvalidArgumentError("malformed request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidArgumentError("invalid id %q", raw)
	}
	return id, nil
}

func queryInt32(r *http.Request, key string, fallback int32) (int32, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, domain.NewInvalidArgumentError("%s must be a number", key)
	}
	return int32(v), nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(key, raw string) (*time.Time, error) {
	if d, err := utils.ParseDate(raw); err == nil {
		t := d.Midnight(time.UTC)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewInvalidArgumentError("%s must be YYYY-MM-DD or RFC 3339", key)
	}
	return &t, nil
}

func itemFilterFromQuery(r *http.Request) (domain.ItemFilter, error) {
	q := r.URL.Query()
	filter := domain.ItemFilter{
		ToolName:       q.Get("tool_name"),
		WorkerName:     q.Get("worker_name"),
		ApprovalStatus: domain.ApprovalStatus(strings.ToUpper(q.Get("approval_status"))),
		ReturnStatus:   domain.ReturnStatus(strings.ToUpper(q.Get("return_status"))),
	}
	if filter.ApprovalStatus != "" && !filter.ApprovalStatus.Valid() {
		return filter, domain.NewInvalidArgumentError("unknown approval_status %q", q.Get("approval_status"))
	}
	if filter.ReturnStatus != "" && !filter.ReturnStatus.Valid() {
		return filter, domain.NewInvalidArgumentError("unknown return_status %q", q.Get("return_status"))
	}
	var err error
	if raw := q.Get("from"); raw != "" {
		if filter.From, err = parseDate("from", raw); err != nil {
			return filter, err
		}
	}
	if raw := q.Get("to"); raw != "" {
		if filter.To, err = parseDate("to", raw); err != nil {
			return filter, err
		}
	}
	if filter.Page, err = queryInt32(r, "page", 1); err != nil {
		return filter, err
	}
	if filter.PageSize, err = queryInt32(r, "page_size", 20); err != nil {
		return filter, err
	}
	return filter, nil
}

func inventoryFilterFromQuery(r *http.Request) (domain.InventoryFilter, error) {
	q := r.URL.Query()
	filter := domain.InventoryFilter{Name: q.Get("name")}

	if raw := q.Get("perishable"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.NewInvalidArgumentError("perishable must be true or false")
		}
		filter.IsPerishable = &v
	}
	if raw := q.Get("low_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, domain.NewInvalidArgumentError("low_stock must be true or false")
		}
		filter.LowStockOnly = v
	}
	for _, raw := range q["category"] {
		c := domain.ToolCategory(strings.ToUpper(raw))
		if !c.Valid() {
			return filter, domain.NewInvalidArgumentError("unknown tool category %q", raw)
		}
		filter.Categories = append(filter.Categories, c)
	}
	for key, dst := range map[string]**decimal.Decimal{"min_price": &filter.MinPrice, "max_price": &filter.MaxPrice} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, domain.NewInvalidArgumentError("%s must be a decimal number", key)
		}
		*dst = &v
	}
	return filter, nil
}
