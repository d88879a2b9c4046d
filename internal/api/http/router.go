package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/security"
)

// NewRouter wires every route. Path templates must match the keys of
// config.EndpointSecurityConfig, which the auth middleware looks them up in.
func NewRouter(h *Handler, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, AccessLog, NewAuthMiddleware(tm).Handler)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/tool-requests", h.CreateToolRequest).Methods(http.MethodPost)
	api.HandleFunc("/tool-request-items", h.ListRequestItems).Methods(http.MethodGet)
	api.HandleFunc("/tool-request-items/{id:[0-9]+}/decision", h.DecideRequestItem).Methods(http.MethodPost)
	api.HandleFunc("/tool-request-items/{id:[0-9]+}/return", h.ReturnToolItem).Methods(http.MethodPost)

	api.HandleFunc("/tool-cribs/{id:[0-9]+}/inventory", h.GetInventorySnapshot).Methods(http.MethodGet)
	api.HandleFunc("/tool-cribs/{id:[0-9]+}/unreturned", h.ListUnreturnedItems).Methods(http.MethodGet)
	api.HandleFunc("/workplaces/{id:[0-9]+}/inventory", h.AssignToolToWorkplace).Methods(http.MethodPost)

	api.HandleFunc("/reports/top-demanded", h.report(func(r *http.Request) ([]*domain.ToolStat, error) {
		return h.reports.TopDemandedTools(r.Context())
	})).Methods(http.MethodGet)
	api.HandleFunc("/reports/top-broken", h.report(func(r *http.Request) ([]*domain.ToolStat, error) {
		return h.reports.TopBrokenTools(r.Context())
	})).Methods(http.MethodGet)
	api.HandleFunc("/reports/top-priced", h.report(func(r *http.Request) ([]*domain.ToolStat, error) {
		return h.reports.TopPricedTools(r.Context())
	})).Methods(http.MethodGet)

	api.HandleFunc("/notifications", h.GetNotifications).Methods(http.MethodGet)

	return router
}
