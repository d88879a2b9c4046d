package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"toolcrib-backend/internal/domain"
	"toolcrib-backend/internal/logger"
)

const codeUnauthenticated = "UNAUTHENTICATED"

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type listResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page,omitempty"`
	PageSize int32 `json:"page_size,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func statusForCode(code string) int {
	switch code {
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyProcessed,
		domain.ErrCodeAlreadyReturned,
		domain.ErrCodeInsufficientStock,
		domain.ErrCodeNotApproved,
		domain.ErrCodeNotReturnable,
		domain.ErrCodeWorkerNotProvisioned:
		return http.StatusConflict
	case domain.ErrCodeCategoryMismatch, domain.ErrCodeNotAuthorized:
		return http.StatusForbidden
	case domain.ErrCodeInvalidQuantity, domain.ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case domain.ErrCodeTransient:
		return http.StatusServiceUnavailable
	case codeUnauthenticated:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError maps domain errors to their status and hides everything else
// behind a 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal server error"})
		return
	}
	status := statusForCode(derr.Code)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.InfoContext(r.Context(), "Request rejected", "path", r.URL.Path, "code", derr.Code, "message", derr.Message)
	}
	writeJSON(w, status, errorResponse{Code: derr.Code, Message: derr.Message})
}

func writeUnauthenticated(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Code: codeUnauthenticated, Message: message})
}
