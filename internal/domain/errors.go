package domain

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers. They are stable and safe to match on.
const (
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeAlreadyProcessed     = "ALREADY_PROCESSED"
	ErrCodeAlreadyReturned      = "ALREADY_RETURNED"
	ErrCodeCategoryMismatch     = "CATEGORY_MISMATCH"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeNotApproved          = "NOT_APPROVED"
	ErrCodeNotReturnable        = "NOT_RETURNABLE"
	ErrCodeWorkerNotProvisioned = "WORKER_NOT_PROVISIONED"
	ErrCodeNotAuthorized        = "NOT_AUTHORIZED"
	ErrCodeInvalidArgument      = "INVALID_ARGUMENT"
	ErrCodeTransient            = "TRANSIENT"
)

type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, domain.ErrInsufficientStock).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrNotFound             = &Error{Code: ErrCodeNotFound, Message: "resource not found"}
	ErrAlreadyProcessed     = &Error{Code: ErrCodeAlreadyProcessed, Message: "request item has already been processed"}
	ErrAlreadyReturned      = &Error{Code: ErrCodeAlreadyReturned, Message: "tool has already been returned"}
	ErrCategoryMismatch     = &Error{Code: ErrCodeCategoryMismatch, Message: "tool category does not match approver role"}
	ErrInsufficientStock    = &Error{Code: ErrCodeInsufficientStock, Message: "insufficient stock"}
	ErrInvalidQuantity      = &Error{Code: ErrCodeInvalidQuantity, Message: "invalid quantity"}
	ErrNotApproved          = &Error{Code: ErrCodeNotApproved, Message: "request item is not approved"}
	ErrNotReturnable        = &Error{Code: ErrCodeNotReturnable, Message: "perishable tools cannot be returned"}
	ErrWorkerNotProvisioned = &Error{Code: ErrCodeWorkerNotProvisioned, Message: "worker is not assigned to a tool crib"}
	ErrNotAuthorized        = &Error{Code: ErrCodeNotAuthorized, Message: "not authorized"}
	ErrInvalidArgument      = &Error{Code: ErrCodeInvalidArgument, Message: "invalid argument"}
	ErrTransient            = &Error{Code: ErrCodeTransient, Message: "temporary failure, retry later"}
)

func NewNotFoundError(format string, args ...any) error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewAlreadyProcessedError(itemID int64, status ApprovalStatus) error {
	return &Error{
		Code:    ErrCodeAlreadyProcessed,
		Message: fmt.Sprintf("request item %d is already %s", itemID, status),
	}
}

func NewAlreadyReturnedError(itemID int64) error {
	return &Error{
		Code:    ErrCodeAlreadyReturned,
		Message: fmt.Sprintf("request item %d has already been returned", itemID),
	}
}

func NewCategoryMismatchError(category ToolCategory, role Role) error {
	return &Error{
		Code:    ErrCodeCategoryMismatch,
		Message: fmt.Sprintf("%s tools cannot be decided by %s", category, role),
	}
}

func NewInsufficientStockError(toolID, requested, available int64) error {
	return &Error{
		Code:    ErrCodeInsufficientStock,
		Message: fmt.Sprintf("tool %d: requested %d, only %d available", toolID, requested, available),
	}
}

func NewInvalidQuantityError(format string, args ...any) error {
	return &Error{Code: ErrCodeInvalidQuantity, Message: fmt.Sprintf(format, args...)}
}

func NewNotApprovedError(itemID int64, status ApprovalStatus) error {
	return &Error{
		Code:    ErrCodeNotApproved,
		Message: fmt.Sprintf("request item %d is %s, only approved items can be returned", itemID, status),
	}
}

func NewNotReturnableError(itemID int64) error {
	return &Error{
		Code:    ErrCodeNotReturnable,
		Message: fmt.Sprintf("request item %d is perishable and cannot be returned", itemID),
	}
}

func NewWorkerNotProvisionedError(workerID int64, missing string) error {
	return &Error{
		Code:    ErrCodeWorkerNotProvisioned,
		Message: fmt.Sprintf("worker %d has no %s", workerID, missing),
	}
}

func NewNotAuthorizedError(format string, args ...any) error {
	return &Error{Code: ErrCodeNotAuthorized, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidArgumentError(format string, args ...any) error {
	return &Error{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func NewTransientError(attempts int, cause error) error {
	return &Error{
		Code:    ErrCodeTransient,
		Message: fmt.Sprintf("transaction aborted after %d attempts", attempts),
		Err:     cause,
	}
}

// CodeOf returns the domain code carried by err, or "" for infrastructure errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
