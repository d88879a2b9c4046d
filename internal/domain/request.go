package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

type ReturnStatus string

const (
	ReturnStatusPending      ReturnStatus = "PENDING"
	ReturnStatusReturned     ReturnStatus = "RETURNED"
	ReturnStatusUnreturnable ReturnStatus = "UNRETURNABLE"
)

type ToolRequest struct {
	ID           int64             `json:"id"`
	WorkerID     int64             `json:"worker_id"`
	WorkplaceID  int64             `json:"workplace_id"`
	RequestDate  time.Time         `json:"request_date"`
	ApprovalDate *time.Time        `json:"approval_date,omitempty"`
	ReturnDate   time.Time         `json:"return_date"`
	Items        []ToolRequestItem `json:"items"`
}

type ToolRequestItem struct {
	ID             int64           `json:"id"`
	RequestID      int64           `json:"request_id"`
	ToolID         int64           `json:"tool_id"`
	ReqQuantity    int64           `json:"req_quantity"`
	RetQuantity    int64           `json:"ret_quantity"`
	BrkQuantity    int64           `json:"brk_quantity"`
	ApprovalStatus ApprovalStatus  `json:"approval_status"`
	ReturnStatus   ReturnStatus    `json:"return_status"`
	ApprovedByCrib *int64          `json:"approved_by_crib,omitempty"`
	ApprovedByWpm  *int64          `json:"approved_by_wpm,omitempty"`
	ReturnDate     *time.Time      `json:"return_date,omitempty"`
	Fine           decimal.Decimal `json:"fine"`
}

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

func (s ReturnStatus) Valid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusReturned, ReturnStatusUnreturnable:
		return true
	}
	return false
}

func (i *ToolRequestItem) IsDecided() bool {
	return i.ApprovalStatus == ApprovalStatusApproved || i.ApprovalStatus == ApprovalStatusRejected
}

// RequestLine is one (tool, quantity) pair submitted by a worker.
type RequestLine struct {
	ToolID   int64 `json:"tool_id"`
	Quantity int64 `json:"quantity"`
}

// RequestItemView is a request item joined with its header, tool and worker.
type RequestItemView struct {
	ToolRequestItem
	WorkerID          int64        `json:"worker_id"`
	WorkerName        string       `json:"worker_name"`
	WorkerEmail       string       `json:"-"`
	WorkplaceID       int64        `json:"workplace_id"`
	ToolName          string       `json:"tool_name"`
	ToolCategory      ToolCategory `json:"tool_category"`
	RequestDate       time.Time    `json:"request_date"`
	RequestReturnDate time.Time    `json:"request_return_date"`
}

// ItemScope restricts a listing to the items an actor may see.
type ItemScope struct {
	WorkerID     *int64
	WorkplaceIDs []int64
	Category     *ToolCategory
	Unreturned   bool
}

type ItemFilter struct {
	ToolName       string
	WorkerName     string
	ApprovalStatus ApprovalStatus
	ReturnStatus   ReturnStatus
	From           *time.Time
	To             *time.Time
	Page           int32
	PageSize       int32
}

// Normalize clamps paging to sane defaults.
func (f *ItemFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 200 {
		f.PageSize = 200
	}
}
