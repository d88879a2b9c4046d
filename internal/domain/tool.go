package domain

import "github.com/shopspring/decimal"

type ToolCategory string

const (
	ToolCategoryNormal  ToolCategory = "NORMAL"
	ToolCategorySpecial ToolCategory = "SPECIAL"
)

func (c ToolCategory) Valid() bool {
	return c == ToolCategoryNormal || c == ToolCategorySpecial
}

// Tool is the read-only catalog entry a request line points at.
type Tool struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	IsPerishable     bool            `json:"is_perishable"`
	ReturnPeriodDays *int32          `json:"return_period_days,omitempty"`
	FineAmount       decimal.Decimal `json:"fine_amount"`
	Category         ToolCategory    `json:"category"`
	ImageURL         string          `json:"image_url,omitempty"`
}

// ReturnPeriod returns the tool's loan period in days, or fallback when the
// catalog leaves it unset. Zero means due back the same day.
func (t *Tool) ReturnPeriod(fallback int) int {
	if t.ReturnPeriodDays == nil {
		return fallback
	}
	return int(*t.ReturnPeriodDays)
}
