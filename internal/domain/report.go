package domain

import "github.com/shopspring/decimal"

// ToolStat is one entry of a top-N report. Quantity carries the summed
// demand or breakage, Price the catalog price.
type ToolStat struct {
	ToolID   int64           `json:"tool_id"`
	ToolName string          `json:"tool_name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PadToolStats returns exactly n entries, filling missing positions with nil.
func PadToolStats(stats []ToolStat, n int) []*ToolStat {
	out := make([]*ToolStat, n)
	for i := 0; i < n && i < len(stats); i++ {
		s := stats[i]
		out[i] = &s
	}
	return out
}
