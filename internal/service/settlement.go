package service

import (
	"time"

	"github.com/shopspring/decimal"

	"toolcrib-backend/internal/utils"
)

type Settlement struct {
	Requested int64
	Returned  int64
	Broken    int64
	DaysLate  int64
	DueDate   time.Time
	Fine      decimal.Decimal
}

// ComputeSettlement prices a return. Lateness counts whole calendar days in
// loc: a return later on the due date itself is not late. Every unit not
// returned counts as broken and is fined once, on top of one fine per day late.
func ComputeSettlement(requested, returned int64, fineAmount decimal.Decimal, due, actual time.Time, loc *time.Location) Settlement {
	broken := requested - returned

	daysLate := utils.DaysBetween(utils.DateOf(due, loc), utils.DateOf(actual, loc))
	if daysLate < 0 {
		daysLate = 0
	}

	fine := fineAmount.Mul(decimal.NewFromInt(daysLate)).
		Add(fineAmount.Mul(decimal.NewFromInt(broken)))

	return Settlement{
		Requested: requested,
		Returned:  returned,
		Broken:    broken,
		DaysLate:  daysLate,
		DueDate:   due,
		Fine:      fine,
	}
}
