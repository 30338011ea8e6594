package domain

import (
	"time"

	"github.com/google/uuid"
)

// Expense is a single spend recorded against a trip's budget.
// Amount is in minor currency units and is always positive.
type Expense struct {
	ID       uuid.UUID `json:"id"`
	TripID   uuid.UUID `json:"trip_id"`
	Amount   int64     `json:"amount"`
	Category string    `json:"category,omitempty"`
	Note     string    `json:"note,omitempty"`
	// SpentAt is when the money left the wallet, not when the record was
	// created. Budget "today" sums use this timestamp.
	SpentAt   time.Time `json:"spent_at"`
	CreatedAt time.Time `json:"created_at"`
}

// BudgetSummary is the derived view of a trip's budget for a given moment.
// SpentToday sums expenses whose SpentAt falls in the current calendar day
// of the trip's timezone.
type BudgetSummary struct {
	TotalBudget int64  `json:"total_budget"`
	DailyBudget int64  `json:"daily_budget"`
	SpentToday  int64  `json:"spent_today"`
	SpentTotal  int64  `json:"spent_total"`
	Currency    string `json:"currency"`
}

// Ratio returns SpentToday as a fraction of DailyBudget.
// Returns 0 when no daily budget is set, so callers never divide by zero.
func (b BudgetSummary) Ratio() float64 {
	if b.DailyBudget <= 0 {
		return 0
	}
	return float64(b.SpentToday) / float64(b.DailyBudget)
}

// DayBounds returns the half-open interval [start, end) of the calendar day
// containing now in the given location. Expense "today" queries use this.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
