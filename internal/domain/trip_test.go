package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

func tokyoTrip() domain.Trip {
	return domain.Trip{
		Name:        "Tokyo Spring",
		StartDate:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		TotalBudget: 100_000,
		Currency:    "JPY",
		Timezone:    "Asia/Tokyo",
	}
}

func TestTrip_LengthDays_Inclusive(t *testing.T) {
	trip := tokyoTrip()
	// April 1st through April 10th inclusive.
	assert.Equal(t, 10, trip.LengthDays())
}

func TestTrip_LengthDays_SameDayTripIsOneDay(t *testing.T) {
	trip := tokyoTrip()
	trip.EndDate = trip.StartDate
	assert.Equal(t, 1, trip.LengthDays())
}

func TestTrip_DailyBudget(t *testing.T) {
	trip := tokyoTrip()
	assert.Equal(t, int64(10_000), trip.DailyBudget())
}

func TestTrip_DailyBudget_ZeroWhenUnset(t *testing.T) {
	trip := tokyoTrip()
	trip.TotalBudget = 0
	assert.Equal(t, int64(0), trip.DailyBudget())
}

func TestTrip_Location_FallsBackToUTC(t *testing.T) {
	trip := tokyoTrip()
	trip.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, trip.Location())

	trip.Timezone = ""
	assert.Equal(t, time.UTC, trip.Location())
}

func TestDayBounds_TripTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 23:30 UTC on April 1st is already 08:30 on April 2nd in Tokyo.
	now := time.Date(2026, 4, 1, 23, 30, 0, 0, time.UTC)
	start, end := domain.DayBounds(now, loc)

	assert.True(t, start.Equal(time.Date(2026, 4, 2, 0, 0, 0, 0, loc)))
	assert.True(t, end.Equal(time.Date(2026, 4, 3, 0, 0, 0, 0, loc)))
}

func TestBudgetSummary_Ratio(t *testing.T) {
	s := domain.BudgetSummary{DailyBudget: 10_000, SpentToday: 9_000}
	assert.InDelta(t, 0.9, s.Ratio(), 1e-9)
}

func TestBudgetSummary_Ratio_ZeroBudgetNeverDivides(t *testing.T) {
	s := domain.BudgetSummary{DailyBudget: 0, SpentToday: 5_000}
	assert.Equal(t, 0.0, s.Ratio())
}
