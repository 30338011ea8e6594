package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

func TestPlace_ClosingOn(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	date := time.Date(2026, 4, 5, 12, 0, 0, 0, loc)

	p := domain.Place{Name: "Museum", OpensAt: "09:00", ClosesAt: "17:30"}
	closing, ok := p.ClosingOn(date, loc)

	require.True(t, ok)
	assert.True(t, closing.Equal(time.Date(2026, 4, 5, 17, 30, 0, 0, loc)))
}

func TestPlace_ClosingOn_PastMidnightRollsToNextDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	date := time.Date(2026, 4, 5, 23, 0, 0, 0, loc)

	// Izakaya open 18:00–02:00: closing is "tomorrow" relative to the date.
	p := domain.Place{Name: "Izakaya", OpensAt: "18:00", ClosesAt: "02:00"}
	closing, ok := p.ClosingOn(date, loc)

	require.True(t, ok)
	assert.True(t, closing.Equal(time.Date(2026, 4, 6, 2, 0, 0, 0, loc)))
}

func TestPlace_ClosingOn_UnknownHours(t *testing.T) {
	loc := time.UTC

	_, ok := domain.Place{Name: "No hours"}.ClosingOn(time.Now(), loc)
	assert.False(t, ok)

	_, ok = domain.Place{Name: "Garbage hours", ClosesAt: "25:99"}.ClosingOn(time.Now(), loc)
	assert.False(t, ok)
}
