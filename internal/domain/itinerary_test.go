package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func activity(title string, slot domain.TimeSlot, d int) domain.Activity {
	return domain.Activity{ID: uuid.New(), Title: title, TimeSlot: slot, Day: day(d)}
}

// ---- GroupByDay / GroupBySlot ----------------------------------------------

func TestGroupByDay_OrdersDaysAndKeepsWithinDayOrder(t *testing.T) {
	a := activity("Senso-ji", domain.SlotMorning, 2)
	b := activity("Ramen", domain.SlotAfternoon, 1)
	c := activity("Karaoke", domain.SlotNight, 2)

	days := domain.GroupByDay([]domain.Activity{a, b, c})

	require.Len(t, days, 2)
	assert.True(t, days[0].Date.Equal(day(1)))
	assert.True(t, days[1].Date.Equal(day(2)))
	require.Len(t, days[1].Activities, 2)
	assert.Equal(t, "Senso-ji", days[1].Activities[0].Title)
	assert.Equal(t, "Karaoke", days[1].Activities[1].Title)
}

func TestGroupBySlot_PreservesInsertionOrderWithinSlot(t *testing.T) {
	a := activity("A", domain.SlotMorning, 1)
	b := activity("B", domain.SlotEvening, 1)
	c := activity("C", domain.SlotMorning, 1)

	d := domain.ItineraryDay{Date: day(1), Activities: []domain.Activity{a, b, c}}
	groups := d.GroupBySlot()

	// A and C added to morning in that order; B alone in evening.
	require.Len(t, groups, 2)
	assert.Equal(t, domain.SlotMorning, groups[0].Slot)
	assert.Equal(t, []string{"A", "C"}, titles(groups[0].Activities))
	assert.Equal(t, domain.SlotEvening, groups[1].Slot)
	assert.Equal(t, []string{"B"}, titles(groups[1].Activities))
}

func TestGroupBySlot_OmitsEmptySlots(t *testing.T) {
	d := domain.ItineraryDay{
		Date:       day(1),
		Activities: []domain.Activity{activity("Late drinks", domain.SlotNight, 1)},
	}

	groups := d.GroupBySlot()

	require.Len(t, groups, 1)
	assert.Equal(t, domain.SlotNight, groups[0].Slot)
}

func titles(as []domain.Activity) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Title
	}
	return out
}

// ---- Reorder ----------------------------------------------------------------

func TestReorder_FullPermutation(t *testing.T) {
	a, b, c := activity("A", domain.SlotMorning, 1), activity("B", domain.SlotMorning, 1), activity("C", domain.SlotMorning, 1)

	got, err := domain.Reorder([]domain.Activity{a, b, c}, []uuid.UUID{c.ID, a.ID, b.ID})

	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(got))
}

func TestReorder_OmittedIDsMoveToEndKeepingRelativeOrder(t *testing.T) {
	a, b, c, d := activity("A", domain.SlotMorning, 1), activity("B", domain.SlotMorning, 1),
		activity("C", domain.SlotMorning, 1), activity("D", domain.SlotMorning, 1)

	got, err := domain.Reorder([]domain.Activity{a, b, c, d}, []uuid.UUID{d.ID, b.ID})

	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "A", "C"}, titles(got))
}

func TestReorder_UnknownIDIsValidationError(t *testing.T) {
	a := activity("A", domain.SlotMorning, 1)

	_, err := domain.Reorder([]domain.Activity{a}, []uuid.UUID{uuid.New()})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReorder_DuplicateIDIsValidationError(t *testing.T) {
	a := activity("A", domain.SlotMorning, 1)

	_, err := domain.Reorder([]domain.Activity{a}, []uuid.UUID{a.ID, a.ID})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReorder_ResultIsAlwaysSameSet(t *testing.T) {
	a, b := activity("A", domain.SlotMorning, 1), activity("B", domain.SlotMorning, 1)

	got, err := domain.Reorder([]domain.Activity{a, b}, nil)

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, titles(got))
}

// ---- ActivityPatch ----------------------------------------------------------

func TestActivityPatch_NilFieldsLeaveActivityUntouched(t *testing.T) {
	a := activity("Tsukiji breakfast", domain.SlotMorning, 1)
	a.Category = "food"

	got := domain.ActivityPatch{}.Apply(a)

	assert.Equal(t, a, got)
}

func TestActivityPatch_SetFieldsOverwrite(t *testing.T) {
	a := activity("Tsukiji breakfast", domain.SlotMorning, 1)

	slot := domain.SlotEvening
	booked := true
	newDay := day(3)
	got := domain.ActivityPatch{TimeSlot: &slot, Booked: &booked, Day: &newDay}.Apply(a)

	assert.Equal(t, domain.SlotEvening, got.TimeSlot)
	assert.True(t, got.Booked)
	assert.True(t, got.Day.Equal(day(3)))
	assert.Equal(t, a.Title, got.Title, "unset fields stay")
}

// ---- TimeSlot ---------------------------------------------------------------

func TestTimeSlot_Valid(t *testing.T) {
	assert.True(t, domain.SlotMorning.Valid())
	assert.True(t, domain.SlotNight.Valid())
	assert.False(t, domain.TimeSlot("brunch").Valid())
	assert.False(t, domain.TimeSlot("").Valid())
}
