package domain

import (
	"time"

	"github.com/google/uuid"
)

// TimeSlot is one of four coarse buckets used to group a day's activities
// for display. It is stored on the activity, not derived from start time,
// because many activities have no start time at all.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotNight     TimeSlot = "night"
)

// slotOrder is the display order of time slots within a day.
var slotOrder = []TimeSlot{SlotMorning, SlotAfternoon, SlotEvening, SlotNight}

// Valid reports whether s is one of the four known slots.
func (s TimeSlot) Valid() bool {
	switch s {
	case SlotMorning, SlotAfternoon, SlotEvening, SlotNight:
		return true
	}
	return false
}

// Itinerary is a named multi-day plan belonging to a trip.
// Days are not stored as rows; they are derived from the activities' dates.
type Itinerary struct {
	ID        uuid.UUID `json:"id"`
	TripID    uuid.UUID `json:"trip_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Activity is a single planned item on an itinerary day.
// Position is the explicit order within the day; reordering rewrites it.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	// Day is the calendar date the activity is planned for, at midnight UTC.
	Day       time.Time  `json:"day"`
	Position  int        `json:"position"`
	TimeSlot  TimeSlot   `json:"time_slot"`
	Title     string     `json:"title"`
	Category  string     `json:"category,omitempty"`
	PlaceID   *uuid.UUID `json:"place_id,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Booked    bool       `json:"booked"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ActivityPatch carries the optional fields of a partial activity update.
// Nil fields are left untouched.
type ActivityPatch struct {
	Day       *time.Time `json:"day,omitempty"`
	TimeSlot  *TimeSlot  `json:"time_slot,omitempty"`
	Title     *string    `json:"title,omitempty"`
	Category  *string    `json:"category,omitempty"`
	PlaceID   *uuid.UUID `json:"place_id,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Booked    *bool      `json:"booked,omitempty"`
}

// Apply merges the patch into a, returning the patched copy.
func (p ActivityPatch) Apply(a Activity) Activity {
	if p.Day != nil {
		a.Day = *p.Day
	}
	if p.TimeSlot != nil {
		a.TimeSlot = *p.TimeSlot
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.PlaceID != nil {
		a.PlaceID = p.PlaceID
	}
	if p.StartTime != nil {
		a.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		a.EndTime = p.EndTime
	}
	if p.Booked != nil {
		a.Booked = *p.Booked
	}
	return a
}

// ItineraryDay is the derived grouping of one day's activities, ordered by
// their stored position.
type ItineraryDay struct {
	Date       time.Time  `json:"date"`
	Activities []Activity `json:"activities"`
}

// SlotGroup is one time-slot bucket of a day's activities.
type SlotGroup struct {
	Slot       TimeSlot   `json:"slot"`
	Activities []Activity `json:"activities"`
}

// GroupByDay buckets activities into ItineraryDay entries ordered by date.
// Input order within a day is preserved, so callers should pass activities
// already sorted by position.
func GroupByDay(activities []Activity) []ItineraryDay {
	var days []ItineraryDay
	index := make(map[time.Time]int)
	for _, a := range activities {
		day := a.Day.Truncate(24 * time.Hour)
		i, ok := index[day]
		if !ok {
			i = len(days)
			index[day] = i
			days = append(days, ItineraryDay{Date: day})
		}
		days[i].Activities = append(days[i].Activities, a)
	}
	// Dates may arrive out of order when activities span days; a simple
	// insertion sort keeps the stable within-day order intact.
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && days[j].Date.Before(days[j-1].Date); j-- {
			days[j], days[j-1] = days[j-1], days[j]
		}
	}
	return days
}

// GroupBySlot buckets the day's activities into the four time slots, in
// morning→night order, preserving the original relative order within each
// slot. Slots with no activities are omitted.
func (d ItineraryDay) GroupBySlot() []SlotGroup {
	buckets := make(map[TimeSlot][]Activity, len(slotOrder))
	for _, a := range d.Activities {
		buckets[a.TimeSlot] = append(buckets[a.TimeSlot], a)
	}
	var groups []SlotGroup
	for _, slot := range slotOrder {
		if as := buckets[slot]; len(as) > 0 {
			groups = append(groups, SlotGroup{Slot: slot, Activities: as})
		}
	}
	return groups
}

// Reorder re-sequences activities to match orderedIDs. IDs omitted from
// orderedIDs keep their relative order and move to the end. An ID in
// orderedIDs that does not name one of the activities is a validation error.
// The result is always a permutation of the input: same ids, new order.
func Reorder(activities []Activity, orderedIDs []uuid.UUID) ([]Activity, error) {
	byID := make(map[uuid.UUID]Activity, len(activities))
	for _, a := range activities {
		byID[a.ID] = a
	}

	result := make([]Activity, 0, len(activities))
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return nil, ErrValidation
		}
		a, ok := byID[id]
		if !ok {
			return nil, ErrValidation
		}
		seen[id] = true
		result = append(result, a)
	}
	for _, a := range activities {
		if !seen[a.ID] {
			result = append(result, a)
		}
	}
	return result, nil
}
