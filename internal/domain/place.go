package domain

import (
	"time"

	"github.com/google/uuid"
)

// Place is a saved destination on a trip's list: a restaurant, shrine, bar,
// or anything the traveller bookmarked from the map or chat. Opening hours
// are optional — many saved places never get them filled in, and the closing
// warning falls back gracefully when they are missing.
type Place struct {
	ID       uuid.UUID   `json:"id"`
	TripID   uuid.UUID   `json:"trip_id"`
	Name     string      `json:"name"`
	Category string      `json:"category,omitempty"`
	Coords   Coordinates `json:"coords"`
	// OpensAt and ClosesAt are wall-clock times in "15:04" format, in the
	// trip's timezone. Both empty means hours are unknown.
	OpensAt   string    `json:"opens_at,omitempty"`
	ClosesAt  string    `json:"closes_at,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClosingOn resolves ClosesAt against the given date in loc, returning the
// concrete closing instant for that day. ok is false when hours are unknown
// or malformed. A closing time at or before the opening time is treated as
// past midnight and rolls to the next day (izakaya hours).
func (p Place) ClosingOn(date time.Time, loc *time.Location) (time.Time, bool) {
	if p.ClosesAt == "" {
		return time.Time{}, false
	}
	closes, err := time.Parse("15:04", p.ClosesAt)
	if err != nil {
		return time.Time{}, false
	}
	d := date.In(loc)
	closing := time.Date(d.Year(), d.Month(), d.Day(), closes.Hour(), closes.Minute(), 0, 0, loc)

	if p.OpensAt != "" {
		if opens, err := time.Parse("15:04", p.OpensAt); err == nil {
			if !closes.After(opens) {
				closing = closing.AddDate(0, 0, 1)
			}
		}
	}
	return closing, true
}
