package domain

import "time"

// ExportRow is a single row in the trip data export.
// It is a flat, denormalized view: one row per planned activity, with trip
// fields repeated on every row. A trip with no activities yields one row
// with zero values for all activity fields.
type ExportRow struct {
	// Trip fields — repeated for every activity on the trip.
	TripID          string
	TripName        string
	TripDestination string

	// Activity fields — zero values when the trip has no activities.
	Day       string // "2006-01-02" formatted date, empty when no activity
	TimeSlot  string
	Title     string
	Category  string
	PlaceName string // resolved from the saved-places list, empty when unlinked
	StartTime *time.Time
	EndTime   *time.Time
	Booked    bool
}
