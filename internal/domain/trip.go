// Package domain contains the core data types for the Tomo travel companion
// backend. This package has no dependencies beyond uuid and is imported by
// every other internal package (rules, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip represents a single journey from start to finish.
// A trip is the top-level aggregate; expenses, saved places, itineraries,
// context reports, and notifications all belong to a trip.
type Trip struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Destination string    `json:"destination"`

	// HomeBase is the traveller's anchor point for this trip (hotel,
	// apartment). The weather rule only fires away from it.
	HomeBase Coordinates `json:"home_base"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// TotalBudget is the spending allowance for the whole trip, in minor
	// currency units (yen, cents). Zero disables budget tracking.
	TotalBudget int64  `json:"total_budget"`
	Currency    string `json:"currency"`

	// Timezone is the IANA zone name of the destination (e.g. "Asia/Tokyo").
	// "Today" for budget purposes is a calendar day in this zone.
	Timezone string `json:"timezone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LengthDays returns the trip duration in calendar days, inclusive of both
// endpoints. A same-day trip is 1 day long.
func (t Trip) LengthDays() int {
	days := int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// DailyBudget returns the per-day spending allowance: the total trip budget
// divided by the trip length. Returns 0 when no budget is set.
func (t Trip) DailyBudget() int64 {
	if t.TotalBudget <= 0 {
		return 0
	}
	return t.TotalBudget / int64(t.LengthDays())
}

// Location resolves the trip's IANA timezone, falling back to UTC when the
// zone name is empty or unknown. Budget day boundaries use this location.
func (t Trip) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
