package domain

import (
	"time"

	"github.com/google/uuid"
)

// WeatherCondition is the coarse condition bucket reported by the device's
// weather wrapper. Only the transition into rain matters to the rules.
type WeatherCondition string

const (
	WeatherClear  WeatherCondition = "clear"
	WeatherClouds WeatherCondition = "clouds"
	WeatherRain   WeatherCondition = "rain"
	WeatherSnow   WeatherCondition = "snow"
)

// WeatherSnapshot is the device-reported weather at the traveller's location.
type WeatherSnapshot struct {
	Condition   WeatherCondition `json:"condition"`
	Temperature float64          `json:"temperature"`
	Humidity    int              `json:"humidity"`
	Description string           `json:"description,omitempty"`
}

// TripContext is the latest reported state of a trip: where the traveller is,
// what the weather is, the next last-train departure, and which place they
// are currently looking at. One row per trip, upserted on every report.
//
// The previous weather condition is kept so the rule engine can detect the
// transition into rain rather than firing on every rainy report.
type TripContext struct {
	TripID   uuid.UUID   `json:"trip_id"`
	Location Coordinates `json:"location"`

	Weather     *WeatherSnapshot `json:"weather,omitempty"`
	PrevWeather WeatherCondition `json:"prev_weather,omitempty"`

	// LastTrainAt is the departure time of the last train home tonight,
	// as resolved by the device's transit lookup. Nil when unknown.
	LastTrainAt *time.Time `json:"last_train_at,omitempty"`

	// ViewingPlaceID is the saved place currently open on screen, if any.
	// The closing-time rule only considers this place.
	ViewingPlaceID *uuid.UUID `json:"viewing_place_id,omitempty"`

	ReportedAt time.Time `json:"reported_at"`
}
