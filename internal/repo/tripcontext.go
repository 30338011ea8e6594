package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// TripContextRepo defines the persistence operations for per-trip context
// reports. One row per trip, upserted on every report.
type TripContextRepo interface {
	// Upsert stores the latest report. On conflict the previous weather
	// condition is preserved into prev_condition so the rule engine can
	// detect the transition into rain.
	Upsert(ctx context.Context, tc domain.TripContext) (domain.TripContext, error)

	// GetByTripID retrieves the latest context for a trip.
	// Returns domain.ErrNotFound when the trip never reported context.
	GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.TripContext, error)

	// ListReportedSince returns trip IDs with a context report newer than
	// since. The warning sweeper only re-evaluates these.
	ListReportedSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

type pgTripContextRepo struct {
	db db
}

// NewTripContextRepo constructs a TripContextRepo backed by the provided db connection.
func NewTripContextRepo(db db) TripContextRepo {
	return &pgTripContextRepo{db: db}
}

const tripContextColumns = `trip_id, lat, lng, condition, prev_condition, temperature,
		humidity, description, last_train_at, viewing_place_id, reported_at`

// Upsert stores the report. The ON CONFLICT branch copies the row's current
// condition into prev_condition before overwriting it, which is what lets a
// single SQL statement carry the weather-transition state.
func (r *pgTripContextRepo) Upsert(ctx context.Context, tc domain.TripContext) (domain.TripContext, error) {
	const q = `
		INSERT INTO trip_context (trip_id, lat, lng, condition, prev_condition, temperature,
			humidity, description, last_train_at, viewing_place_id, reported_at)
		VALUES (@trip_id, @lat, @lng, @condition, '', @temperature,
			@humidity, @description, @last_train_at, @viewing_place_id, @reported_at)
		ON CONFLICT (trip_id) DO UPDATE
		SET prev_condition   = trip_context.condition,
		    lat              = EXCLUDED.lat,
		    lng              = EXCLUDED.lng,
		    condition        = EXCLUDED.condition,
		    temperature      = EXCLUDED.temperature,
		    humidity         = EXCLUDED.humidity,
		    description      = EXCLUDED.description,
		    last_train_at    = EXCLUDED.last_train_at,
		    viewing_place_id = EXCLUDED.viewing_place_id,
		    reported_at      = EXCLUDED.reported_at
		RETURNING ` + tripContextColumns

	var (
		condition   string
		temperature float64
		humidity    int
		description string
	)
	if tc.Weather != nil {
		condition = string(tc.Weather.Condition)
		temperature = tc.Weather.Temperature
		humidity = tc.Weather.Humidity
		description = tc.Weather.Description
	}
	reported := tc.ReportedAt
	if reported.IsZero() {
		reported = time.Now()
	}
	args := pgx.NamedArgs{
		"trip_id":          tc.TripID,
		"lat":              tc.Location.Lat,
		"lng":              tc.Location.Lng,
		"condition":        condition,
		"temperature":      temperature,
		"humidity":         humidity,
		"description":      description,
		"last_train_at":    tc.LastTrainAt,
		"viewing_place_id": tc.ViewingPlaceID,
		"reported_at":      reported,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTripContext(row)
	if err != nil {
		return domain.TripContext{}, fmt.Errorf("repo.TripContextRepo.Upsert: %w", err)
	}
	return result, nil
}

// GetByTripID retrieves the latest context report for a trip.
func (r *pgTripContextRepo) GetByTripID(ctx context.Context, tripID uuid.UUID) (domain.TripContext, error) {
	const q = `SELECT ` + tripContextColumns + ` FROM trip_context WHERE trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	result, err := scanTripContext(row)
	if err != nil {
		return domain.TripContext{}, fmt.Errorf("repo.TripContextRepo.GetByTripID: %w", err)
	}
	return result, nil
}

// ListReportedSince returns trips with fresh context, for the sweeper.
func (r *pgTripContextRepo) ListReportedSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	const q = `SELECT trip_id FROM trip_context WHERE reported_at > @since`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"since": since})
	if err != nil {
		return nil, fmt.Errorf("repo.TripContextRepo.ListReportedSince: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repo.TripContextRepo.ListReportedSince: scan: %w", err)
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripContextRepo.ListReportedSince: rows: %w", err)
	}

	return ids, nil
}

// scanTripContext maps a single database row into a domain.TripContext.
// A row with an empty condition yields a nil Weather snapshot.
func scanTripContext(s scanner) (domain.TripContext, error) {
	var (
		tc          domain.TripContext
		tripID      pgtype.UUID
		condition   string
		prev        string
		temperature float64
		humidity    int
		description string
		lastTrain   pgtype.Timestamptz
		viewing     pgtype.UUID
	)

	err := s.Scan(&tripID, &tc.Location.Lat, &tc.Location.Lng, &condition, &prev,
		&temperature, &humidity, &description, &lastTrain, &viewing, &tc.ReportedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripContext{}, domain.ErrNotFound
		}
		return domain.TripContext{}, err
	}

	tc.TripID = uuid.UUID(tripID.Bytes)
	tc.PrevWeather = domain.WeatherCondition(prev)
	if condition != "" {
		tc.Weather = &domain.WeatherSnapshot{
			Condition:   domain.WeatherCondition(condition),
			Temperature: temperature,
			Humidity:    humidity,
			Description: description,
		}
	}
	if lastTrain.Valid {
		t := lastTrain.Time
		tc.LastTrainAt = &t
	}
	if viewing.Valid {
		id := uuid.UUID(viewing.Bytes)
		tc.ViewingPlaceID = &id
	}

	return tc, nil
}
