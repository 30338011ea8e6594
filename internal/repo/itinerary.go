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

// ItineraryRepo defines the persistence operations for itineraries and their
// activities. Both live in one repo because every activity operation is
// scoped to an itinerary.
type ItineraryRepo interface {
	// Create inserts a new itinerary and returns the persisted record.
	Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)

	// GetByID retrieves an itinerary by ID, scoped to the given trip.
	GetByID(ctx context.Context, tripID, itineraryID uuid.UUID) (domain.Itinerary, error)

	// ListByTripID returns a trip's itineraries ordered by creation time.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Itinerary, error)

	// Delete removes an itinerary (and, via cascade, its activities).
	Delete(ctx context.Context, tripID, itineraryID uuid.UUID) error

	// AddActivity appends an activity to its day: the position is assigned
	// as one past the day's current maximum.
	AddActivity(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// GetActivity retrieves an activity by ID, scoped to the itinerary.
	GetActivity(ctx context.Context, itineraryID, activityID uuid.UUID) (domain.Activity, error)

	// ListActivities returns all of an itinerary's activities ordered by
	// day, then position.
	ListActivities(ctx context.Context, itineraryID uuid.UUID) ([]domain.Activity, error)

	// ListActivitiesByDay returns one day's activities ordered by position.
	ListActivitiesByDay(ctx context.Context, itineraryID uuid.UUID, day time.Time) ([]domain.Activity, error)

	// UpdateActivity overwrites the mutable fields of an activity.
	UpdateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// DeleteActivity removes an activity by ID, scoped to the itinerary.
	DeleteActivity(ctx context.Context, itineraryID, activityID uuid.UUID) error

	// SetPositions rewrites the positions of the given day's activities to
	// match the order of ids. Callers must pass the complete day (use
	// domain.Reorder first); ids not in the list keep stale positions.
	SetPositions(ctx context.Context, itineraryID uuid.UUID, day time.Time, ids []uuid.UUID) error
}

type pgItineraryRepo struct {
	db db
}

// NewItineraryRepo constructs an ItineraryRepo backed by the provided db connection.
func NewItineraryRepo(db db) ItineraryRepo {
	return &pgItineraryRepo{db: db}
}

const itineraryColumns = `id, trip_id, name, created_at, updated_at`

const activityColumns = `id, itinerary_id, day, position, time_slot, title, category,
		place_id, start_time, end_time, booked, created_at, updated_at`

// Create inserts a new itinerary row and returns the full persisted record.
func (r *pgItineraryRepo) Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error) {
	const q = `
		INSERT INTO itineraries (trip_id, name)
		VALUES (@trip_id, @name)
		RETURNING ` + itineraryColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": it.TripID, "name": it.Name})
	result, err := scanItinerary(row)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an itinerary by primary key, scoped to the trip.
func (r *pgItineraryRepo) GetByID(ctx context.Context, tripID, itineraryID uuid.UUID) (domain.Itinerary, error) {
	const q = `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id = @id AND trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": itineraryID, "trip_id": tripID})
	result, err := scanItinerary(row)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("repo.ItineraryRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns the trip's itineraries, oldest first.
func (r *pgItineraryRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Itinerary, error) {
	const q = `SELECT ` + itineraryColumns + ` FROM itineraries WHERE trip_id = @trip_id ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var its []domain.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItineraryRepo.ListByTripID: scan: %w", err)
		}
		its = append(its, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo.ListByTripID: rows: %w", err)
	}

	return its, nil
}

// Delete removes an itinerary by primary key, scoped to the trip.
// Activities go with it via ON DELETE CASCADE.
func (r *pgItineraryRepo) Delete(ctx context.Context, tripID, itineraryID uuid.UUID) error {
	const q = `DELETE FROM itineraries WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": itineraryID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AddActivity inserts an activity at the end of its day.
// The position subquery and the insert run as one statement, so concurrent
// adds to the same day cannot race to the same position within a transaction.
func (r *pgItineraryRepo) AddActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (id, itinerary_id, day, position, time_slot, title, category,
			place_id, start_time, end_time, booked)
		VALUES (@id, @itinerary_id, @day,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM activities
			 WHERE itinerary_id = @itinerary_id AND day = @day),
			@time_slot, @title, @category, @place_id, @start_time, @end_time, @booked)
		RETURNING ` + activityColumns

	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":           id,
		"itinerary_id": a.ItineraryID,
		"day":          a.Day,
		"time_slot":    string(a.TimeSlot),
		"title":        a.Title,
		"category":     a.Category,
		"place_id":     a.PlaceID,
		"start_time":   a.StartTime,
		"end_time":     a.EndTime,
		"booked":       a.Booked,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ItineraryRepo.AddActivity: %w", err)
	}
	return result, nil
}

// GetActivity retrieves an activity by primary key, scoped to the itinerary.
func (r *pgItineraryRepo) GetActivity(ctx context.Context, itineraryID, activityID uuid.UUID) (domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities
		WHERE id = @id AND itinerary_id = @itinerary_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": activityID, "itinerary_id": itineraryID})
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ItineraryRepo.GetActivity: %w", err)
	}
	return result, nil
}

// ListActivities returns the itinerary's activities in day/position order.
func (r *pgItineraryRepo) ListActivities(ctx context.Context, itineraryID uuid.UUID) ([]domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities
		WHERE itinerary_id = @itinerary_id
		ORDER BY day, position`

	return r.queryActivities(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID})
}

// ListActivitiesByDay returns one day's activities in position order.
func (r *pgItineraryRepo) ListActivitiesByDay(ctx context.Context, itineraryID uuid.UUID, day time.Time) ([]domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities
		WHERE itinerary_id = @itinerary_id AND day = @day
		ORDER BY position`

	return r.queryActivities(ctx, q, pgx.NamedArgs{"itinerary_id": itineraryID, "day": day})
}

func (r *pgItineraryRepo) queryActivities(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Activity, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo: query activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ItineraryRepo: scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ItineraryRepo: activity rows: %w", err)
	}

	return activities, nil
}

// UpdateActivity overwrites the mutable fields of an activity.
// Position is deliberately not touched here; reordering owns it.
func (r *pgItineraryRepo) UpdateActivity(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE activities
		SET day        = @day,
		    time_slot  = @time_slot,
		    title      = @title,
		    category   = @category,
		    place_id   = @place_id,
		    start_time = @start_time,
		    end_time   = @end_time,
		    booked     = @booked,
		    updated_at = now()
		WHERE id = @id AND itinerary_id = @itinerary_id
		RETURNING ` + activityColumns

	args := pgx.NamedArgs{
		"id":           a.ID,
		"itinerary_id": a.ItineraryID,
		"day":          a.Day,
		"time_slot":    string(a.TimeSlot),
		"title":        a.Title,
		"category":     a.Category,
		"place_id":     a.PlaceID,
		"start_time":   a.StartTime,
		"end_time":     a.EndTime,
		"booked":       a.Booked,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanActivity(row)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ItineraryRepo.UpdateActivity: %w", err)
	}
	return result, nil
}

// DeleteActivity removes an activity by primary key, scoped to the itinerary.
func (r *pgItineraryRepo) DeleteActivity(ctx context.Context, itineraryID, activityID uuid.UUID) error {
	const q = `DELETE FROM activities WHERE id = @id AND itinerary_id = @itinerary_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": activityID, "itinerary_id": itineraryID})
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.DeleteActivity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ItineraryRepo.DeleteActivity: %w", domain.ErrNotFound)
	}
	return nil
}

// SetPositions rewrites positions so the day's activities match ids order.
// One statement for the whole day, so a failure renumbers nothing.
func (r *pgItineraryRepo) SetPositions(ctx context.Context, itineraryID uuid.UUID, day time.Time, ids []uuid.UUID) error {
	const q = `
		UPDATE activities AS a
		SET position = u.ord - 1, updated_at = now()
		FROM unnest(@ids::uuid[]) WITH ORDINALITY AS u(id, ord)
		WHERE a.id = u.id AND a.itinerary_id = @itinerary_id AND a.day = @day`

	args := pgx.NamedArgs{
		"ids":          ids,
		"itinerary_id": itineraryID,
		"day":          day,
	}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.ItineraryRepo.SetPositions: %w", err)
	}
	if tag.RowsAffected() != int64(len(ids)) {
		return fmt.Errorf("repo.ItineraryRepo.SetPositions: %w", domain.ErrNotFound)
	}
	return nil
}

// scanItinerary maps a single database row into a domain.Itinerary.
func scanItinerary(s scanner) (domain.Itinerary, error) {
	var (
		it     domain.Itinerary
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &it.Name, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Itinerary{}, domain.ErrNotFound
		}
		return domain.Itinerary{}, err
	}

	it.ID = uuid.UUID(id.Bytes)
	it.TripID = uuid.UUID(tripID.Bytes)

	return it, nil
}

// scanActivity maps a single database row into a domain.Activity.
// It handles the UUID, nullable place, and nullable timestamp conversions.
func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a           domain.Activity
		id          pgtype.UUID
		itineraryID pgtype.UUID
		day         pgtype.Date
		slot        string
		placeID     pgtype.UUID
		startTime   pgtype.Timestamptz
		endTime     pgtype.Timestamptz
	)

	err := s.Scan(&id, &itineraryID, &day, &a.Position, &slot, &a.Title, &a.Category,
		&placeID, &startTime, &endTime, &a.Booked, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Activity{}, domain.ErrNotFound
		}
		return domain.Activity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.ItineraryID = uuid.UUID(itineraryID.Bytes)
	a.Day = day.Time
	a.TimeSlot = domain.TimeSlot(slot)
	if placeID.Valid {
		pid := uuid.UUID(placeID.Bytes)
		a.PlaceID = &pid
	}
	if startTime.Valid {
		st := startTime.Time
		a.StartTime = &st
	}
	if endTime.Valid {
		et := endTime.Time
		a.EndTime = &et
	}

	return a, nil
}
