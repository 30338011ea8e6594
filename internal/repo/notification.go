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

// NotificationRepo defines the persistence operations for notifications.
// Dismissal never deletes rows — history is retained for the dismissed view.
type NotificationRepo interface {
	// Create inserts a new notification and returns the persisted record.
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)

	// GetByID retrieves a notification by its UUID primary key.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error)

	// ListActive returns the trip's undismissed notifications that are
	// neither expired nor scheduled for after now.
	ListActive(ctx context.Context, tripID uuid.UUID, now time.Time) ([]domain.Notification, error)

	// ListDismissed returns the trip's most recently dismissed
	// notifications, capped at limit (a display cap, not a storage cap).
	ListDismissed(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Notification, error)

	// Dismiss marks a notification dismissed. Dismissing an already
	// dismissed notification is a no-op, not an error (idempotent).
	// Returns domain.ErrNotFound if the notification does not exist.
	Dismiss(ctx context.Context, id uuid.UUID, at time.Time) error

	// DismissAll dismisses every active notification of the trip.
	DismissAll(ctx context.Context, tripID uuid.UUID, at time.Time) error

	// RefreshExpiry updates the expiry of an existing notification. Used
	// when re-evaluation re-triggers a warning of an already-active type.
	RefreshExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time, triggeredAt time.Time) error
}

type pgNotificationRepo struct {
	db db
}

// NewNotificationRepo constructs a NotificationRepo backed by the provided db connection.
func NewNotificationRepo(db db) NotificationRepo {
	return &pgNotificationRepo{db: db}
}

const notificationColumns = `id, trip_id, type, severity, priority, message, action,
		place_id, lat, lng, triggered_at, scheduled_for, expires_at,
		dismissed, dismissed_at, created_at`

// Create inserts a new notification row and returns the full persisted record.
func (r *pgNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	const q = `
		INSERT INTO notifications (trip_id, type, severity, priority, message, action,
			place_id, lat, lng, triggered_at, scheduled_for, expires_at)
		VALUES (@trip_id, @type, @severity, @priority, @message, @action,
			@place_id, @lat, @lng, @triggered_at, @scheduled_for, @expires_at)
		RETURNING ` + notificationColumns

	var lat, lng *float64
	if n.Coords != nil {
		lat, lng = &n.Coords.Lat, &n.Coords.Lng
	}
	triggered := n.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}
	args := pgx.NamedArgs{
		"trip_id":       n.TripID,
		"type":          string(n.Type),
		"severity":      string(n.Severity),
		"priority":      n.Severity.Priority(),
		"message":       n.Message,
		"action":        string(n.Action),
		"place_id":      n.PlaceID,
		"lat":           lat,
		"lng":           lng,
		"triggered_at":  triggered,
		"scheduled_for": n.ScheduledFor,
		"expires_at":    n.ExpiresAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanNotification(row)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a notification by primary key.
func (r *pgNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	const q = `SELECT ` + notificationColumns + ` FROM notifications WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanNotification(row)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListActive returns undismissed, unexpired, due notifications for a trip.
// Ordering here is creation order; display sorting (severity, recency) is
// the service layer's concern.
func (r *pgNotificationRepo) ListActive(ctx context.Context, tripID uuid.UUID, now time.Time) ([]domain.Notification, error) {
	const q = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE trip_id = @trip_id
		  AND dismissed = false
		  AND (expires_at IS NULL OR expires_at > @now)
		  AND (scheduled_for IS NULL OR scheduled_for <= @now)
		ORDER BY triggered_at`

	return r.queryNotifications(ctx, q, pgx.NamedArgs{"trip_id": tripID, "now": now})
}

// ListDismissed returns the most recently dismissed notifications, capped.
func (r *pgNotificationRepo) ListDismissed(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Notification, error) {
	const q = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE trip_id = @trip_id AND dismissed = true
		ORDER BY dismissed_at DESC
		LIMIT @limit`

	return r.queryNotifications(ctx, q, pgx.NamedArgs{"trip_id": tripID, "limit": limit})
}

func (r *pgNotificationRepo) queryNotifications(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Notification, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo: query: %w", err)
	}
	defer rows.Close()

	var ns []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.NotificationRepo: scan: %w", err)
		}
		ns = append(ns, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo: rows: %w", err)
	}

	return ns, nil
}

// Dismiss marks the notification dismissed. The dismissed = false guard makes
// the second dismiss a clean no-op that preserves the original dismissed_at.
func (r *pgNotificationRepo) Dismiss(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `
		UPDATE notifications
		SET dismissed = true, dismissed_at = @at
		WHERE id = @id AND dismissed = false`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "at": at})
	if err != nil {
		return fmt.Errorf("repo.NotificationRepo.Dismiss: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either already dismissed (fine) or missing (not found).
		var exists bool
		err := r.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = @id)`,
			pgx.NamedArgs{"id": id}).Scan(&exists)
		if err != nil {
			return fmt.Errorf("repo.NotificationRepo.Dismiss: %w", err)
		}
		if !exists {
			return fmt.Errorf("repo.NotificationRepo.Dismiss: %w", domain.ErrNotFound)
		}
	}
	return nil
}

// DismissAll dismisses every undismissed notification of the trip.
func (r *pgNotificationRepo) DismissAll(ctx context.Context, tripID uuid.UUID, at time.Time) error {
	const q = `
		UPDATE notifications
		SET dismissed = true, dismissed_at = @at
		WHERE trip_id = @trip_id AND dismissed = false`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "at": at}); err != nil {
		return fmt.Errorf("repo.NotificationRepo.DismissAll: %w", err)
	}
	return nil
}

// RefreshExpiry extends an active notification instead of duplicating it.
func (r *pgNotificationRepo) RefreshExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time, triggeredAt time.Time) error {
	const q = `
		UPDATE notifications
		SET expires_at = @expires_at, triggered_at = @triggered_at
		WHERE id = @id AND dismissed = false`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "expires_at": expiresAt, "triggered_at": triggeredAt})
	if err != nil {
		return fmt.Errorf("repo.NotificationRepo.RefreshExpiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.NotificationRepo.RefreshExpiry: %w", domain.ErrNotFound)
	}
	return nil
}

// scanNotification maps a single database row into a domain.Notification.
func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n            domain.Notification
		id           pgtype.UUID
		tripID       pgtype.UUID
		typ          string
		severity     string
		action       string
		placeID      pgtype.UUID
		lat          pgtype.Float8
		lng          pgtype.Float8
		scheduledFor pgtype.Timestamptz
		expiresAt    pgtype.Timestamptz
		dismissedAt  pgtype.Timestamptz
	)

	err := s.Scan(&id, &tripID, &typ, &severity, &n.Priority, &n.Message, &action,
		&placeID, &lat, &lng, &n.TriggeredAt, &scheduledFor, &expiresAt,
		&n.Dismissed, &dismissedAt, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, err
	}

	n.ID = uuid.UUID(id.Bytes)
	n.TripID = uuid.UUID(tripID.Bytes)
	n.Type = domain.WarningType(typ)
	n.Severity = domain.Severity(severity)
	n.Action = domain.Action(action)
	if placeID.Valid {
		pid := uuid.UUID(placeID.Bytes)
		n.PlaceID = &pid
	}
	if lat.Valid && lng.Valid {
		n.Coords = &domain.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if scheduledFor.Valid {
		t := scheduledFor.Time
		n.ScheduledFor = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		n.ExpiresAt = &t
	}
	if dismissedAt.Valid {
		t := dismissedAt.Time
		n.DismissedAt = &t
	}

	return n, nil
}
