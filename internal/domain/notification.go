package domain

import (
	"time"

	"github.com/google/uuid"
)

// WarningType identifies which rule (or reminder source) produced a
// notification. At most one active notification of each warning type exists
// per trip at any time.
type WarningType string

const (
	WarnLastTrain   WarningType = "last_train"
	WarnClosingTime WarningType = "closing_time"
	WarnWeather     WarningType = "weather"
	WarnBudget      WarningType = "budget"
	WarnEnergy      WarningType = "energy"
	// WarnReminder marks scheduled activity reminders. Reminders are keyed
	// by activity, not deduplicated by type like rule warnings.
	WarnReminder WarningType = "reminder"
)

// Severity ranks how loudly a warning should surface.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityUrgent  Severity = "urgent"
)

// Priority maps a severity to a sortable rank: urgent > warning > info.
func (s Severity) Priority() int {
	switch s {
	case SeverityUrgent:
		return 3
	case SeverityWarning:
		return 2
	default:
		return 1
	}
}

// Action is the optional tap action attached to a warning.
type Action string

const (
	ActionNavigateHome Action = "navigate_home"
	ActionOpenBudget   Action = "open_budget"
	ActionOpenPlace    Action = "open_place"
)

// Warning is the output of a single rule evaluation: a transient, possibly
// time-limited alert derived from current trip context.
type Warning struct {
	Type      WarningType `json:"type"`
	Severity  Severity    `json:"severity"`
	Message   string      `json:"message"`
	Action    Action      `json:"action,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

// Notification is the stored, user-facing superset of a Warning.
// Dismissal is irreversible and never deletes — history is retained for the
// dismissed view. A notification with a future ScheduledFor is pending and
// excluded from the active view until that time passes.
type Notification struct {
	ID           uuid.UUID    `json:"id"`
	TripID       uuid.UUID    `json:"trip_id"`
	Type         WarningType  `json:"type"`
	Severity     Severity     `json:"severity"`
	Priority     int          `json:"priority"`
	Message      string       `json:"message"`
	Action       Action       `json:"action,omitempty"`
	PlaceID      *uuid.UUID   `json:"place_id,omitempty"`
	Coords       *Coordinates `json:"coords,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	TriggeredAt  time.Time    `json:"triggered_at"`
	ScheduledFor *time.Time   `json:"scheduled_for,omitempty"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`
	Dismissed    bool         `json:"dismissed"`
	DismissedAt  *time.Time   `json:"dismissed_at,omitempty"`
}

// IsActive reports whether the notification should appear in the active view
// at the given moment: not dismissed, not expired, and not scheduled for the
// future.
func (n Notification) IsActive(now time.Time) bool {
	if n.Dismissed {
		return false
	}
	if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
		return false
	}
	if n.ScheduledFor != nil && n.ScheduledFor.After(now) {
		return false
	}
	return true
}

// SortForDisplay orders notifications by severity (urgent first), breaking
// ties by most recently triggered. Insertion sort: display lists are short
// and the stable behavior is easy to reason about.
func SortForDisplay(ns []Notification) {
	for i := 1; i < len(ns); i++ {
		for j := i; j > 0 && displayBefore(ns[j], ns[j-1]); j-- {
			ns[j], ns[j-1] = ns[j-1], ns[j]
		}
	}
}

func displayBefore(a, b Notification) bool {
	if a.Severity.Priority() != b.Severity.Priority() {
		return a.Severity.Priority() > b.Severity.Priority()
	}
	return a.TriggeredAt.After(b.TriggeredAt)
}
