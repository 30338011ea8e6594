// Package rules implements the contextual-warning engine: pure functions
// that map current trip state to a list of warnings. The package has no
// clock, no storage, and no I/O — everything it needs arrives in the Input,
// which is what makes the rules trivially table-testable.
package rules

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// Thresholds are the tunable trigger points for each rule.
// Use DefaultThresholds unless config overrides them.
type Thresholds struct {
	// BudgetWarnRatio is the spent/daily-budget fraction above which a
	// budget warning fires. Above 1.0 the warning escalates to urgent
	// regardless of this value.
	BudgetWarnRatio float64

	// LastTrainLead is how close the last train departure must be before
	// the last-train warning fires.
	LastTrainLead time.Duration

	// ClosingLead is how close a viewed place's closing time must be
	// before the closing-time warning fires.
	ClosingLead time.Duration

	// AwayFromHomeKm is the distance from home base beyond which the
	// traveller counts as "away" for the weather rule.
	AwayFromHomeKm float64
}

// DefaultThresholds returns the product defaults: 80% budget, 30 minute
// last-train and closing leads, 1 km away-from-home radius.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BudgetWarnRatio: 0.8,
		LastTrainLead:   30 * time.Minute,
		ClosingLead:     30 * time.Minute,
		AwayFromHomeKm:  1.0,
	}
}

// ViewedPlace is the closing-time rule's slice of context: the place open on
// screen, with its closing instant already resolved for today.
type ViewedPlace struct {
	ID        string
	Name      string
	ClosingAt time.Time
	IsOpen    bool
}

// Input is everything a single evaluation pass looks at. All fields are
// plain values; the evaluator never reaches out for more.
type Input struct {
	Now time.Time

	// Budget state. DailyBudget <= 0 disables the budget rule.
	DailyBudget int64
	SpentToday  int64

	// LastTrainAt is the departure of the last train home, nil when unknown.
	LastTrainAt *time.Time

	// Weather is the current snapshot and PrevCondition the condition from
	// the previous report; the rule fires only on the transition into rain.
	Weather       *domain.WeatherSnapshot
	PrevCondition domain.WeatherCondition

	// Location and HomeBase feed the away-from-home check.
	Location domain.Coordinates
	HomeBase domain.Coordinates

	// ViewedPlace is the place currently on screen, nil when none.
	ViewedPlace *ViewedPlace
}

// Evaluate runs every rule against the input and returns the warnings that
// fired. Each rule is independent; the result carries at most one warning
// per type. Evaluate is deterministic and has no side effects — dedup
// against already-active warnings is the caller's job (see Merge).
func Evaluate(in Input, th Thresholds) []domain.Warning {
	var warnings []domain.Warning
	if w, ok := budgetRule(in, th); ok {
		warnings = append(warnings, w)
	}
	if w, ok := lastTrainRule(in, th); ok {
		warnings = append(warnings, w)
	}
	if w, ok := closingTimeRule(in, th); ok {
		warnings = append(warnings, w)
	}
	if w, ok := weatherRule(in, th); ok {
		warnings = append(warnings, w)
	}
	return warnings
}

// budgetRule fires when today's spend crosses the warn ratio of the daily
// budget, escalating to urgent once the budget is blown.
func budgetRule(in Input, th Thresholds) (domain.Warning, bool) {
	if in.DailyBudget <= 0 {
		return domain.Warning{}, false
	}
	ratio := float64(in.SpentToday) / float64(in.DailyBudget)
	if ratio <= th.BudgetWarnRatio {
		return domain.Warning{}, false
	}

	severity := domain.SeverityWarning
	message := fmt.Sprintf("You've used %d%% of today's budget.", int(ratio*100))
	if ratio > 1.0 {
		severity = domain.SeverityUrgent
		message = "You're over today's budget."
	}

	// A budget warning is stale once the local day rolls over, but the
	// evaluator has no timezone; the caller stamps day-end expiry. Default
	// to a short refresh window so stale warnings age out regardless.
	expires := in.Now.Add(6 * time.Hour)
	return domain.Warning{
		Type:      domain.WarnBudget,
		Severity:  severity,
		Message:   message,
		Action:    domain.ActionOpenBudget,
		ExpiresAt: &expires,
	}, true
}

// lastTrainRule fires when the last train home departs within the lead
// window. The warning expires at departure — after that it is moot.
func lastTrainRule(in Input, th Thresholds) (domain.Warning, bool) {
	if in.LastTrainAt == nil {
		return domain.Warning{}, false
	}
	until := in.LastTrainAt.Sub(in.Now)
	if until <= 0 || until > th.LastTrainLead {
		return domain.Warning{}, false
	}

	expires := *in.LastTrainAt
	return domain.Warning{
		Type:      domain.WarnLastTrain,
		Severity:  domain.SeverityUrgent,
		Message:   fmt.Sprintf("Last train home leaves in %d minutes.", int(until.Minutes())),
		Action:    domain.ActionNavigateHome,
		ExpiresAt: &expires,
	}, true
}

// closingTimeRule fires when the place on screen is open and closes within
// the lead window.
func closingTimeRule(in Input, th Thresholds) (domain.Warning, bool) {
	p := in.ViewedPlace
	if p == nil || !p.IsOpen {
		return domain.Warning{}, false
	}
	until := p.ClosingAt.Sub(in.Now)
	if until <= 0 || until > th.ClosingLead {
		return domain.Warning{}, false
	}

	expires := p.ClosingAt
	return domain.Warning{
		Type:      domain.WarnClosingTime,
		Severity:  domain.SeverityWarning,
		Message:   fmt.Sprintf("%s closes in %d minutes.", p.Name, int(until.Minutes())),
		Action:    domain.ActionOpenPlace,
		ExpiresAt: &expires,
	}, true
}

// weatherRule fires on the transition into rain while the traveller is away
// from home base. Staying out in rain that was already falling at the last
// report does not re-trigger.
func weatherRule(in Input, th Thresholds) (domain.Warning, bool) {
	if in.Weather == nil || in.Weather.Condition != domain.WeatherRain {
		return domain.Warning{}, false
	}
	if in.PrevCondition == domain.WeatherRain {
		return domain.Warning{}, false
	}
	if in.HomeBase.IsZero() || in.Location.DistanceKm(in.HomeBase) <= th.AwayFromHomeKm {
		return domain.Warning{}, false
	}

	expires := in.Now.Add(2 * time.Hour)
	return domain.Warning{
		Type:      domain.WarnWeather,
		Severity:  domain.SeverityInfo,
		Message:   "Rain starting near you — grab an umbrella.",
		ExpiresAt: &expires,
	}, true
}

// Refresh names an existing notification whose expiry should be extended
// instead of creating a duplicate warning of the same type.
type Refresh struct {
	ID        uuid.UUID
	ExpiresAt *time.Time
}

// Merge reconciles freshly evaluated warnings with the active (undismissed,
// unexpired) notifications of the same trip. Re-evaluating identical context
// must not duplicate a warning: when an active notification of the same type
// exists, the fresh warning refreshes its expiry instead of creating a new
// row. Merge returns the warnings to create and the refreshes to apply.
func Merge(fresh []domain.Warning, active []domain.Notification) (create []domain.Warning, refresh []Refresh) {
	activeByType := make(map[domain.WarningType]domain.Notification, len(active))
	for _, n := range active {
		activeByType[n.Type] = n
	}

	for _, w := range fresh {
		if existing, ok := activeByType[w.Type]; ok {
			refresh = append(refresh, Refresh{ID: existing.ID, ExpiresAt: w.ExpiresAt})
			continue
		}
		create = append(create, w)
	}
	return create, refresh
}
