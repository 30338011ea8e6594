package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
	"github.com/tomo-travel/tomo/backend/internal/repo"
)

// ExpenseService implements business logic for expenses and the derived
// budget summary. It holds the trip repo because every operation verifies
// the parent trip, and the summary needs the trip's budget and timezone.
type ExpenseService struct {
	trips    repo.TripRepo
	expenses repo.ExpenseRepo

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewExpenseService constructs an ExpenseService backed by the provided repos.
func NewExpenseService(trips repo.TripRepo, expenses repo.ExpenseRepo) *ExpenseService {
	return &ExpenseService{trips: trips, expenses: expenses, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *ExpenseService) WithClock(now func() time.Time) *ExpenseService {
	s.now = now
	return s
}

// Create validates the expense, verifies the parent trip exists, then persists.
// A zero SpentAt defaults to now. Returns domain.ErrValidation for a
// non-positive amount — invalid input never mutates state.
func (s *ExpenseService) Create(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	if _, err := s.trips.GetByID(ctx, expense.TripID); err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}
	if expense.Amount <= 0 {
		return domain.Expense{}, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if expense.SpentAt.IsZero() {
		expense.SpentAt = s.now()
	}
	result, err := s.expenses.Create(ctx, expense)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("service.ExpenseService.Create: %w", err)
	}
	return result, nil
}

// ListByTripID returns a trip's expenses, newest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ExpenseService) ListByTripID(ctx context.Context, tripID uuid.UUID, params domain.PaginationParams) ([]domain.Expense, error) {
	expenses, err := s.expenses.ListByTripID(ctx, tripID, params)
	if err != nil {
		return nil, fmt.Errorf("service.ExpenseService.ListByTripID: %w", err)
	}
	if expenses == nil {
		return []domain.Expense{}, nil
	}
	return expenses, nil
}

// Delete removes an expense by ID, scoped to the given trip.
func (s *ExpenseService) Delete(ctx context.Context, tripID, expenseID uuid.UUID) error {
	if err := s.expenses.Delete(ctx, tripID, expenseID); err != nil {
		return fmt.Errorf("service.ExpenseService.Delete: %w", err)
	}
	return nil
}

// Summary computes the trip's budget view: daily budget derived from the
// total, spend so far, and today's spend where "today" is the current
// calendar day in the trip's timezone.
func (s *ExpenseService) Summary(ctx context.Context, tripID uuid.UUID) (domain.BudgetSummary, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.BudgetSummary{}, fmt.Errorf("service.ExpenseService.Summary: %w", err)
	}

	from, to := domain.DayBounds(s.now(), trip.Location())
	spentToday, err := s.expenses.SumBetween(ctx, tripID, from, to)
	if err != nil {
		return domain.BudgetSummary{}, fmt.Errorf("service.ExpenseService.Summary: %w", err)
	}
	spentTotal, err := s.expenses.SumTotal(ctx, tripID)
	if err != nil {
		return domain.BudgetSummary{}, fmt.Errorf("service.ExpenseService.Summary: %w", err)
	}

	return domain.BudgetSummary{
		TotalBudget: trip.TotalBudget,
		DailyBudget: trip.DailyBudget(),
		SpentToday:  spentToday,
		SpentTotal:  spentTotal,
		Currency:    trip.Currency,
	}, nil
}
