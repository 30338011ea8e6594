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

// ExpenseRepo defines the persistence operations for Expenses.
type ExpenseRepo interface {
	// Create inserts a new expense and returns the persisted record.
	Create(ctx context.Context, expense domain.Expense) (domain.Expense, error)

	// ListByTripID returns a trip's expenses ordered by spent_at descending.
	ListByTripID(ctx context.Context, tripID uuid.UUID, params domain.PaginationParams) ([]domain.Expense, error)

	// SumBetween totals amounts of expenses whose spent_at falls in [from, to).
	SumBetween(ctx context.Context, tripID uuid.UUID, from, to time.Time) (int64, error)

	// SumTotal totals all amounts recorded against the trip.
	SumTotal(ctx context.Context, tripID uuid.UUID) (int64, error)

	// Delete removes an expense by ID, scoped to the given trip.
	// Returns domain.ErrNotFound if it does not exist under that trip.
	Delete(ctx context.Context, tripID, expenseID uuid.UUID) error
}

type pgExpenseRepo struct {
	db db
}

// NewExpenseRepo constructs an ExpenseRepo backed by the provided db connection.
func NewExpenseRepo(db db) ExpenseRepo {
	return &pgExpenseRepo{db: db}
}

const expenseColumns = `id, trip_id, amount, category, note, spent_at, created_at`

// Create inserts a new expense row and returns the full persisted record.
func (r *pgExpenseRepo) Create(ctx context.Context, expense domain.Expense) (domain.Expense, error) {
	const q = `
		INSERT INTO expenses (trip_id, amount, category, note, spent_at)
		VALUES (@trip_id, @amount, @category, @note, @spent_at)
		RETURNING ` + expenseColumns

	args := pgx.NamedArgs{
		"trip_id":  expense.TripID,
		"amount":   expense.Amount,
		"category": expense.Category,
		"note":     expense.Note,
		"spent_at": expense.SpentAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanExpense(row)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("repo.ExpenseRepo.Create: %w", err)
	}
	return result, nil
}

// ListByTripID returns the trip's expenses, newest spend first.
func (r *pgExpenseRepo) ListByTripID(ctx context.Context, tripID uuid.UUID, params domain.PaginationParams) ([]domain.Expense, error) {
	const q = `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE trip_id = @trip_id
		ORDER BY spent_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"trip_id": tripID,
		"limit":   params.Limit,
		"offset":  params.Offset(),
	})
	if err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExpenseRepo.ListByTripID: scan: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExpenseRepo.ListByTripID: rows: %w", err)
	}

	return expenses, nil
}

// SumBetween totals spend in the half-open interval [from, to).
// COALESCE turns the no-rows case into 0 rather than NULL.
func (r *pgExpenseRepo) SumBetween(ctx context.Context, tripID uuid.UUID, from, to time.Time) (int64, error) {
	const q = `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE trip_id = @trip_id AND spent_at >= @from AND spent_at < @to`

	var sum int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "from": from, "to": to}).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("repo.ExpenseRepo.SumBetween: %w", err)
	}
	return sum, nil
}

// SumTotal totals every expense recorded against the trip.
func (r *pgExpenseRepo) SumTotal(ctx context.Context, tripID uuid.UUID) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE trip_id = @trip_id`

	var sum int64
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID}).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("repo.ExpenseRepo.SumTotal: %w", err)
	}
	return sum, nil
}

// Delete removes an expense by primary key, scoped to the trip.
func (r *pgExpenseRepo) Delete(ctx context.Context, tripID, expenseID uuid.UUID) error {
	const q = `DELETE FROM expenses WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": expenseID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ExpenseRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanExpense maps a single database row into a domain.Expense.
func scanExpense(s scanner) (domain.Expense, error) {
	var (
		e      domain.Expense
		id     pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&id, &tripID, &e.Amount, &e.Category, &e.Note, &e.SpentAt, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Expense{}, domain.ErrNotFound
		}
		return domain.Expense{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.TripID = uuid.UUID(tripID.Bytes)

	return e, nil
}
