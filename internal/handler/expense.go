package handler

import (
	"net/http"
	"time"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// ExpenseRequest is the body of POST /trips/{tripID}/expenses.
// SpentAt defaults to "now" when omitted.
type ExpenseRequest struct {
	Amount   int64      `json:"amount" validate:"required,gt=0"`
	Category string     `json:"category"`
	Note     string     `json:"note"`
	SpentAt  *time.Time `json:"spent_at"`
}

// CreateExpense handles POST /trips/{tripID}/expenses.
func (s *Server) CreateExpense(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	var req ExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expense := domain.Expense{
		TripID:   tripID,
		Amount:   req.Amount,
		Category: req.Category,
		Note:     req.Note,
	}
	if req.SpentAt != nil {
		expense.SpentAt = *req.SpentAt
	}

	created, err := s.expenses.Create(r.Context(), expense)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListExpenses handles GET /trips/{tripID}/expenses.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListExpenses(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	expenses, err := s.expenses.ListByTripID(r.Context(), tripID, params)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": expenses,
		"pagination": map[string]int{
			"page":  params.Page,
			"limit": params.Limit,
		},
	})
}

// DeleteExpense handles DELETE /trips/{tripID}/expenses/{expenseID}.
func (s *Server) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}
	expenseID, ok := uuidParam(w, r, "expenseID", "expense")
	if !ok {
		return
	}

	if err := s.expenses.Delete(r.Context(), tripID, expenseID); err != nil {
		respondError(w, r, err, "expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBudgetSummary handles GET /trips/{tripID}/budget.
// Returns the derived budget view: total, daily allowance, spent today in
// the trip's timezone, and spent overall.
func (s *Server) GetBudgetSummary(w http.ResponseWriter, r *http.Request) {
	tripID, ok := uuidParam(w, r, "tripID", "trip")
	if !ok {
		return
	}

	summary, err := s.expenses.Summary(r.Context(), tripID)
	if err != nil {
		respondError(w, r, err, "trip")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
