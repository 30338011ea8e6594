package domain

// Pagination defaults for list endpoints. Expense lists are the only
// unbounded collection today (a long trip accumulates hundreds of rows);
// trips, places, and itineraries are small enough to return whole.
const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// PaginationParams is the page window an expense list request asks for.
// Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams normalizes optional ?page= and ?limit= query values.
// Nil or out-of-range values fall back to the defaults; the limit is capped
// so a device cannot ask for the whole expense history in one response.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: defaultPage, Limit: defaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, maxLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
