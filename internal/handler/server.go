// Package handler implements the HTTP handlers for the Tomo API.
// All handlers are methods on Server. Methods are split into resource files
// (trip.go, expense.go, etc.) but all share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomo-travel/tomo/backend/internal/domain"
)

// The service interfaces are defined here, in the consumer package, following
// the Go convention: "accept interfaces, return concrete types". Handler
// tests inject mocks without touching the database or service layer.

// TripServicer defines the business operations the trip handlers depend on.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseServicer defines the expense and budget operations.
type ExpenseServicer interface {
	Create(ctx context.Context, expense domain.Expense) (domain.Expense, error)
	ListByTripID(ctx context.Context, tripID uuid.UUID, params domain.PaginationParams) ([]domain.Expense, error)
	Delete(ctx context.Context, tripID, expenseID uuid.UUID) error
	Summary(ctx context.Context, tripID uuid.UUID) (domain.BudgetSummary, error)
}

// PlaceServicer defines the saved-place operations.
type PlaceServicer interface {
	Create(ctx context.Context, place domain.Place) (domain.Place, error)
	GetByID(ctx context.Context, tripID, placeID uuid.UUID) (domain.Place, error)
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error)
	Update(ctx context.Context, place domain.Place) (domain.Place, error)
	Delete(ctx context.Context, tripID, placeID uuid.UUID) error
}

// ItineraryServicer defines the itinerary and activity operations.
type ItineraryServicer interface {
	Create(ctx context.Context, it domain.Itinerary) (domain.Itinerary, error)
	GetByID(ctx context.Context, tripID, itineraryID uuid.UUID) (domain.Itinerary, error)
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Itinerary, error)
	Delete(ctx context.Context, tripID, itineraryID uuid.UUID) error
	Days(ctx context.Context, tripID, itineraryID uuid.UUID) ([]domain.ItineraryDay, error)
	AddActivity(ctx context.Context, tripID, itineraryID uuid.UUID, a domain.Activity) (domain.Activity, error)
	UpdateActivity(ctx context.Context, tripID, itineraryID, activityID uuid.UUID, patch domain.ActivityPatch) (domain.Activity, error)
	RemoveActivity(ctx context.Context, tripID, itineraryID, activityID uuid.UUID) error
	ReorderActivities(ctx context.Context, tripID, itineraryID uuid.UUID, day time.Time, orderedIDs []uuid.UUID) ([]domain.Activity, error)
	ApplyIntent(ctx context.Context, tripID, itineraryID uuid.UUID, intent domain.Intent) (domain.Activity, error)
}

// NotificationServicer defines the notification lifecycle operations.
type NotificationServicer interface {
	Active(ctx context.Context, tripID uuid.UUID) ([]domain.Notification, error)
	Dismissed(ctx context.Context, tripID uuid.UUID) ([]domain.Notification, error)
	HasUnread(ctx context.Context, tripID uuid.UUID) (bool, error)
	Dismiss(ctx context.Context, id uuid.UUID) error
	DismissAll(ctx context.Context, tripID uuid.UUID) error
}

// ContextServicer defines the device context-report operations.
type ContextServicer interface {
	Report(ctx context.Context, tc domain.TripContext) (domain.TripContext, []domain.Notification, error)
	Get(ctx context.Context, tripID uuid.UUID) (domain.TripContext, error)
}

// ExportServicer produces the flat trip export rows.
type ExportServicer interface {
	Export(ctx context.Context, tripID uuid.UUID) ([]domain.ExportRow, error)
}

// TokenIssuer signs device tokens for the auth endpoint.
type TokenIssuer interface {
	Issue(deviceID string) (string, error)
}

// NotificationStream upgrades a request to a websocket subscribed to a
// trip's notifications. Implemented by ws.Hub.
type NotificationStream interface {
	Serve(w http.ResponseWriter, r *http.Request, tripID uuid.UUID) error
}

// Server holds the handler dependencies for all API endpoints.
// Methods are in resource-specific files but all operate on this struct.
type Server struct {
	trips         TripServicer
	expenses      ExpenseServicer
	places        PlaceServicer
	itineraries   ItineraryServicer
	notifications NotificationServicer
	contexts      ContextServicer
	exporter      ExportServicer
	tokens        TokenIssuer
	stream        NotificationStream
}

// NewServer constructs the Server with all its dependencies.
// tokens and stream may be nil in tests that do not exercise auth or the
// websocket endpoint.
func NewServer(
	trips TripServicer,
	expenses ExpenseServicer,
	places PlaceServicer,
	itineraries ItineraryServicer,
	notifications NotificationServicer,
	contexts ContextServicer,
	exporter ExportServicer,
	tokens TokenIssuer,
	stream NotificationStream,
) *Server {
	return &Server{
		trips:         trips,
		expenses:      expenses,
		places:        places,
		itineraries:   itineraries,
		notifications: notifications,
		contexts:      contexts,
		exporter:      exporter,
		tokens:        tokens,
		stream:        stream,
	}
}

// Routes registers every API route on a fresh chi router. authn guards the
// /trips subtree; /healthz and /auth/device stay public. Pass nil to mount
// the routes unguarded (tests do).
func (s *Server) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.Health)
	r.Post("/auth/device", s.IssueDeviceToken)

	r.Route("/trips", func(r chi.Router) {
		if authn != nil {
			r.Use(authn)
		}
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)

		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)

			r.Get("/budget", s.GetBudgetSummary)
			r.Get("/export", s.ExportTrip)
			r.Get("/ws", s.StreamNotifications)

			r.Put("/context", s.ReportContext)
			r.Get("/context", s.GetContext)

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", s.CreateExpense)
				r.Get("/", s.ListExpenses)
				r.Delete("/{expenseID}", s.DeleteExpense)
			})

			r.Route("/places", func(r chi.Router) {
				r.Post("/", s.CreatePlace)
				r.Get("/", s.ListPlaces)
				r.Get("/{placeID}", s.GetPlace)
				r.Put("/{placeID}", s.UpdatePlace)
				r.Delete("/{placeID}", s.DeletePlace)
			})

			r.Route("/itineraries", func(r chi.Router) {
				r.Post("/", s.CreateItinerary)
				r.Get("/", s.ListItineraries)

				r.Route("/{itineraryID}", func(r chi.Router) {
					r.Get("/", s.GetItinerary)
					r.Delete("/", s.DeleteItinerary)
					r.Get("/days", s.ListItineraryDays)
					r.Post("/activities", s.AddActivity)
					r.Patch("/activities/{activityID}", s.UpdateActivity)
					r.Delete("/activities/{activityID}", s.RemoveActivity)
					r.Post("/reorder", s.ReorderActivities)
					r.Post("/intents", s.ApplyIntent)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.ListActiveNotifications)
				r.Get("/dismissed", s.ListDismissedNotifications)
				r.Get("/unread", s.HasUnreadNotifications)
				r.Post("/dismiss-all", s.DismissAllNotifications)
				r.Post("/{notificationID}/dismiss", s.DismissNotification)
			})
		})
	})

	return r
}
