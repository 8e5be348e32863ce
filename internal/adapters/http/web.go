package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"coachhub/internal/adapters/drafts"
	"coachhub/internal/adapters/http/middleware"
	"coachhub/internal/adapters/http/perf"
	"coachhub/internal/adapters/identity"
	"coachhub/internal/adapters/metrics"
	auditStore "coachhub/internal/adapters/storage/audit"
	availabilityStore "coachhub/internal/adapters/storage/availability"
	bookingStore "coachhub/internal/adapters/storage/booking"
	cityStore "coachhub/internal/adapters/storage/city"
	coachStore "coachhub/internal/adapters/storage/coach"
	serviceStore "coachhub/internal/adapters/storage/coachservice"
	courtStore "coachhub/internal/adapters/storage/court"
	outboxStore "coachhub/internal/adapters/storage/outbox"
	reviewStore "coachhub/internal/adapters/storage/review"
	sportStore "coachhub/internal/adapters/storage/sport"
	timeoffStore "coachhub/internal/adapters/storage/timeoff"
	userStore "coachhub/internal/adapters/storage/user"
	"coachhub/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	Users        userStore.Store
	Coaches      coachStore.Store
	Services     serviceStore.Store
	Sports       sportStore.Store
	Cities       cityStore.Store
	Courts       courtStore.Store
	Availability availabilityStore.Store
	TimeOff      timeoffStore.Store
	Bookings     bookingStore.Store
	Reviews      reviewStore.Store
	Audit        auditStore.Store
	Outbox       outboxStore.Store
}

// Pinger checks the database connection for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires the HTTP layer to the rest of the process.
type Options struct {
	Stores   *Stores
	Identity identity.Provider
	Notifier *orchestrators.Notifier
	Drafts   drafts.Store
	Outbox   *orchestrators.OutboxProcessor
	Perf     *perf.Collector
	DB       Pinger
	Sessions *middleware.SessionStore
	Limiter  *middleware.RateLimiter

	Location       *time.Location
	CSRFKey        []byte
	Secure         bool
	TrustedOrigins []string
	SlowRequestMs  int
	Now            func() time.Time
}

// Globals set by NewMux.
var (
	stores        *Stores
	sessions      *middleware.SessionStore
	perfCollector *perf.Collector
	app           Options
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

func now() time.Time {
	if app.Now != nil {
		return app.Now()
	}
	return timeNow()
}

func location() *time.Location {
	if app.Location == nil {
		return time.UTC
	}
	return app.Location
}

// NewMux wires HTTP handlers for the app.
// PRE: opts.Stores, opts.Identity and opts.CSRFKey (32 bytes) are set
// POST: the returned handler serves pages, the JSON API, /metrics and /healthz
func NewMux(opts Options) http.Handler {
	app = opts
	stores = opts.Stores
	perfCollector = opts.Perf
	sessions = opts.Sessions
	if sessions == nil {
		sessions = middleware.NewSessionStore()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(20)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", handleHealth)
	registerAPIRoutes(mux)
	registerPageRoutes(mux)

	bearer := &bearerAuth{identity: opts.Identity, users: opts.Stores.Users}

	// Outermost first: SecurityHeaders -> CSRF -> Auth -> RateLimit -> Timing -> Prometheus -> Mux
	return middleware.Chain(mux,
		metrics.InstrumentHandler,
		middleware.Timing(opts.Perf, opts.SlowRequestMs),
		middleware.RateLimit(limiter),
		middleware.Auth(sessions, bearer),
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{Secure: opts.Secure, TrustedOrigins: opts.TrustedOrigins}),
		middleware.SecurityHeaders,
	)
}

// registerAPIRoutes maps the JSON API.
func registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", handleAPISignUp)
	mux.HandleFunc("POST /api/auth/login", handleAPILogin)
	mux.HandleFunc("POST /api/auth/logout", handleAPILogout)
	mux.HandleFunc("POST /api/auth/verify", handleAPIVerify)
	mux.HandleFunc("POST /api/auth/resend", handleAPIResend)
	mux.HandleFunc("GET /api/me", handleGetMe)
	mux.HandleFunc("PUT /api/me", handleUpdateMe)

	mux.HandleFunc("GET /api/sports", handleListSports)
	mux.HandleFunc("POST /api/sports", handleCreateSport)
	mux.HandleFunc("GET /api/cities", handleListCities)
	mux.HandleFunc("POST /api/cities", handleCreateCity)
	mux.HandleFunc("GET /api/courts", handleListCourts)
	mux.HandleFunc("POST /api/courts", handleSaveCourt)
	mux.HandleFunc("DELETE /api/courts/{id}", handleDeleteCourt)

	mux.HandleFunc("GET /api/coaches", handleSearchCoaches)
	mux.HandleFunc("GET /api/coaches/{id}", handleGetCoach)
	mux.HandleFunc("GET /api/coaches/{id}/slots", handleGetSlots)
	mux.HandleFunc("PUT /api/coach/profile", handleUpdateCoachProfile)
	mux.HandleFunc("POST /api/coach/publish", handlePublishCoach)
	mux.HandleFunc("GET /api/coach/services", handleListOwnServices)
	mux.HandleFunc("POST /api/coach/services", handleSaveService)
	mux.HandleFunc("DELETE /api/coach/services/{id}", handleDeleteService)
	mux.HandleFunc("GET /api/coach/availability", handleGetAvailability)
	mux.HandleFunc("PUT /api/coach/availability", handleSetAvailability)
	mux.HandleFunc("GET /api/coach/time-off", handleListTimeOff)
	mux.HandleFunc("POST /api/coach/time-off", handleAddTimeOff)
	mux.HandleFunc("DELETE /api/coach/time-off/{id}", handleDeleteTimeOff)

	mux.HandleFunc("POST /api/bookings", handleCreateBooking)
	mux.HandleFunc("GET /api/bookings", handleListBookings)
	mux.HandleFunc("GET /api/bookings/{id}", handleGetBooking)
	mux.HandleFunc("POST /api/bookings/{id}/review", handleSubmitReview)
	mux.HandleFunc("POST /api/bookings/{id}/{action}", handleBookingAction)
	mux.HandleFunc("GET /api/booking-draft", handleGetDraft)
	mux.HandleFunc("PUT /api/booking-draft", handlePutDraft)
	mux.HandleFunc("DELETE /api/booking-draft", handleDeleteDraft)
	mux.HandleFunc("GET /api/dashboard", handleAPIDashboard)

	mux.HandleFunc("GET /api/admin/users", handleAdminListUsers)
	mux.HandleFunc("POST /api/admin/users", handleAdminProvisionUser)
	mux.HandleFunc("GET /api/admin/audit", handleAdminAudit)
	mux.HandleFunc("GET /api/admin/outbox", handleAdminListOutbox)
	mux.HandleFunc("POST /api/admin/outbox/{id}/{action}", handleAdminOutboxAction)
	mux.HandleFunc("GET /api/admin/perf", handleAdminPerf)
}

// handleHealth reports liveness and database reachability.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if app.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.DB.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
