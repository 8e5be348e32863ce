package web

import (
	"errors"
	"net/http"

	"coachhub/internal/adapters/drafts"
	"coachhub/internal/application/listutil"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/application/projections"
	"coachhub/internal/domain/draft"
	"coachhub/internal/domain/user"
)

type createBookingRequest struct {
	CoachID   string `json:"coach_id"`
	ServiceID string `json:"service_id"`
	CourtID   string `json:"court_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Notes     string `json:"notes"`
}

func createBookingDeps() orchestrators.CreateBookingDeps {
	deps := orchestrators.CreateBookingDeps{
		Users:        stores.Users,
		Coaches:      stores.Coaches,
		Services:     stores.Services,
		Courts:       stores.Courts,
		Availability: stores.Availability,
		TimeOff:      stores.TimeOff,
		Bookings:     stores.Bookings,
		Notifier:     app.Notifier,
		Audit:        stores.Audit,
		Location:     location(),
		GenerateID:   generateID,
		Now:          now,
	}
	if app.Drafts != nil {
		deps.Drafts = app.Drafts
	}
	return deps
}

// handleCreateBooking handles POST /api/bookings.
func handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := orchestrators.ExecuteCreateBooking(r.Context(), orchestrators.CreateBookingInput{
		Actor:     actorFrom(r),
		CoachID:   req.CoachID,
		ServiceID: req.ServiceID,
		CourtID:   req.CourtID,
		Date:      req.Date,
		StartTime: req.StartTime,
		Notes:     req.Notes,
	}, createBookingDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// handleListBookings handles GET /api/bookings?status=&coach_id=&student_id=&from=&to=&page=.
func handleListBookings(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	q := r.URL.Query()
	rng, err := listutil.ParseDateRange(q)
	if err != nil {
		writeError(w, err)
		return
	}
	page, err := projections.QueryListBookings(r.Context(), projections.ListBookingsQuery{
		Status:    q.Get("status"),
		CoachID:   q.Get("coach_id"),
		StudentID: q.Get("student_id"),
		Range:     rng,
		Page:      listutil.ParsePageParams(q),
	}, viewerFrom(r), stores.Bookings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleGetBooking handles GET /api/bookings/{id}.
func handleGetBooking(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	b, err := projections.QueryGetBooking(r.Context(), r.PathValue("id"), viewerFrom(r), stores.Bookings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleBookingAction handles POST /api/bookings/{id}/{action} for confirm,
// decline, cancel and complete. The body may carry a reason.
func handleBookingAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := strictDecode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	b, err := orchestrators.ExecuteChangeBookingStatus(r.Context(), orchestrators.ChangeBookingStatusInput{
		Actor:     actorFrom(r),
		BookingID: r.PathValue("id"),
		Action:    r.PathValue("action"),
		Reason:    req.Reason,
	}, orchestrators.ChangeBookingStatusDeps{
		Bookings: stores.Bookings,
		Users:    stores.Users,
		Services: stores.Services,
		Notifier: app.Notifier,
		Audit:    stores.Audit,
		Location: location(),
		Now:      now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleSubmitReview handles POST /api/bookings/{id}/review {rating, comment}.
func handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	rv, err := orchestrators.ExecuteSubmitReview(r.Context(), orchestrators.SubmitReviewInput{
		Actor:     actorFrom(r),
		BookingID: r.PathValue("id"),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}, orchestrators.SubmitReviewDeps{
		Bookings:   stores.Bookings,
		Reviews:    stores.Reviews,
		Coaches:    stores.Coaches,
		Audit:      stores.Audit,
		GenerateID: generateID,
		Now:        now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

// draftStore answers 503 when drafts are not configured.
func draftStore(w http.ResponseWriter) (drafts.Store, bool) {
	if app.Drafts == nil {
		http.Error(w, "drafts unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return app.Drafts, true
}

// handleGetDraft handles GET /api/booking-draft.
func handleGetDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	store, ok := draftStore(w)
	if !ok {
		return
	}
	d, err := store.Get(r.Context(), sess.UserID)
	if errors.Is(err, drafts.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handlePutDraft handles PUT /api/booking-draft, replacing the saved draft.
func handlePutDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	store, ok := draftStore(w)
	if !ok {
		return
	}
	var d draft.Draft
	if err := strictDecode(w, r, &d); err != nil {
		writeError(w, err)
		return
	}
	if err := d.Validate(); err != nil {
		writeError(w, err)
		return
	}
	d.UpdatedAt = now()
	if err := store.Put(r.Context(), sess.UserID, d); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDraft handles DELETE /api/booking-draft.
func handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	store, ok := draftStore(w)
	if !ok {
		return
	}
	if err := store.Delete(r.Context(), sess.UserID); err != nil {
		internalError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func dashboardDeps() projections.DashboardDeps {
	return projections.DashboardDeps{
		Bookings: stores.Bookings,
		Earnings: stores.Bookings,
		Location: location(),
		Now:      now,
	}
}

// handleAPIDashboard handles GET /api/dashboard. Coaches get the coach view,
// everyone else the student view.
func handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if sess.Role == user.RoleCoach {
		d, err := projections.QueryGetCoachDashboard(r.Context(), sess.UserID, dashboardDeps())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
		return
	}
	d, err := projections.QueryGetStudentDashboard(r.Context(), sess.UserID, dashboardDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
