package web

import (
	"net/http"

	coachStore "coachhub/internal/adapters/storage/coach"
	"coachhub/internal/application/listutil"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/application/projections"
	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/coachservice"
	"coachhub/internal/domain/timeoff"
)

// searchQueryFrom reads the coach search parameters shared by the API and
// the listing page.
func searchQueryFrom(r *http.Request) projections.SearchCoachesQuery {
	q := r.URL.Query()
	return projections.SearchCoachesQuery{
		SportSlug:    q.Get("sport"),
		CityID:       q.Get("city_id"),
		Text:         q.Get("q"),
		MaxRateCents: listutil.ParseInt(q, "max_rate_cents"),
		MinRating:    listutil.ParseFloat(q, "min_rating"),
		Sort:         listutil.ParseChoice(q, "sort", projections.SortOptions, coachStore.SortRating),
		Page:         listutil.ParsePageParams(q),
	}
}

// handleSearchCoaches handles GET /api/coaches.
func handleSearchCoaches(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QuerySearchCoaches(r.Context(), searchQueryFrom(r), stores.Coaches)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func coachProfileDeps() projections.GetCoachProfileDeps {
	return projections.GetCoachProfileDeps{
		Coaches:  stores.Coaches,
		Services: stores.Services,
		Sports:   stores.Sports,
		Cities:   stores.Cities,
		Reviews:  stores.Reviews,
	}
}

// handleGetCoach handles GET /api/coaches/{id}.
func handleGetCoach(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetCoachProfile(r.Context(), r.PathValue("id"), viewerFrom(r), coachProfileDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleGetSlots handles GET /api/coaches/{id}/slots?service_id=&date=.
func handleGetSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slots, err := projections.QueryGetAvailableSlots(r.Context(), projections.AvailableSlotsQuery{
		CoachID:   r.PathValue("id"),
		ServiceID: q.Get("service_id"),
		Date:      q.Get("date"),
	}, projections.AvailableSlotsDeps{
		Coaches:      stores.Coaches,
		Services:     stores.Services,
		Availability: stores.Availability,
		TimeOff:      stores.TimeOff,
		Bookings:     stores.Bookings,
		Location:     location(),
		Now:          now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

type coachProfileRequest struct {
	DisplayName     string   `json:"display_name"`
	Bio             string   `json:"bio"`
	CityID          string   `json:"city_id"`
	SportIDs        []string `json:"sport_ids"`
	HourlyRateCents int      `json:"hourly_rate_cents"`
	YearsExperience int      `json:"years_experience"`
	AvatarURL       string   `json:"avatar_url"`
}

// handleUpdateCoachProfile handles PUT /api/coach/profile.
func handleUpdateCoachProfile(w http.ResponseWriter, r *http.Request) {
	var req coachProfileRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := orchestrators.ExecuteUpdateCoachProfile(r.Context(), orchestrators.UpdateCoachProfileInput{
		Actor:           actorFrom(r),
		DisplayName:     req.DisplayName,
		Bio:             req.Bio,
		CityID:          req.CityID,
		SportIDs:        req.SportIDs,
		HourlyRateCents: req.HourlyRateCents,
		YearsExperience: req.YearsExperience,
		AvatarURL:       req.AvatarURL,
	}, orchestrators.UpdateCoachProfileDeps{
		Coaches: stores.Coaches,
		Cities:  stores.Cities,
		Sports:  stores.Sports,
		Audit:   stores.Audit,
		Now:     now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePublishCoach handles POST /api/coach/publish {published}.
func handlePublishCoach(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Published bool `json:"published"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := orchestrators.ExecuteSetCoachPublished(r.Context(), actorFrom(r), req.Published, orchestrators.SetCoachPublishedDeps{
		Coaches:  stores.Coaches,
		Services: stores.Services,
		Audit:    stores.Audit,
		Now:      now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// requireCoachSession answers 401/403 unless the caller is a coach.
func requireCoachSession(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return "", false
	}
	if !actorFrom(r).IsCoach() {
		http.Error(w, "coach account required", http.StatusForbidden)
		return "", false
	}
	return sess.UserID, true
}

// handleListOwnServices handles GET /api/coach/services, inactive ones included.
func handleListOwnServices(w http.ResponseWriter, r *http.Request) {
	coachID, ok := requireCoachSession(w, r)
	if !ok {
		return
	}
	list, err := stores.Services.ListByCoach(r.Context(), coachID, false)
	if err != nil {
		internalError(w, err)
		return
	}
	if list == nil {
		list = []coachservice.Service{}
	}
	writeJSON(w, http.StatusOK, list)
}

type saveServiceRequest struct {
	ID              string `json:"id"`
	SportID         string `json:"sport_id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int    `json:"price_cents"`
	Active          *bool  `json:"active"`
}

// handleSaveService handles POST /api/coach/services. A body with an id
// updates; active defaults to true.
func handleSaveService(w http.ResponseWriter, r *http.Request) {
	var req saveServiceRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	svc, err := orchestrators.ExecuteSaveService(r.Context(), orchestrators.SaveServiceInput{
		Actor:           actorFrom(r),
		ID:              req.ID,
		SportID:         req.SportID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		Active:          active,
	}, orchestrators.SaveServiceDeps{
		Services:   stores.Services,
		Sports:     stores.Sports,
		Audit:      stores.Audit,
		GenerateID: generateID,
		Now:        now,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if req.ID != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, svc)
}

// handleDeleteService handles DELETE /api/coach/services/{id}.
func handleDeleteService(w http.ResponseWriter, r *http.Request) {
	deactivated, err := orchestrators.ExecuteDeleteService(r.Context(), actorFrom(r), r.PathValue("id"), orchestrators.DeleteServiceDeps{
		Services: stores.Services,
		Bookings: stores.Bookings,
		Audit:    stores.Audit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if deactivated {
		writeJSON(w, http.StatusOK, map[string]bool{"deactivated": true})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetAvailability handles GET /api/coach/availability.
func handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	coachID, ok := requireCoachSession(w, r)
	if !ok {
		return
	}
	windows, err := stores.Availability.ListByCoach(r.Context(), coachID)
	if err != nil {
		internalError(w, err)
		return
	}
	if windows == nil {
		windows = []availability.Window{}
	}
	writeJSON(w, http.StatusOK, windows)
}

type windowRequest struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// handleSetAvailability handles PUT /api/coach/availability, replacing the week.
func handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Windows []windowRequest `json:"windows"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	windows := make([]availability.Window, 0, len(req.Windows))
	for _, wr := range req.Windows {
		windows = append(windows, availability.Window{Day: wr.Day, StartTime: wr.StartTime, EndTime: wr.EndTime})
	}
	saved, err := orchestrators.ExecuteSetAvailability(r.Context(), actorFrom(r), windows, orchestrators.SetAvailabilityDeps{
		Availability: stores.Availability,
		Audit:        stores.Audit,
		GenerateID:   generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func timeOffDeps() orchestrators.TimeOffDeps {
	return orchestrators.TimeOffDeps{TimeOff: stores.TimeOff, Audit: stores.Audit, GenerateID: generateID}
}

// handleListTimeOff handles GET /api/coach/time-off.
func handleListTimeOff(w http.ResponseWriter, r *http.Request) {
	coachID, ok := requireCoachSession(w, r)
	if !ok {
		return
	}
	list, err := stores.TimeOff.ListByCoach(r.Context(), coachID)
	if err != nil {
		internalError(w, err)
		return
	}
	if list == nil {
		list = []timeoff.TimeOff{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleAddTimeOff handles POST /api/coach/time-off {start_date, end_date, reason}.
func handleAddTimeOff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Reason    string `json:"reason"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	t, err := orchestrators.ExecuteAddTimeOff(r.Context(), orchestrators.AddTimeOffInput{
		Actor:     actorFrom(r),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	}, timeOffDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleDeleteTimeOff handles DELETE /api/coach/time-off/{id}.
func handleDeleteTimeOff(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteTimeOff(r.Context(), actorFrom(r), r.PathValue("id"), timeOffDeps()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
