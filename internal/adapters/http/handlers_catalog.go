package web

import (
	"net/http"

	courtStore "coachhub/internal/adapters/storage/court"
	"coachhub/internal/application/orchestrators"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/court"
	"coachhub/internal/domain/sport"
)

// handleListSports handles GET /api/sports.
func handleListSports(w http.ResponseWriter, r *http.Request) {
	list, err := stores.Sports.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if list == nil {
		list = []sport.Sport{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateSport handles POST /api/sports (admin).
func handleCreateSport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := orchestrators.ExecuteSaveSport(r.Context(), actorFrom(r), req.Name, stores.Sports, stores.Audit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// handleListCities handles GET /api/cities.
func handleListCities(w http.ResponseWriter, r *http.Request) {
	list, err := stores.Cities.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	if list == nil {
		list = []city.City{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleCreateCity handles POST /api/cities (admin).
func handleCreateCity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := orchestrators.ExecuteSaveCity(r.Context(), actorFrom(r), req.Name, req.Country, stores.Cities, stores.Audit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleListCourts handles GET /api/courts?city_id=&sport_id=.
func handleListCourts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := stores.Courts.List(r.Context(), courtStore.ListFilter{
		CityID:  q.Get("city_id"),
		SportID: q.Get("sport_id"),
	})
	if err != nil {
		internalError(w, err)
		return
	}
	if list == nil {
		list = []court.Court{}
	}
	writeJSON(w, http.StatusOK, list)
}

func courtDeps() orchestrators.CourtDeps {
	return orchestrators.CourtDeps{
		Courts:     stores.Courts,
		Cities:     stores.Cities,
		Sports:     stores.Sports,
		Audit:      stores.Audit,
		GenerateID: generateID,
		Now:        now,
	}
}

type saveCourtRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	CityID  string `json:"city_id"`
	SportID string `json:"sport_id"`
	Indoor  bool   `json:"indoor"`
}

// handleSaveCourt handles POST /api/courts (admin). A body with an id updates.
func handleSaveCourt(w http.ResponseWriter, r *http.Request) {
	var req saveCourtRequest
	if err := strictDecode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := orchestrators.ExecuteSaveCourt(r.Context(), orchestrators.SaveCourtInput{
		Actor:   actorFrom(r),
		ID:      req.ID,
		Name:    req.Name,
		Address: req.Address,
		CityID:  req.CityID,
		SportID: req.SportID,
		Indoor:  req.Indoor,
	}, courtDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if req.ID != "" {
		status = http.StatusOK
	}
	writeJSON(w, status, c)
}

// handleDeleteCourt handles DELETE /api/courts/{id} (admin).
func handleDeleteCourt(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteCourt(r.Context(), actorFrom(r), r.PathValue("id"), courtDeps()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
