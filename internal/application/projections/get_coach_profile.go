package projections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coachhub/internal/adapters/storage"
	reviewStore "coachhub/internal/adapters/storage/review"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/coachservice"
	"coachhub/internal/domain/sport"
)

// RecentReviewLimit is how many reviews a profile page shows.
const RecentReviewLimit = 20

// CoachProfileView is everything the public profile page shows.
type CoachProfileView struct {
	Profile  coach.Profile                  `json:"profile"`
	City     *city.City                     `json:"city,omitempty"`
	Sports   []sport.Sport                  `json:"sports"`
	Services []coachservice.Service         `json:"services"`
	Reviews  []reviewStore.ReviewWithAuthor `json:"reviews"`
	IsOwner  bool                           `json:"is_owner"`
}

// GetCoachProfileDeps holds dependencies for GetCoachProfile.
type GetCoachProfileDeps struct {
	Coaches  CoachReader
	Services ServiceReader
	Sports   SportReader
	Cities   CityReader
	Reviews  ReviewReader
}

// QueryGetCoachProfile loads a coach's public profile.
// PRE: coachID is non-empty
// POST: unpublished profiles are reported as not found unless the viewer owns
// them or is an admin; the owner also sees inactive services
func QueryGetCoachProfile(ctx context.Context, coachID string, viewer Viewer, deps GetCoachProfileDeps) (CoachProfileView, error) {
	p, err := deps.Coaches.GetByUserID(ctx, coachID)
	if err != nil {
		return CoachProfileView{}, err
	}
	owner := viewer.ID != "" && viewer.ID == p.UserID
	if !p.Published && !owner && !viewer.IsAdmin() {
		return CoachProfileView{}, fmt.Errorf("coach %s %w", coachID, storage.ErrNotFound)
	}

	view := CoachProfileView{Profile: p, IsOwner: owner, Sports: []sport.Sport{}}
	if p.CityID != "" {
		c, err := deps.Cities.GetByID(ctx, p.CityID)
		switch {
		case err == nil:
			view.City = &c
		case errors.Is(err, storage.ErrNotFound):
			slog.Warn("profile_city_missing", "coach_id", p.UserID, "city_id", p.CityID)
		default:
			return CoachProfileView{}, err
		}
	}
	for _, id := range p.SportIDs {
		s, err := deps.Sports.GetByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return CoachProfileView{}, err
		}
		view.Sports = append(view.Sports, s)
	}

	view.Services, err = deps.Services.ListByCoach(ctx, p.UserID, !owner)
	if err != nil {
		return CoachProfileView{}, err
	}
	if view.Services == nil {
		view.Services = []coachservice.Service{}
	}
	view.Reviews, err = deps.Reviews.ListByCoach(ctx, p.UserID, RecentReviewLimit)
	if err != nil {
		return CoachProfileView{}, err
	}
	if view.Reviews == nil {
		view.Reviews = []reviewStore.ReviewWithAuthor{}
	}
	return view, nil
}
