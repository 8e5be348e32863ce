package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/sport"
	"coachhub/internal/domain/user"
)

// UserStoreForUpdate loads and saves profiles.
type UserStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	Save(ctx context.Context, u user.User) error
}

// CityLookup resolves city ids.
type CityLookup interface {
	GetByID(ctx context.Context, id string) (city.City, error)
}

// SportLookup resolves sport ids.
type SportLookup interface {
	GetByID(ctx context.Context, id string) (sport.Sport, error)
}

// --- Update Me ---

// UpdateMeInput carries the editable profile fields.
type UpdateMeInput struct {
	Actor    Actor
	FullName string
	Phone    string
	CityID   string
}

// UpdateMeDeps holds dependencies for UpdateMe.
type UpdateMeDeps struct {
	Users  UserStoreForUpdate
	Cities CityLookup
	Audit  AuditStore
	Now    func() time.Time
}

// ExecuteUpdateMe updates the signed-in user's own profile.
// PRE: Actor is signed in
// POST: name, phone and city are replaced; email and role never change here
func ExecuteUpdateMe(ctx context.Context, input UpdateMeInput, deps UpdateMeDeps) (user.User, error) {
	if err := input.Actor.requireSignedIn(); err != nil {
		return user.User{}, err
	}
	u, err := deps.Users.GetByID(ctx, input.Actor.ID)
	if err != nil {
		return user.User{}, err
	}
	if input.CityID != "" {
		if _, err := deps.Cities.GetByID(ctx, input.CityID); err != nil {
			return user.User{}, fmt.Errorf("city: %w", err)
		}
	}
	u.FullName = strings.TrimSpace(input.FullName)
	u.Phone = strings.TrimSpace(input.Phone)
	u.CityID = input.CityID
	u.UpdatedAt = nowOr(deps.Now)
	if err := u.Validate(); err != nil {
		return user.User{}, err
	}
	if err := deps.Users.Save(ctx, u); err != nil {
		return user.User{}, err
	}
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryAccount, audit.ActionUpdate).WithResource("user", u.ID))
	return u, nil
}

// --- Coach profile ---

// CoachStoreForUpdate loads and saves coach listings.
type CoachStoreForUpdate interface {
	GetByUserID(ctx context.Context, userID string) (coach.Profile, error)
	Save(ctx context.Context, p coach.Profile) error
}

// ActiveServiceCounter counts a coach's active services.
type ActiveServiceCounter interface {
	CountActive(ctx context.Context, coachID string) (int, error)
}

// UpdateCoachProfileInput carries the editable listing fields.
type UpdateCoachProfileInput struct {
	Actor           Actor
	DisplayName     string
	Bio             string
	CityID          string
	SportIDs        []string
	HourlyRateCents int
	YearsExperience int
	AvatarURL       string
}

// UpdateCoachProfileDeps holds dependencies for UpdateCoachProfile.
type UpdateCoachProfileDeps struct {
	Coaches CoachStoreForUpdate
	Cities  CityLookup
	Sports  SportLookup
	Audit   AuditStore
	Now     func() time.Time
}

// ExecuteUpdateCoachProfile edits the actor's own coach listing.
// PRE: Actor is a coach
// POST: publication state and rating summary are untouched
func ExecuteUpdateCoachProfile(ctx context.Context, input UpdateCoachProfileInput, deps UpdateCoachProfileDeps) (coach.Profile, error) {
	if err := input.Actor.requireCoach(); err != nil {
		return coach.Profile{}, err
	}
	p, err := deps.Coaches.GetByUserID(ctx, input.Actor.ID)
	if err != nil {
		return coach.Profile{}, err
	}
	if input.CityID != "" {
		if _, err := deps.Cities.GetByID(ctx, input.CityID); err != nil {
			return coach.Profile{}, fmt.Errorf("city: %w", err)
		}
	}
	for _, id := range input.SportIDs {
		if _, err := deps.Sports.GetByID(ctx, id); err != nil {
			return coach.Profile{}, fmt.Errorf("sport %s: %w", id, err)
		}
	}

	p.DisplayName = strings.TrimSpace(input.DisplayName)
	p.Bio = strings.TrimSpace(input.Bio)
	p.CityID = input.CityID
	p.SportIDs = input.SportIDs
	p.HourlyRateCents = input.HourlyRateCents
	p.YearsExperience = input.YearsExperience
	p.AvatarURL = strings.TrimSpace(input.AvatarURL)
	p.UpdatedAt = nowOr(deps.Now)
	if err := p.Validate(); err != nil {
		return coach.Profile{}, err
	}
	if err := deps.Coaches.Save(ctx, p); err != nil {
		return coach.Profile{}, err
	}
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryCoach, audit.ActionUpdate).WithResource("coach_profile", p.UserID))
	return p, nil
}

// SetCoachPublishedDeps holds dependencies for SetCoachPublished.
type SetCoachPublishedDeps struct {
	Coaches  CoachStoreForUpdate
	Services ActiveServiceCounter
	Audit    AuditStore
	Now      func() time.Time
}

// ExecuteSetCoachPublished lists or hides the actor's coach profile.
// PRE: Actor is a coach
// POST: publishing requires coach.CanPublish; hiding always succeeds
func ExecuteSetCoachPublished(ctx context.Context, actor Actor, published bool, deps SetCoachPublishedDeps) (coach.Profile, error) {
	if err := actor.requireCoach(); err != nil {
		return coach.Profile{}, err
	}
	p, err := deps.Coaches.GetByUserID(ctx, actor.ID)
	if err != nil {
		return coach.Profile{}, err
	}
	if published {
		active, err := deps.Services.CountActive(ctx, actor.ID)
		if err != nil {
			return coach.Profile{}, err
		}
		if err := p.CanPublish(active); err != nil {
			return coach.Profile{}, err
		}
	}
	if p.Published == published {
		return p, nil
	}
	p.Published = published
	p.UpdatedAt = nowOr(deps.Now)
	if err := deps.Coaches.Save(ctx, p); err != nil {
		return coach.Profile{}, err
	}
	desc := "unpublished"
	if published {
		desc = "published"
	}
	recordAudit(ctx, deps.Audit, actor.event(audit.CategoryCoach, audit.ActionUpdate).
		WithResource("coach_profile", p.UserID).
		WithDescription(desc))
	slog.Info("coach_event", "event", "publication_changed", "coach_id", p.UserID, "published", published)
	return p, nil
}
