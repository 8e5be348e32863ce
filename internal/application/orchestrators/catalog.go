package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	serviceStore "coachhub/internal/adapters/storage/coachservice"
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/coachservice"
	"coachhub/internal/domain/court"
	"coachhub/internal/domain/sport"

	"github.com/google/uuid"
)

// Catalog errors
var (
	ErrServiceHasBookings = errors.New("service has upcoming bookings; it was deactivated instead of deleted")
)

// --- Coach services ---

// ServiceStoreForCatalog reads and writes coach services.
type ServiceStoreForCatalog interface {
	GetByID(ctx context.Context, id string) (coachservice.Service, error)
	Save(ctx context.Context, s coachservice.Service) error
	Delete(ctx context.Context, id string) error
}

// ActiveBookingCounter counts slot-holding bookings of a service.
type ActiveBookingCounter interface {
	CountActiveForService(ctx context.Context, serviceID string) (int, error)
}

// SaveServiceInput carries a new or edited service. An empty ID creates one.
type SaveServiceInput struct {
	Actor           Actor
	ID              string
	SportID         string
	Title           string
	Description     string
	DurationMinutes int
	PriceCents      int
	Active          bool
}

// SaveServiceDeps holds dependencies for SaveService.
type SaveServiceDeps struct {
	Services   ServiceStoreForCatalog
	Sports     SportLookup
	Audit      AuditStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSaveService creates or edits one of the actor's services.
// PRE: Actor is a coach
// POST: only the owning coach can edit a service
func ExecuteSaveService(ctx context.Context, input SaveServiceInput, deps SaveServiceDeps) (coachservice.Service, error) {
	if err := input.Actor.requireCoach(); err != nil {
		return coachservice.Service{}, err
	}
	svc := coachservice.Service{
		ID:        input.ID,
		CoachID:   input.Actor.ID,
		CreatedAt: nowOr(deps.Now),
	}
	action := audit.ActionCreate
	if input.ID != "" {
		existing, err := deps.Services.GetByID(ctx, input.ID)
		if err != nil {
			return coachservice.Service{}, err
		}
		if existing.CoachID != input.Actor.ID {
			return coachservice.Service{}, ErrForbidden
		}
		svc = existing
		action = audit.ActionUpdate
	} else {
		svc.ID = generateID(deps.GenerateID)
	}
	if _, err := deps.Sports.GetByID(ctx, input.SportID); err != nil {
		return coachservice.Service{}, fmt.Errorf("sport: %w", err)
	}

	svc.SportID = input.SportID
	svc.Title = strings.TrimSpace(input.Title)
	svc.Description = strings.TrimSpace(input.Description)
	svc.DurationMinutes = input.DurationMinutes
	svc.PriceCents = input.PriceCents
	svc.Active = input.Active
	if err := svc.Validate(); err != nil {
		return coachservice.Service{}, err
	}
	if err := deps.Services.Save(ctx, svc); err != nil {
		return coachservice.Service{}, err
	}
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryCatalog, action).WithResource("coach_service", svc.ID))
	return svc, nil
}

// DeleteServiceDeps holds dependencies for DeleteService.
type DeleteServiceDeps struct {
	Services ServiceStoreForCatalog
	Bookings ActiveBookingCounter
	Audit    AuditStore
}

// ExecuteDeleteService removes one of the actor's services. A service with
// active bookings is deactivated and ErrServiceHasBookings returned; one
// referenced only by past bookings is deactivated silently.
// PRE: Actor is the owning coach or an admin
// POST: returns deactivated=true when the row was kept
func ExecuteDeleteService(ctx context.Context, actor Actor, id string, deps DeleteServiceDeps) (bool, error) {
	if err := actor.requireSignedIn(); err != nil {
		return false, err
	}
	svc, err := deps.Services.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if svc.CoachID != actor.ID && !actor.IsAdmin() {
		return false, ErrForbidden
	}

	active, err := deps.Bookings.CountActiveForService(ctx, id)
	if err != nil {
		return false, err
	}
	if active > 0 {
		if err := deactivate(ctx, deps.Services, svc); err != nil {
			return false, err
		}
		return true, ErrServiceHasBookings
	}

	err = deps.Services.Delete(ctx, id)
	if errors.Is(err, serviceStore.ErrReferenced) {
		if err := deactivate(ctx, deps.Services, svc); err != nil {
			return false, err
		}
		recordAudit(ctx, deps.Audit, actor.event(audit.CategoryCatalog, audit.ActionUpdate).
			WithResource("coach_service", id).WithDescription("deactivated"))
		return true, nil
	}
	if err != nil {
		return false, err
	}
	recordAudit(ctx, deps.Audit, actor.event(audit.CategoryCatalog, audit.ActionDelete).WithResource("coach_service", id))
	return false, nil
}

func deactivate(ctx context.Context, store ServiceStoreForCatalog, svc coachservice.Service) error {
	if !svc.Active {
		return nil
	}
	svc.Active = false
	if err := store.Save(ctx, svc); err != nil {
		return fmt.Errorf("deactivate service: %w", err)
	}
	slog.Info("catalog_event", "event", "service_deactivated", "service_id", svc.ID)
	return nil
}

// --- Courts ---

// CourtStoreForCatalog reads and writes courts.
type CourtStoreForCatalog interface {
	GetByID(ctx context.Context, id string) (court.Court, error)
	Save(ctx context.Context, c court.Court) error
	Delete(ctx context.Context, id string) error
}

// SaveCourtInput carries a new or edited court. An empty ID creates one.
type SaveCourtInput struct {
	Actor   Actor
	ID      string
	Name    string
	Address string
	CityID  string
	SportID string
	Indoor  bool
}

// CourtDeps holds dependencies for the court use cases.
type CourtDeps struct {
	Courts     CourtStoreForCatalog
	Cities     CityLookup
	Sports     SportLookup
	Audit      AuditStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSaveCourt creates or edits a court.
// PRE: Actor is an admin
func ExecuteSaveCourt(ctx context.Context, input SaveCourtInput, deps CourtDeps) (court.Court, error) {
	if err := input.Actor.requireAdmin(); err != nil {
		return court.Court{}, err
	}
	c := court.Court{ID: input.ID, CreatedAt: nowOr(deps.Now)}
	action := audit.ActionCreate
	if input.ID != "" {
		existing, err := deps.Courts.GetByID(ctx, input.ID)
		if err != nil {
			return court.Court{}, err
		}
		c = existing
		action = audit.ActionUpdate
	} else {
		c.ID = generateID(deps.GenerateID)
	}
	c.Name = strings.TrimSpace(input.Name)
	c.Address = strings.TrimSpace(input.Address)
	c.CityID = input.CityID
	c.SportID = input.SportID
	c.Indoor = input.Indoor
	if err := c.Validate(); err != nil {
		return court.Court{}, err
	}
	if _, err := deps.Cities.GetByID(ctx, c.CityID); err != nil {
		return court.Court{}, fmt.Errorf("city: %w", err)
	}
	if _, err := deps.Sports.GetByID(ctx, c.SportID); err != nil {
		return court.Court{}, fmt.Errorf("sport: %w", err)
	}
	if err := deps.Courts.Save(ctx, c); err != nil {
		return court.Court{}, err
	}
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryCatalog, action).WithResource("court", c.ID))
	return c, nil
}

// ExecuteDeleteCourt removes a court that no booking uses.
// PRE: Actor is an admin
func ExecuteDeleteCourt(ctx context.Context, actor Actor, id string, deps CourtDeps) error {
	if err := actor.requireAdmin(); err != nil {
		return err
	}
	if _, err := deps.Courts.GetByID(ctx, id); err != nil {
		return err
	}
	if err := deps.Courts.Delete(ctx, id); err != nil {
		return err
	}
	recordAudit(ctx, deps.Audit, actor.event(audit.CategoryCatalog, audit.ActionDelete).WithResource("court", id))
	return nil
}

// --- Sports and cities ---

// SportStoreForCatalog saves sports.
type SportStoreForCatalog interface {
	Save(ctx context.Context, s sport.Sport) error
}

// ExecuteSaveSport adds a sport; the slug is derived from the name.
// PRE: Actor is an admin
func ExecuteSaveSport(ctx context.Context, actor Actor, name string, store SportStoreForCatalog, auditStore AuditStore) (sport.Sport, error) {
	if err := actor.requireAdmin(); err != nil {
		return sport.Sport{}, err
	}
	name = strings.TrimSpace(name)
	s := sport.Sport{ID: uuid.NewString(), Name: name, Slug: sport.Slugify(name)}
	if err := s.Validate(); err != nil {
		return sport.Sport{}, err
	}
	if err := store.Save(ctx, s); err != nil {
		return sport.Sport{}, err
	}
	recordAudit(ctx, auditStore, actor.event(audit.CategoryCatalog, audit.ActionCreate).WithResource("sport", s.ID).WithDescription(s.Name))
	return s, nil
}

// CityStoreForCatalog saves cities.
type CityStoreForCatalog interface {
	Save(ctx context.Context, c city.City) error
}

// ExecuteSaveCity adds a city.
// PRE: Actor is an admin
func ExecuteSaveCity(ctx context.Context, actor Actor, name, country string, store CityStoreForCatalog, auditStore AuditStore) (city.City, error) {
	if err := actor.requireAdmin(); err != nil {
		return city.City{}, err
	}
	c := city.City{ID: uuid.NewString(), Name: strings.TrimSpace(name), Country: strings.TrimSpace(country)}
	if err := c.Validate(); err != nil {
		return city.City{}, err
	}
	if err := store.Save(ctx, c); err != nil {
		return city.City{}, err
	}
	recordAudit(ctx, auditStore, actor.event(audit.CategoryCatalog, audit.ActionCreate).WithResource("city", c.ID).WithDescription(c.Label()))
	return c, nil
}

func generateID(gen func() string) string {
	if gen == nil {
		return uuid.NewString()
	}
	return gen()
}
