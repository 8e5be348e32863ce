package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"coachhub/internal/adapters/identity"
	"coachhub/internal/adapters/storage"
	"coachhub/internal/domain/account"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/sport"
	"coachhub/internal/domain/user"

	"github.com/google/uuid"
)

// SeedAdminIdentity is the identity service surface used to seed the admin.
type SeedAdminIdentity interface {
	AdminCreateUser(ctx context.Context, req identity.AdminCreateRequest) (identity.User, error)
	FindUserByEmail(ctx context.Context, email string) (identity.User, error)
	AdminDeleteUser(ctx context.Context, id string) error
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	Identity SeedAdminIdentity
	ProvisionDeps
	Now func() time.Time
}

// ExecuteSeedAdmin makes sure an admin profile exists for email.
// PRE: Database is migrated
// POST: an admin identity and profile exist for email; repeated calls do nothing
func ExecuteSeedAdmin(ctx context.Context, email, password string, deps SeedAdminDeps) error {
	email = account.NormalizeEmail(email)
	if _, err := deps.Users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if password == "" {
		slog.Warn("auth_event", "event", "admin_seed_skipped", "reason", "no admin password configured")
		return nil
	}

	created := true
	idUser, err := deps.Identity.AdminCreateUser(ctx, identity.AdminCreateRequest{
		Email:          email,
		Password:       password,
		EmailConfirmed: true,
		Metadata:       map[string]string{"role": user.RoleAdmin},
	})
	if errors.Is(err, identity.ErrUserExists) {
		created = false
		idUser, err = deps.Identity.FindUserByEmail(ctx, email)
	}
	if err != nil {
		return fmt.Errorf("seed admin identity: %w", err)
	}

	now := nowOr(deps.Now)
	u := user.User{
		ID:        idUser.ID,
		Email:     email,
		FullName:  "Administrator",
		Role:      user.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := provisionProfile(ctx, deps.ProvisionDeps, u); err != nil {
		if created {
			compensateIdentity(ctx, deps.ProvisionDeps, deps.Identity, idUser.ID, email, err, now)
		}
		return fmt.Errorf("seed admin profile: %w", err)
	}
	slog.Info("auth_event", "event", "admin_seeded", "email", email)
	return nil
}

// SportSeedStore lists and saves sports.
type SportSeedStore interface {
	List(ctx context.Context) ([]sport.Sport, error)
	Save(ctx context.Context, s sport.Sport) error
}

// CitySeedStore lists and saves cities.
type CitySeedStore interface {
	List(ctx context.Context) ([]city.City, error)
	Save(ctx context.Context, c city.City) error
}

// SeedCatalogDeps holds dependencies for SeedCatalog.
type SeedCatalogDeps struct {
	Sports     SportSeedStore
	Cities     CitySeedStore
	GenerateID func() string
}

// ExecuteSeedCatalog fills empty sport and city tables with the defaults.
// POST: tables that already have rows are left alone
func ExecuteSeedCatalog(ctx context.Context, deps SeedCatalogDeps) error {
	genID := deps.GenerateID
	if genID == nil {
		genID = uuid.NewString
	}

	sports, err := deps.Sports.List(ctx)
	if err != nil {
		return err
	}
	if len(sports) == 0 {
		for _, name := range sport.Defaults {
			s := sport.Sport{ID: genID(), Name: name, Slug: sport.Slugify(name)}
			if err := deps.Sports.Save(ctx, s); err != nil {
				return fmt.Errorf("seed sport %s: %w", name, err)
			}
		}
		slog.Info("seed_event", "event", "sports_seeded", "count", len(sport.Defaults))
	}

	cities, err := deps.Cities.List(ctx)
	if err != nil {
		return err
	}
	if len(cities) == 0 {
		for _, c := range city.Defaults {
			c.ID = genID()
			if err := deps.Cities.Save(ctx, c); err != nil {
				return fmt.Errorf("seed city %s: %w", c.Name, err)
			}
		}
		slog.Info("seed_event", "event", "cities_seeded", "count", len(city.Defaults))
	}
	return nil
}
