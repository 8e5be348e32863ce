package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	userStore "coachhub/internal/adapters/storage/user"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/outbox"
	"coachhub/internal/domain/user"
)

// UserStoreForProvision is the part of the profile store provisioning writes to.
type UserStoreForProvision interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) error
	Delete(ctx context.Context, id string) error
}

// CoachStoreForProvision creates the empty coach listing for coach signups.
type CoachStoreForProvision interface {
	Create(ctx context.Context, p coach.Profile) error
}

// IdentityDeleter removes identity users during compensation.
type IdentityDeleter interface {
	AdminDeleteUser(ctx context.Context, id string) error
}

// ProvisionDeps holds what provisionProfile and compensateIdentity need.
type ProvisionDeps struct {
	Users   UserStoreForProvision
	Coaches CoachStoreForProvision
	Outbox  OutboxWriter
}

// provisionProfile inserts the profile row for an identity user and, for
// coaches, an unpublished coach listing named after the user.
// PRE: u is validated and u.ID is the identity user id
// POST: on error nothing is left in the profile tables
func provisionProfile(ctx context.Context, deps ProvisionDeps, u user.User) error {
	if err := deps.Users.Create(ctx, u); err != nil {
		if errors.Is(err, userStore.ErrEmailTaken) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("create profile: %w", err)
	}
	if !u.IsCoach() {
		return nil
	}
	p := coach.Profile{
		UserID:      u.ID,
		DisplayName: u.FullName,
		CityID:      u.CityID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.CreatedAt,
	}
	if err := deps.Coaches.Create(ctx, p); err != nil {
		if delErr := deps.Users.Delete(ctx, u.ID); delErr != nil {
			slog.Error("provision_cleanup_failed", "user_id", u.ID, "error", delErr)
		}
		return fmt.Errorf("create coach profile: %w", err)
	}
	return nil
}

// compensateIdentity deletes an identity user whose profile could not be
// provisioned. When the delete fails too, an identity_cleanup entry is queued.
// An identity whose profile was created by a concurrent request is left alone.
func compensateIdentity(ctx context.Context, deps ProvisionDeps, idp IdentityDeleter, id, email string, cause error, now time.Time) {
	if errors.Is(cause, ErrEmailAlreadyExists) {
		if owner, err := deps.Users.GetByEmail(ctx, email); err == nil && owner.ID == id {
			slog.Info("auth_event", "event", "identity_compensation_skipped", "user_id", id, "reason", "profile_exists")
			return
		}
	}
	err := idp.AdminDeleteUser(ctx, id)
	if err == nil {
		slog.Info("auth_event", "event", "identity_compensated", "user_id", id)
		return
	}
	slog.Warn("auth_event", "event", "identity_compensation_failed", "user_id", id, "error", err)
	if qErr := enqueue(ctx, deps.Outbox, outbox.ActionIdentityCleanup, outbox.IdentityCleanupPayload{UserID: id, Email: email}, now); qErr != nil {
		slog.Error("outbox_enqueue_failed", "action_type", outbox.ActionIdentityCleanup, "user_id", id, "error", qErr)
	}
}
