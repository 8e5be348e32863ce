package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"coachhub/internal/adapters/identity"
	"coachhub/internal/domain/account"
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/user"
)

// ProvisionIdentity is the identity service surface used by admin provisioning.
type ProvisionIdentity interface {
	AdminCreateUser(ctx context.Context, req identity.AdminCreateRequest) (identity.User, error)
	SignUp(ctx context.Context, req identity.SignUpRequest) (identity.User, error)
	AdminDeleteUser(ctx context.Context, id string) error
}

// ProvisionUserInput carries input for the orchestrator.
type ProvisionUserInput struct {
	Actor    Actor
	Email    string
	Password string
	FullName string
	Role     string
	Phone    string
	CityID   string
}

// ProvisionUserDeps holds dependencies for ProvisionUser.
type ProvisionUserDeps struct {
	Identity ProvisionIdentity
	ProvisionDeps
	Notifier *Notifier
	Audit    AuditStore
	Now      func() time.Time
}

// ProvisionUserResult reports the created user.
// VerificationPending is set when the privileged path failed and the user
// was registered through the public signup instead.
type ProvisionUserResult struct {
	UserID              string
	VerificationPending bool
}

// ExecuteProvisionUser creates a confirmed user on behalf of an admin.
// PRE: Actor is an admin
// POST: identity user and profile both exist, or neither does (or cleanup is queued)
func ExecuteProvisionUser(ctx context.Context, input ProvisionUserInput, deps ProvisionUserDeps) (ProvisionUserResult, error) {
	if err := input.Actor.requireAdmin(); err != nil {
		return ProvisionUserResult{}, err
	}
	now := nowOr(deps.Now)
	u := user.User{
		ID:        "pending",
		Email:     account.NormalizeEmail(input.Email),
		FullName:  strings.TrimSpace(input.FullName),
		Role:      input.Role,
		Phone:     strings.TrimSpace(input.Phone),
		CityID:    input.CityID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return ProvisionUserResult{}, err
	}
	if err := account.ValidatePassword(input.Password); err != nil {
		return ProvisionUserResult{}, err
	}

	meta := map[string]string{"full_name": u.FullName, "role": u.Role}
	idUser, err := deps.Identity.AdminCreateUser(ctx, identity.AdminCreateRequest{
		Email:          u.Email,
		Password:       input.Password,
		EmailConfirmed: true,
		Metadata:       meta,
	})
	pending := false
	switch {
	case errors.Is(err, identity.ErrUserExists):
		return ProvisionUserResult{}, ErrEmailAlreadyExists
	case err != nil:
		slog.Warn("auth_event", "event", "admin_create_failed", "email", u.Email, "error", err)
		idUser, err = deps.Identity.SignUp(ctx, identity.SignUpRequest{Email: u.Email, Password: input.Password, Metadata: meta})
		if errors.Is(err, identity.ErrUserExists) {
			return ProvisionUserResult{}, ErrEmailAlreadyExists
		}
		if err != nil {
			return ProvisionUserResult{}, err
		}
		pending = !idUser.EmailConfirmed
	}

	u.ID = idUser.ID
	if err := provisionProfile(ctx, deps.ProvisionDeps, u); err != nil {
		compensateIdentity(ctx, deps.ProvisionDeps, deps.Identity, idUser.ID, u.Email, err, now)
		return ProvisionUserResult{}, err
	}
	if pending {
		deps.Notifier.SendVerification(ctx, u.Email, idUser.VerificationToken)
	}

	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryAccount, audit.ActionProvision).
		WithResource("user", u.ID).
		WithDescription("provisioned "+u.Role).
		WithMetadata(map[string]string{"verification_pending": boolString(pending)}))
	slog.Info("auth_event", "event", "user_provisioned", "user_id", u.ID, "role", u.Role, "by", input.Actor.ID)

	return ProvisionUserResult{UserID: u.ID, VerificationPending: pending}, nil
}
