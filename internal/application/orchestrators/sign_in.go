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
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/user"
)

// SignInIdentity is the identity service surface used by sign-in.
type SignInIdentity interface {
	SignIn(ctx context.Context, email, password string) (identity.Session, error)
}

// UserStoreForSignIn loads and, when missing, creates the profile.
type UserStoreForSignIn interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, u user.User) error
}

// SignInInput carries input for the orchestrator.
type SignInInput struct {
	Email     string
	Password  string
	IP        string
	UserAgent string
}

// SignInDeps holds dependencies for SignIn.
type SignInDeps struct {
	Identity SignInIdentity
	Users    UserStoreForSignIn
	Audit    AuditStore
	Now      func() time.Time
}

// SignInResult is the signed-in user and their tokens.
type SignInResult struct {
	UserID       string
	Email        string
	FullName     string
	Role         string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// ExecuteSignIn checks credentials with the identity service and loads the profile.
// PRE: none
// POST: on success the user has a profile row; identities created outside the
// app get a student profile named after their email
func ExecuteSignIn(ctx context.Context, input SignInInput, deps SignInDeps) (SignInResult, error) {
	email := account.NormalizeEmail(input.Email)
	sess, err := deps.Identity.SignIn(ctx, email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAccountLocked):
			recordAudit(ctx, deps.Audit, audit.NewEvent("", email, "", audit.CategorySecurity, audit.ActionLogin).
				WithSeverity(audit.SeverityWarning).
				WithRequest(input.IP, input.UserAgent).
				WithDescription("sign-in refused: account locked"))
			slog.Warn("auth_event", "event", "login_locked", "email", email, "ip", input.IP)
		case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrEmailNotConfirmed):
			slog.Info("auth_event", "event", "login_failed", "email", email, "reason", err.Error())
		}
		return SignInResult{}, err
	}

	u, err := deps.Users.GetByID(ctx, sess.User.ID)
	if errors.Is(err, storage.ErrNotFound) {
		u, err = provisionMissingProfile(ctx, deps, sess.User)
	}
	if err != nil {
		return SignInResult{}, err
	}

	recordAudit(ctx, deps.Audit, audit.NewEvent(u.ID, u.Email, u.Role, audit.CategoryAccount, audit.ActionLogin).
		WithRequest(input.IP, input.UserAgent).
		WithResource("user", u.ID))
	slog.Info("auth_event", "event", "login", "user_id", u.ID, "role", u.Role)

	return SignInResult{
		UserID:       u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}, nil
}

func provisionMissingProfile(ctx context.Context, deps SignInDeps, idUser identity.User) (user.User, error) {
	now := nowOr(deps.Now)
	email := account.NormalizeEmail(idUser.Email)
	u := user.User{
		ID:        idUser.ID,
		Email:     email,
		FullName:  user.NameFromEmail(email),
		Role:      user.RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return user.User{}, fmt.Errorf("provision profile for %s: %w", idUser.ID, err)
	}
	if err := deps.Users.Create(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("provision profile: %w", err)
	}
	slog.Info("auth_event", "event", "profile_provisioned_on_login", "user_id", u.ID)
	return u, nil
}

// ExecuteSignOut records the end of a session.
// POST: an account/logout audit event exists for signed-in actors
func ExecuteSignOut(ctx context.Context, actor Actor, auditStore AuditStore) {
	if actor.ID == "" {
		return
	}
	recordAudit(ctx, auditStore, actor.event(audit.CategoryAccount, audit.ActionLogout).WithResource("user", actor.ID))
	slog.Info("auth_event", "event", "logout", "user_id", actor.ID)
}
