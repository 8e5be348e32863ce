package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"coachhub/internal/adapters/identity"
	"coachhub/internal/adapters/metrics"
	"coachhub/internal/adapters/storage"
	"coachhub/internal/domain/account"
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/user"
)

// ErrSignupRole is returned when a public signup asks for a role other than student or coach.
var ErrSignupRole = errors.New("role must be student or coach")

// SignUpIdentity is the identity service surface used by signup.
type SignUpIdentity interface {
	SignUp(ctx context.Context, req identity.SignUpRequest) (identity.User, error)
	SignIn(ctx context.Context, email, password string) (identity.Session, error)
	FindUserByEmail(ctx context.Context, email string) (identity.User, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	AdminDeleteUser(ctx context.Context, id string) error
}

// SignUpInput carries input for the orchestrator.
type SignUpInput struct {
	Email     string
	Password  string
	FullName  string
	Role      string
	IP        string
	UserAgent string
}

// SignUpDeps holds dependencies for SignUp.
type SignUpDeps struct {
	Identity SignUpIdentity
	ProvisionDeps
	Notifier *Notifier
	Audit    AuditStore
	Now      func() time.Time
}

// SignUpResult reports the new user and whether they must confirm their email.
type SignUpResult struct {
	UserID               string
	VerificationRequired bool
	Recovered            bool
}

// ExecuteSignUp registers an identity user and provisions their profile.
// An identity left behind by an earlier failed signup is recovered when the
// same password is supplied.
// PRE: Valid email, password >= 8 chars, role student or coach, full name
// POST: identity user and profile both exist, or neither does (or cleanup is queued)
// INVARIANT: a profile's ID always equals its identity user ID
func ExecuteSignUp(ctx context.Context, input SignUpInput, deps SignUpDeps) (SignUpResult, error) {
	email := account.NormalizeEmail(input.Email)
	fullName := strings.TrimSpace(input.FullName)
	if err := validateSignUp(email, input.Password, fullName, input.Role); err != nil {
		metrics.Signup("invalid")
		return SignUpResult{}, err
	}
	now := nowOr(deps.Now)

	idUser, err := deps.Identity.SignUp(ctx, identity.SignUpRequest{
		Email:    email,
		Password: input.Password,
		Metadata: map[string]string{"full_name": fullName, "role": input.Role},
	})
	recovered := false
	switch {
	case errors.Is(err, identity.ErrUserExists):
		if _, pErr := deps.Users.GetByEmail(ctx, email); pErr == nil {
			metrics.Signup("exists")
			return SignUpResult{}, ErrEmailAlreadyExists
		} else if !errors.Is(pErr, storage.ErrNotFound) {
			metrics.Signup("error")
			return SignUpResult{}, pErr
		}
		idUser, err = recoverOrphanIdentity(ctx, deps.Identity, email, input.Password)
		if err != nil {
			slog.Info("auth_event", "event", "orphan_recovery_refused", "email", email, "error", err)
			metrics.Signup("exists")
			return SignUpResult{}, ErrEmailAlreadyExists
		}
		recovered = true
		slog.Info("auth_event", "event", "orphan_identity_recovered", "user_id", idUser.ID)
	case err != nil:
		metrics.Signup("error")
		return SignUpResult{}, err
	}

	u := user.User{
		ID:        idUser.ID,
		Email:     email,
		FullName:  fullName,
		Role:      input.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := provisionProfile(ctx, deps.ProvisionDeps, u); err != nil {
		compensateIdentity(ctx, deps.ProvisionDeps, deps.Identity, idUser.ID, email, err, now)
		metrics.Signup("error")
		return SignUpResult{}, err
	}

	deps.Notifier.SendVerification(ctx, email, idUser.VerificationToken)
	deps.Notifier.Publish(ctx, EventUserSignedUp, map[string]string{"user_id": u.ID, "role": u.Role})

	recordAudit(ctx, deps.Audit, audit.NewEvent(u.ID, u.Email, u.Role, audit.CategoryAccount, audit.ActionCreate).
		WithRequest(input.IP, input.UserAgent).
		WithResource("user", u.ID).
		WithDescription("signup").
		WithMetadata(map[string]string{"recovered": boolString(recovered)}))

	outcome := "created"
	if recovered {
		outcome = "recovered"
	}
	metrics.Signup(outcome)
	slog.Info("auth_event", "event", "signup", "user_id", u.ID, "role", u.Role, "recovered", recovered)

	return SignUpResult{
		UserID:               u.ID,
		VerificationRequired: !idUser.EmailConfirmed,
		Recovered:            recovered,
	}, nil
}

// recoverOrphanIdentity proves ownership of an existing identity with the
// supplied password and returns it.
// POST: the password matched, or an error is returned
func recoverOrphanIdentity(ctx context.Context, idp SignUpIdentity, email, password string) (identity.User, error) {
	sess, err := idp.SignIn(ctx, email, password)
	if err == nil {
		return sess.User, nil
	}
	if !errors.Is(err, identity.ErrEmailNotConfirmed) {
		return identity.User{}, err
	}
	u, err := idp.FindUserByEmail(ctx, email)
	if err != nil {
		return identity.User{}, err
	}
	token, err := idp.ResendVerification(ctx, email)
	if err != nil {
		slog.Warn("auth_event", "event", "resend_on_recovery_failed", "user_id", u.ID, "error", err)
	}
	u.VerificationToken = token
	u.EmailConfirmed = false
	return u, nil
}

func validateSignUp(email, password, fullName, role string) error {
	if err := account.ValidateEmail(email); err != nil {
		return err
	}
	if err := account.ValidatePassword(password); err != nil {
		return err
	}
	if role != user.RoleStudent && role != user.RoleCoach {
		return ErrSignupRole
	}
	if fullName == "" {
		return user.ErrEmptyFullName
	}
	if len(fullName) > user.MaxFullNameLength {
		return user.ErrNameTooLong
	}
	return nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
