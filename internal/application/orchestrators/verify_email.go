package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"coachhub/internal/adapters/identity"
	"coachhub/internal/domain/account"
)

// VerifyIdentity is the identity service surface used for email confirmation.
type VerifyIdentity interface {
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) (string, error)
}

// VerifyEmailDeps holds dependencies for VerifyEmail and ResendVerification.
type VerifyEmailDeps struct {
	Identity VerifyIdentity
	Notifier *Notifier
}

// ExecuteVerifyEmail confirms the address behind token.
// POST: an already confirmed address counts as success
func ExecuteVerifyEmail(ctx context.Context, token string, deps VerifyEmailDeps) error {
	if token == "" {
		return identity.ErrTokenInvalid
	}
	err := deps.Identity.VerifyEmail(ctx, token)
	if errors.Is(err, identity.ErrAlreadyConfirmed) {
		return nil
	}
	if err != nil {
		return err
	}
	slog.Info("auth_event", "event", "email_verified")
	return nil
}

// ExecuteResendVerification sends a fresh verification link.
// POST: unknown and already confirmed addresses return nil so callers cannot
// probe which emails are registered
func ExecuteResendVerification(ctx context.Context, email string, deps VerifyEmailDeps) error {
	email = account.NormalizeEmail(email)
	if err := account.ValidateEmail(email); err != nil {
		return err
	}
	token, err := deps.Identity.ResendVerification(ctx, email)
	switch {
	case errors.Is(err, identity.ErrUserNotFound), errors.Is(err, identity.ErrAlreadyConfirmed):
		slog.Info("auth_event", "event", "resend_ignored", "reason", err.Error())
		return nil
	case err != nil:
		return err
	}
	deps.Notifier.SendVerification(ctx, email, token)
	slog.Info("auth_event", "event", "verification_resent")
	return nil
}
