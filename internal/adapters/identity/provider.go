// Package identity talks to the service that owns credentials: a local
// account table or a Supabase GoTrue project. Profiles are not stored here.
package identity

import (
	"context"
	"errors"
	"time"
)

// Provider errors. Transport failures and 5xx answers wrap ErrUnavailable.
var (
	ErrUserExists         = errors.New("user already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrTokenInvalid       = errors.New("verification token is invalid")
	ErrTokenExpired       = errors.New("verification token has expired")
	ErrAlreadyConfirmed   = errors.New("email already confirmed")
	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrUnavailable        = errors.New("identity service unavailable")
)

// User is an identity record as the provider reports it.
// VerificationToken is set only when the caller must deliver the link itself.
type User struct {
	ID                string
	Email             string
	EmailConfirmed    bool
	VerificationToken string
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Claims are the verified contents of an access token.
type Claims struct {
	Subject string
	Email   string
}

// SignUpRequest registers an unconfirmed user.
type SignUpRequest struct {
	Email    string
	Password string
	Metadata map[string]string
}

// AdminCreateRequest creates a user with privileged credentials.
type AdminCreateRequest struct {
	Email          string
	Password       string
	EmailConfirmed bool
	Metadata       map[string]string
}

// Provider is the identity service used by the orchestrators.
type Provider interface {
	SignUp(ctx context.Context, req SignUpRequest) (User, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	VerifyEmail(ctx context.Context, token string) error
	// ResendVerification returns the new token when the caller must send it,
	// or "" when the provider sends the email itself.
	ResendVerification(ctx context.Context, email string) (string, error)
	AdminCreateUser(ctx context.Context, req AdminCreateRequest) (User, error)
	AdminDeleteUser(ctx context.Context, id string) error
	FindUserByEmail(ctx context.Context, email string) (User, error)
	ParseAccessToken(ctx context.Context, token string) (Claims, error)
}
