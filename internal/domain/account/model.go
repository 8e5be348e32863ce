package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength    = 254
	MinPasswordLength = 8
)

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// VerificationTTL is how long an email verification link stays valid.
const VerificationTTL = 24 * time.Hour

// Account status constants
const (
	StatusActive              = "active"
	StatusPendingVerification = "pending_verification"
)

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrInvalidStatus    = errors.New("status must be one of: active, pending_verification")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrTokenExpired     = errors.New("verification link has expired")
	ErrTokenInvalid     = errors.New("verification token is invalid")
	ErrAlreadyConfirmed = errors.New("email address is already confirmed")
	ErrNotPending       = errors.New("account is not pending verification")
)

// Account is an identity record owned by the local identity provider.
// It carries credentials only; profile data lives in the user table.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Status       string // active, pending_verification
	CreatedAt    time.Time
	ConfirmedAt  time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// VerificationToken is a single-use, time-limited email confirmation token.
type VerificationToken struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the shape of an email address.
// PRE: none
// POST: Returns nil for a plausible address
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the password policy without hashing.
func ValidatePassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if a.Status != StatusActive && a.Status != StatusPendingVerification {
		return ErrInvalidStatus
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext satisfies ValidatePassword
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if err := ValidatePassword(plaintext); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is locked out at the given instant.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account
// after MaxFailedLogins consecutive failures.
// POST: FailedLogins incremented; LockedUntil set once the limit is reached
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
// POST: FailedLogins is 0, LockedUntil is zero
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsPendingVerification returns true until the email address is confirmed.
func (a *Account) IsPendingVerification() bool {
	return a.Status == StatusPendingVerification
}

// Confirm transitions the account from pending to active.
// PRE: Account is in pending_verification status
// POST: Status is active and ConfirmedAt is set
func (a *Account) Confirm(now time.Time) error {
	if a.Status == StatusActive {
		return ErrAlreadyConfirmed
	}
	if a.Status != StatusPendingVerification {
		return ErrNotPending
	}
	a.Status = StatusActive
	a.ConfirmedAt = now
	return nil
}

// IsExpired returns true if the token has expired.
// INVARIANT: Token fields are not mutated
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Invalidate marks the token as used.
// POST: Used is set to true
func (t *VerificationToken) Invalidate() {
	t.Used = true
}
