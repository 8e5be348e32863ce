package user

import (
	"errors"
	"strings"
	"time"

	"coachhub/internal/domain/account"
)

// Role constants
const (
	RoleStudent = "student"
	RoleCoach   = "coach"
	RoleAdmin   = "admin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleStudent, RoleCoach, RoleAdmin}

// Max length constants for user-editable fields.
const (
	MaxFullNameLength = 120
	MaxPhoneLength    = 32
)

// Domain errors
var (
	ErrEmptyID       = errors.New("user ID cannot be empty")
	ErrEmptyFullName = errors.New("full name cannot be empty")
	ErrNameTooLong   = errors.New("full name cannot exceed 120 characters")
	ErrInvalidRole   = errors.New("role must be one of: student, coach, admin")
	ErrPhoneTooLong  = errors.New("phone cannot exceed 32 characters")
	ErrInvalidPhone  = errors.New("phone may contain only digits, spaces, '+', '-' and parentheses")
)

// User is the application profile row linked one-to-one with an identity user.
// Its ID equals the identity service's user ID.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	CityID    string    `json:"city_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyID
	}
	if err := account.ValidateEmail(u.Email); err != nil {
		return err
	}
	if strings.TrimSpace(u.FullName) == "" {
		return ErrEmptyFullName
	}
	if len(u.FullName) > MaxFullNameLength {
		return ErrNameTooLong
	}
	if !IsValidRole(u.Role) {
		return ErrInvalidRole
	}
	if len(u.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	for _, c := range u.Phone {
		if !strings.ContainsRune("0123456789 +-()", c) {
			return ErrInvalidPhone
		}
	}
	return nil
}

// IsCoach returns true for coach profiles.
func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

// IsAdmin returns true for administrators.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsValidRole reports whether role is a known role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// NameFromEmail derives a display name from the local part of an address.
// Used when a profile has to be created for an identity that never supplied one.
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	local = strings.TrimSpace(local)
	if local == "" {
		return "New user"
	}
	return local
}
