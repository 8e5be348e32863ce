package coach

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxDisplayNameLength = 120
	MaxBioLength         = 5000
	MaxAvatarURLLength   = 500
	MaxYearsExperience   = 80
)

// Domain errors
var (
	ErrEmptyUserID          = errors.New("coach profile must belong to a user")
	ErrEmptyDisplayName     = errors.New("display name cannot be empty")
	ErrDisplayNameTooLong   = errors.New("display name cannot exceed 120 characters")
	ErrBioTooLong           = errors.New("bio cannot exceed 5000 characters")
	ErrNegativeRate         = errors.New("hourly rate cannot be negative")
	ErrInvalidExperience    = errors.New("years of experience must be between 0 and 80")
	ErrDuplicateSport       = errors.New("each sport can be listed only once")
	ErrInvalidAvatarURL     = errors.New("avatar URL must start with https://")
	ErrIncompleteProfile    = errors.New("a display name, a bio and at least one active service are required to publish")
	ErrProfileNotPublished  = errors.New("coach profile is not published")
	ErrInvalidRatingSummary = errors.New("rating summary is out of range")
)

// Profile is the public-facing coach listing. UserID is the owning user's ID.
// The Bio is Markdown rendered on the profile page.
// RatingAvg and RatingCount are a denormalised summary of the coach's reviews.
type Profile struct {
	UserID          string    `json:"user_id"`
	DisplayName     string    `json:"display_name"`
	Bio             string    `json:"bio"`
	CityID          string    `json:"city_id,omitempty"`
	SportIDs        []string  `json:"sport_ids"`
	HourlyRateCents int       `json:"hourly_rate_cents"`
	YearsExperience int       `json:"years_experience"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	Published       bool      `json:"published"`
	RatingAvg       float64   `json:"rating_avg"`
	RatingCount     int       `json:"rating_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return ErrEmptyDisplayName
	}
	if len(p.DisplayName) > MaxDisplayNameLength {
		return ErrDisplayNameTooLong
	}
	if len(p.Bio) > MaxBioLength {
		return ErrBioTooLong
	}
	if p.HourlyRateCents < 0 {
		return ErrNegativeRate
	}
	if p.YearsExperience < 0 || p.YearsExperience > MaxYearsExperience {
		return ErrInvalidExperience
	}
	if p.AvatarURL != "" && (!strings.HasPrefix(p.AvatarURL, "https://") || len(p.AvatarURL) > MaxAvatarURLLength) {
		return ErrInvalidAvatarURL
	}
	seen := make(map[string]bool, len(p.SportIDs))
	for _, id := range p.SportIDs {
		if seen[id] {
			return ErrDuplicateSport
		}
		seen[id] = true
	}
	if p.RatingCount < 0 || p.RatingAvg < 0 || p.RatingAvg > 5 {
		return ErrInvalidRatingSummary
	}
	return nil
}

// CanPublish reports whether the profile has enough content to be listed.
// PRE: activeServices is the number of active services owned by the coach
// POST: Returns ErrIncompleteProfile when something is missing
func (p *Profile) CanPublish(activeServices int) error {
	if strings.TrimSpace(p.DisplayName) == "" || strings.TrimSpace(p.Bio) == "" || activeServices < 1 {
		return ErrIncompleteProfile
	}
	return nil
}

// ApplyRating replaces the rating summary, rounding the average to two decimals.
// POST: RatingAvg in [0,5], RatingCount >= 0
func (p *Profile) ApplyRating(avg float64, count int) {
	if count <= 0 {
		p.RatingAvg = 0
		p.RatingCount = 0
		return
	}
	p.RatingAvg = math.Round(avg*100) / 100
	p.RatingCount = count
}

// TeachesSport reports whether sportID is listed on the profile.
func (p *Profile) TeachesSport(sportID string) bool {
	for _, id := range p.SportIDs {
		if id == sportID {
			return true
		}
	}
	return false
}
