package sport

import (
	"errors"
	"strings"
	"unicode"
)

// Domain errors
var (
	ErrEmptyName   = errors.New("sport name cannot be empty")
	ErrNameTooLong = errors.New("sport name cannot exceed 60 characters")
	ErrEmptySlug   = errors.New("sport slug cannot be empty")
)

// Sport is a discipline coaches can teach (tennis, padel, swimming...).
type Sport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Validate checks if the Sport has valid data.
// PRE: Sport struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Sport) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > 60 {
		return ErrNameTooLong
	}
	if s.Slug == "" {
		return ErrEmptySlug
	}
	return nil
}

// Slugify turns a display name into a URL-safe slug: "Beach Volleyball" -> "beach-volleyball".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Defaults is the catalogue seeded into an empty database.
var Defaults = []string{"Tennis", "Padel", "Badminton", "Squash", "Swimming", "Golf", "Basketball", "Football"}
