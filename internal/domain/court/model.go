package court

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName      = errors.New("court name cannot be empty")
	ErrNameTooLong    = errors.New("court name cannot exceed 120 characters")
	ErrAddressTooLong = errors.New("address cannot exceed 300 characters")
	ErrEmptyCityID    = errors.New("city is required")
	ErrEmptySportID   = errors.New("sport is required")
)

// Court is a bookable venue where sessions take place.
type Court struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CityID    string    `json:"city_id"`
	SportID   string    `json:"sport_id"`
	Indoor    bool      `json:"indoor"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the Court has valid data.
// PRE: Court struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Court) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 120 {
		return ErrNameTooLong
	}
	if len(c.Address) > 300 {
		return ErrAddressTooLong
	}
	if c.CityID == "" {
		return ErrEmptyCityID
	}
	if c.SportID == "" {
		return ErrEmptySportID
	}
	return nil
}
