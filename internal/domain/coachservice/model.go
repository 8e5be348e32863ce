package coachservice

import (
	"errors"
	"strings"
	"time"
)

// Duration bounds in minutes.
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 480
)

// Domain errors
var (
	ErrEmptyCoachID       = errors.New("service must belong to a coach")
	ErrEmptySportID       = errors.New("sport is required")
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrTitleTooLong       = errors.New("title cannot exceed 120 characters")
	ErrDescriptionTooLong = errors.New("description cannot exceed 2000 characters")
	ErrInvalidDuration    = errors.New("duration must be between 15 and 480 minutes in steps of 5")
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrInactive           = errors.New("service is not currently offered")
)

// Service is something a coach sells: a lesson type with a fixed duration and price.
type Service struct {
	ID              string    `json:"id"`
	CoachID         string    `json:"coach_id"`
	SportID         string    `json:"sport_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int       `json:"price_cents"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// Validate checks if the Service has valid data.
// PRE: Service struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Service) Validate() error {
	if strings.TrimSpace(s.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if strings.TrimSpace(s.SportID) == "" {
		return ErrEmptySportID
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > 120 {
		return ErrTitleTooLong
	}
	if len(s.Description) > 2000 {
		return ErrDescriptionTooLong
	}
	if s.DurationMinutes < MinDurationMinutes || s.DurationMinutes > MaxDurationMinutes || s.DurationMinutes%5 != 0 {
		return ErrInvalidDuration
	}
	if s.PriceCents < 0 {
		return ErrNegativePrice
	}
	return nil
}

// Bookable returns ErrInactive for services that no longer take bookings.
func (s *Service) Bookable() error {
	if !s.Active {
		return ErrInactive
	}
	return nil
}
