package draft

import (
	"errors"
	"time"

	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/timeslot"
)

// Wizard steps: pick service, pick date, pick time, review.
const (
	FirstStep = 1
	LastStep  = 4
)

// TTL is how long an untouched draft is kept.
const TTL = 24 * time.Hour

// Domain errors
var (
	ErrInvalidStep = errors.New("step must be between 1 and 4")
	ErrNoCoach     = errors.New("draft must name a coach")
)

// Draft is the booking wizard's saved progress for one user.
// Every field except CoachID and Step may still be empty.
type Draft struct {
	CoachID   string    `json:"coach_id"`
	ServiceID string    `json:"service_id,omitempty"`
	CourtID   string    `json:"court_id,omitempty"`
	Date      string    `json:"date,omitempty"`
	StartTime string    `json:"start_time,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Step      int       `json:"step"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields that are present.
func (d *Draft) Validate() error {
	if d.CoachID == "" {
		return ErrNoCoach
	}
	if d.Step < FirstStep || d.Step > LastStep {
		return ErrInvalidStep
	}
	if d.Date != "" {
		if _, err := timeslot.ParseDate(d.Date); err != nil {
			return err
		}
	}
	if d.StartTime != "" && !timeslot.ValidClock(d.StartTime) {
		return timeslot.ErrInvalidClock
	}
	if len(d.Notes) > booking.MaxNotesLength {
		return booking.ErrNotesTooLong
	}
	return nil
}
