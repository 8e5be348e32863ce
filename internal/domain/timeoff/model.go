package timeoff

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyCoachID   = errors.New("coach ID cannot be empty")
	ErrInvalidDates   = errors.New("start date must be before or equal to end date")
	ErrEmptyStartDate = errors.New("start date cannot be zero")
	ErrEmptyEndDate   = errors.New("end date cannot be zero")
	ErrReasonTooLong  = errors.New("reason cannot exceed 200 characters")
	ErrTooLong        = errors.New("time off cannot exceed 366 days")
)

// TimeOff is a date range (inclusive) in which a coach takes no bookings.
type TimeOff struct {
	ID        string    `json:"id"`
	CoachID   string    `json:"coach_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason,omitempty"`
}

// Validate checks if the TimeOff has valid data.
// PRE: TimeOff struct is populated
// POST: Returns nil if valid, error otherwise
func (t *TimeOff) Validate() error {
	if strings.TrimSpace(t.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if t.StartDate.IsZero() {
		return ErrEmptyStartDate
	}
	if t.EndDate.IsZero() {
		return ErrEmptyEndDate
	}
	if t.StartDate.After(t.EndDate) {
		return ErrInvalidDates
	}
	if t.EndDate.Sub(t.StartDate) > 366*24*time.Hour {
		return ErrTooLong
	}
	if len(t.Reason) > 200 {
		return ErrReasonTooLong
	}
	return nil
}

// Contains returns true if the given date falls within this range.
// PRE: date is a valid time
// INVARIANT: TimeOff fields are not mutated
func (t *TimeOff) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	start := t.StartDate.Truncate(24 * time.Hour)
	end := t.EndDate.Truncate(24 * time.Hour)
	return !d.Before(start) && !d.After(end)
}

// AnyContains reports whether any range in the list covers date.
func AnyContains(ranges []TimeOff, date time.Time) bool {
	for _, r := range ranges {
		if r.Contains(date) {
			return true
		}
	}
	return false
}
