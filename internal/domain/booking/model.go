package booking

import (
	"errors"
	"strings"
	"time"

	"coachhub/internal/domain/timeslot"
)

// Status constants
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDeclined  = "declined"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPending, StatusConfirmed, StatusDeclined, StatusCancelled, StatusCompleted}

// ActiveStatuses are the statuses that hold a slot on the coach's and court's calendar.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// Actor constants identify who drives a status change.
const (
	ActorStudent = "student"
	ActorCoach   = "coach"
	ActorAdmin   = "admin"
	ActorSystem  = "system"
)

// MaxNotesLength bounds the free-text note a student attaches to a request.
const MaxNotesLength = 1000

// ReasonExpired is recorded when housekeeping cancels a request nobody answered.
const ReasonExpired = "expired"

// Domain errors
var (
	ErrEmptyStudentID    = errors.New("student is required")
	ErrEmptyCoachID      = errors.New("coach is required")
	ErrEmptyServiceID    = errors.New("service is required")
	ErrSelfBooking       = errors.New("coaches cannot book their own services")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrNotesTooLong      = errors.New("notes cannot exceed 1000 characters")
	ErrInvalidTransition = errors.New("booking cannot move to that status from its current status")
	ErrNotAllowed        = errors.New("not allowed to change this booking")
	ErrAlreadyStarted    = errors.New("booking has already started")
	ErrNotFinished       = errors.New("booking has not finished yet")
	ErrInPast            = errors.New("booking must start in the future")
)

// Booking is a student's request for a coach's service at a date and time.
// Date is YYYY-MM-DD; StartTime and EndTime are zero-padded HH:MM on that date.
// CourtID is optional. PriceCents is a snapshot of the service price at request time.
type Booking struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	CoachID      string    `json:"coach_id"`
	ServiceID    string    `json:"service_id"`
	CourtID      string    `json:"court_id,omitempty"`
	Date         string    `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Status       string    `json:"status"`
	PriceCents   int       `json:"price_cents"`
	Notes        string    `json:"notes,omitempty"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CancelledBy  string    `json:"cancelled_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.StudentID) == "" {
		return ErrEmptyStudentID
	}
	if strings.TrimSpace(b.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if strings.TrimSpace(b.ServiceID) == "" {
		return ErrEmptyServiceID
	}
	if b.StudentID == b.CoachID {
		return ErrSelfBooking
	}
	if _, err := timeslot.ParseDate(b.Date); err != nil {
		return err
	}
	if err := timeslot.ValidateRange(b.StartTime, b.EndTime); err != nil {
		return err
	}
	if !isValidStatus(b.Status) {
		return ErrInvalidStatus
	}
	if b.PriceCents < 0 {
		return ErrNegativePrice
	}
	if len(b.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// IsActive reports whether the booking still holds its slot.
// INVARIANT: Booking fields are not mutated
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// IsActiveStatus reports whether status holds a slot.
func IsActiveStatus(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Overlaps reports whether [startA,endA) and [startB,endB) intersect.
// Times are zero-padded HH:MM, so plain string comparison orders them.
func Overlaps(startA, endA, startB, endB string) bool {
	return timeslot.Overlaps(startA, endA, startB, endB)
}

// EndTimeFor returns the end time of a session of minutes starting at start.
// POST: timeslot.ErrCrossesMidnight when the session would end on the next day
func EndTimeFor(start string, minutes int) (string, error) {
	return timeslot.AddMinutes(start, minutes)
}

// Overlaps reports whether this booking's time range intersects [start,end) on date.
// Only the time range is compared; callers decide which bookings are relevant.
func (b *Booking) Overlaps(date, start, end string) bool {
	return b.Date == date && timeslot.Overlaps(b.StartTime, b.EndTime, start, end)
}

// ConflictsWith reports whether both bookings are active and overlap on the same date.
func (b *Booking) ConflictsWith(other Booking) bool {
	return b.IsActive() && other.IsActive() && b.Overlaps(other.Date, other.StartTime, other.EndTime)
}

// StartsAt returns the start instant in loc.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	return timeslot.At(b.Date, b.StartTime, loc)
}

// EndsAt returns the end instant in loc.
func (b *Booking) EndsAt(loc *time.Location) (time.Time, error) {
	return timeslot.At(b.Date, b.EndTime, loc)
}

// Transition moves the booking to status `to` on behalf of actor.
//
//	pending            -> confirmed | declined   (coach, admin)
//	pending, confirmed -> cancelled              (student, coach, admin before start; system any time)
//	confirmed          -> completed              (coach, admin, system after end)
//
// PRE: loc is the marketplace time zone
// POST: on success Status, UpdatedAt and the cancellation fields are updated
func (b *Booking) Transition(to, actor, reason string, now time.Time, loc *time.Location) error {
	start, err := b.StartsAt(loc)
	if err != nil {
		return err
	}
	end, err := b.EndsAt(loc)
	if err != nil {
		return err
	}

	switch to {
	case StatusConfirmed, StatusDeclined:
		if b.Status != StatusPending {
			return ErrInvalidTransition
		}
		if actor != ActorCoach && actor != ActorAdmin {
			return ErrNotAllowed
		}
		if to == StatusConfirmed && !now.Before(start) {
			return ErrAlreadyStarted
		}
	case StatusCancelled:
		if b.Status != StatusPending && b.Status != StatusConfirmed {
			return ErrInvalidTransition
		}
		if actor != ActorStudent && actor != ActorCoach && actor != ActorAdmin && actor != ActorSystem {
			return ErrNotAllowed
		}
		if actor != ActorSystem && !now.Before(start) {
			return ErrAlreadyStarted
		}
	case StatusCompleted:
		if b.Status != StatusConfirmed {
			return ErrInvalidTransition
		}
		if actor != ActorCoach && actor != ActorAdmin && actor != ActorSystem {
			return ErrNotAllowed
		}
		if now.Before(end) {
			return ErrNotFinished
		}
	default:
		return ErrInvalidTransition
	}

	b.Status = to
	b.UpdatedAt = now
	if to == StatusCancelled || to == StatusDeclined {
		b.CancelReason = strings.TrimSpace(reason)
		b.CancelledBy = actor
	}
	return nil
}

// EnsureFuture rejects bookings whose start is not after now.
func (b *Booking) EnsureFuture(now time.Time, loc *time.Location) error {
	start, err := b.StartsAt(loc)
	if err != nil {
		return err
	}
	if !start.After(now) {
		return ErrInPast
	}
	return nil
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
