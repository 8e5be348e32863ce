package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coachhub/internal/adapters/metrics"
	bookingStore "coachhub/internal/adapters/storage/booking"
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/coachservice"
	"coachhub/internal/domain/court"
	"coachhub/internal/domain/timeoff"
	"coachhub/internal/domain/timeslot"
	"coachhub/internal/domain/user"
)

// Booking request errors
var (
	ErrServiceNotOffered   = errors.New("this coach does not offer that service")
	ErrOutsideAvailability = errors.New("the coach is not available at that time")
	ErrCoachUnavailable    = errors.New("the coach is away on that date")
	ErrCourtSport          = errors.New("that court is not set up for this sport")
)

// BookingUserLookup loads profiles.
type BookingUserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// BookingCoachLookup loads coach listings.
type BookingCoachLookup interface {
	GetByUserID(ctx context.Context, userID string) (coach.Profile, error)
}

// BookingServiceLookup loads services.
type BookingServiceLookup interface {
	GetByID(ctx context.Context, id string) (coachservice.Service, error)
}

// BookingCourtLookup loads courts.
type BookingCourtLookup interface {
	GetByID(ctx context.Context, id string) (court.Court, error)
}

// AvailabilityLookup lists a coach's weekly windows.
type AvailabilityLookup interface {
	ListByCoach(ctx context.Context, coachID string) ([]availability.Window, error)
}

// TimeOffLookup lists a coach's time off.
type TimeOffLookup interface {
	ListByCoach(ctx context.Context, coachID string) ([]timeoff.TimeOff, error)
}

// BookingCreator inserts a booking after the overlap check.
type BookingCreator interface {
	CreateIfNoConflict(ctx context.Context, b booking.Booking) error
}

// DraftRemover drops a user's booking-wizard draft.
type DraftRemover interface {
	Delete(ctx context.Context, userID string) error
}

// CreateBookingInput carries input for the orchestrator.
type CreateBookingInput struct {
	Actor     Actor
	CoachID   string
	ServiceID string
	CourtID   string
	Date      string
	StartTime string
	Notes     string
}

// CreateBookingDeps holds dependencies for CreateBooking.
type CreateBookingDeps struct {
	Users        BookingUserLookup
	Coaches      BookingCoachLookup
	Services     BookingServiceLookup
	Courts       BookingCourtLookup
	Availability AvailabilityLookup
	TimeOff      TimeOffLookup
	Bookings     BookingCreator
	Drafts       DraftRemover
	Notifier     *Notifier
	Audit        AuditStore
	Location     *time.Location
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateBooking requests a session with a coach.
// PRE: Actor is signed in
// POST: a pending booking exists with the service price as a snapshot
// INVARIANT: no two active bookings of one coach, or of one court, overlap on a date
func ExecuteCreateBooking(ctx context.Context, input CreateBookingInput, deps CreateBookingDeps) (booking.Booking, error) {
	req, err := prepareBooking(ctx, input, deps)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrForbidden) {
			return booking.Booking{}, err
		}
		metrics.Booking("rejected")
		return booking.Booking{}, err
	}

	b := req.booking
	if err := deps.Bookings.CreateIfNoConflict(ctx, b); err != nil {
		if errors.Is(err, bookingStore.ErrSlotConflict) || errors.Is(err, bookingStore.ErrCourtConflict) {
			metrics.Booking("conflict")
			slog.Info("booking_event", "event", "conflict", "coach_id", b.CoachID, "date", b.Date, "start", b.StartTime, "reason", err.Error())
			return booking.Booking{}, err
		}
		metrics.Booking("error")
		return booking.Booking{}, err
	}

	deps.Notifier.BookingChanged(ctx, EventBookingCreated, b, req.service.Title, Contact{
		Name:  req.coach.FullName,
		Email: req.coach.Email,
		Phone: req.coach.Phone,
	})
	if deps.Drafts != nil {
		if err := deps.Drafts.Delete(ctx, input.Actor.ID); err != nil {
			slog.Warn("draft_delete_failed", "user_id", input.Actor.ID, "error", err)
		}
	}

	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryBooking, audit.ActionCreate).
		WithResource("booking", b.ID).
		WithMetadata(map[string]string{"coach_id": b.CoachID, "date": b.Date, "start_time": b.StartTime}))
	metrics.Booking("created")
	slog.Info("booking_event", "event", "created", "booking_id", b.ID, "coach_id", b.CoachID, "student_id", b.StudentID)
	return b, nil
}

// bookingRequest is a validated booking with the records it was checked against.
type bookingRequest struct {
	booking booking.Booking
	service coachservice.Service
	coach   user.User
}

// prepareBooking runs every check that does not need the write transaction.
// PRE: only students book; coaches and admins get ErrForbidden
func prepareBooking(ctx context.Context, input CreateBookingInput, deps CreateBookingDeps) (bookingRequest, error) {
	var none bookingRequest
	if err := input.Actor.requireSignedIn(); err != nil {
		return none, err
	}
	if input.Actor.ID == input.CoachID {
		return none, booking.ErrSelfBooking
	}
	if err := input.Actor.requireStudent(); err != nil {
		return none, err
	}
	if _, err := deps.Users.GetByID(ctx, input.Actor.ID); err != nil {
		return none, fmt.Errorf("student: %w", err)
	}

	profile, err := deps.Coaches.GetByUserID(ctx, input.CoachID)
	if err != nil {
		return none, err
	}
	if !profile.Published {
		return none, coach.ErrProfileNotPublished
	}
	coachUser, err := deps.Users.GetByID(ctx, input.CoachID)
	if err != nil {
		return none, fmt.Errorf("coach: %w", err)
	}

	svc, err := deps.Services.GetByID(ctx, input.ServiceID)
	if err != nil {
		return none, err
	}
	if svc.CoachID != input.CoachID {
		return none, ErrServiceNotOffered
	}
	if err := svc.Bookable(); err != nil {
		return none, err
	}
	if input.CourtID != "" {
		c, err := deps.Courts.GetByID(ctx, input.CourtID)
		if err != nil {
			return none, err
		}
		if c.SportID != svc.SportID {
			return none, ErrCourtSport
		}
	}

	end, err := booking.EndTimeFor(input.StartTime, svc.DurationMinutes)
	if err != nil {
		return none, err
	}
	now := nowOr(deps.Now)
	b := booking.Booking{
		ID:         generateID(deps.GenerateID),
		StudentID:  input.Actor.ID,
		CoachID:    input.CoachID,
		ServiceID:  svc.ID,
		CourtID:    input.CourtID,
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    end,
		Status:     booking.StatusPending,
		PriceCents: svc.PriceCents,
		Notes:      strings.TrimSpace(input.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := b.Validate(); err != nil {
		return none, err
	}
	if err := b.EnsureFuture(now, location(deps.Location)); err != nil {
		return none, err
	}
	day, _ := timeslot.ParseDate(b.Date)

	windows, err := deps.Availability.ListByCoach(ctx, b.CoachID)
	if err != nil {
		return none, err
	}
	if len(windows) > 0 && !availability.AnyCovers(availability.ForDay(windows, availability.DayOf(day)), b.StartTime, b.EndTime) {
		return none, ErrOutsideAvailability
	}

	away, err := deps.TimeOff.ListByCoach(ctx, b.CoachID)
	if err != nil {
		return none, err
	}
	if timeoff.AnyContains(away, day) {
		return none, ErrCoachUnavailable
	}
	return bookingRequest{booking: b, service: svc, coach: coachUser}, nil
}
