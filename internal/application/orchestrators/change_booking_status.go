package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	bookingStore "coachhub/internal/adapters/storage/booking"
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/timeslot"
)

// ErrUnknownBookingAction is returned for actions other than confirm, decline, cancel and complete.
var ErrUnknownBookingAction = errors.New("unknown booking action")

// Booking actions accepted from clients.
const (
	BookingActionConfirm  = "confirm"
	BookingActionDecline  = "decline"
	BookingActionCancel   = "cancel"
	BookingActionComplete = "complete"
)

var actionStatus = map[string]string{
	BookingActionConfirm:  booking.StatusConfirmed,
	BookingActionDecline:  booking.StatusDeclined,
	BookingActionCancel:   booking.StatusCancelled,
	BookingActionComplete: booking.StatusCompleted,
}

// BookingStatusStore loads bookings and persists transitions.
type BookingStatusStore interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	UpdateStatus(ctx context.Context, b booking.Booking, from string) error
}

// ChangeBookingStatusInput carries input for the orchestrator.
type ChangeBookingStatusInput struct {
	Actor     Actor
	BookingID string
	Action    string
	Reason    string
}

// ChangeBookingStatusDeps holds dependencies for ChangeBookingStatus.
type ChangeBookingStatusDeps struct {
	Bookings BookingStatusStore
	Users    BookingUserLookup
	Services BookingServiceLookup
	Notifier *Notifier
	Audit    AuditStore
	Location *time.Location
	Now      func() time.Time
}

// ExecuteChangeBookingStatus applies a participant's action to a booking.
// PRE: Actor is the booking's coach or student, or an admin
// POST: the stored status moved along the booking state machine, or nothing changed
func ExecuteChangeBookingStatus(ctx context.Context, input ChangeBookingStatusInput, deps ChangeBookingStatusDeps) (booking.Booking, error) {
	if err := input.Actor.requireSignedIn(); err != nil {
		return booking.Booking{}, err
	}
	to, ok := actionStatus[input.Action]
	if !ok {
		return booking.Booking{}, ErrUnknownBookingAction
	}
	b, err := deps.Bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return booking.Booking{}, err
	}

	var role string
	switch {
	case input.Actor.IsAdmin():
		role = booking.ActorAdmin
	case input.Actor.ID == b.CoachID:
		role = booking.ActorCoach
	case input.Actor.ID == b.StudentID:
		role = booking.ActorStudent
	default:
		return booking.Booking{}, ErrForbidden
	}

	from := b.Status
	if err := b.Transition(to, role, input.Reason, nowOr(deps.Now), location(deps.Location)); err != nil {
		return booking.Booking{}, err
	}
	if err := deps.Bookings.UpdateStatus(ctx, b, from); err != nil {
		return booking.Booking{}, err
	}

	var notify []string
	switch role {
	case booking.ActorCoach:
		notify = []string{b.StudentID}
	case booking.ActorStudent:
		notify = []string{b.CoachID}
	default:
		notify = []string{b.StudentID, b.CoachID}
	}
	notifyParticipants(ctx, deps.Notifier, deps.Users, deps.Services, b, notify...)

	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryBooking, audit.ActionStatusChange).
		WithResource("booking", b.ID).
		WithMetadata(map[string]string{"from": from, "to": b.Status, "reason": b.CancelReason}))
	slog.Info("booking_event", "event", "status_changed", "booking_id", b.ID, "from", from, "to", b.Status, "actor_role", role)
	return b, nil
}

// notifyParticipants looks up each user and sends the status notification.
// Lookup failures are logged; the status change has already been stored.
func notifyParticipants(ctx context.Context, n *Notifier, users BookingUserLookup, services BookingServiceLookup, b booking.Booking, userIDs ...string) {
	if n == nil {
		return
	}
	title := "Your session"
	if svc, err := services.GetByID(ctx, b.ServiceID); err == nil {
		title = svc.Title
	}
	contacts := make([]Contact, 0, len(userIDs))
	for _, id := range userIDs {
		u, err := users.GetByID(ctx, id)
		if err != nil {
			slog.Warn("notification_lookup_failed", "user_id", id, "error", err)
			continue
		}
		contacts = append(contacts, Contact{Name: u.FullName, Email: u.Email, Phone: u.Phone})
	}
	n.BookingChanged(ctx, BookingStatusEvent(b.Status), b, title, contacts...)
}

// --- Housekeeping ---

// BookingHousekeepingStore finds bookings whose time has passed.
type BookingHousekeepingStore interface {
	ListDue(ctx context.Context, status, throughDate string) ([]booking.Booking, error)
	UpdateStatus(ctx context.Context, b booking.Booking, from string) error
}

// HousekeepingDeps holds dependencies for BookingHousekeeping.
type HousekeepingDeps struct {
	Bookings BookingHousekeepingStore
	Users    BookingUserLookup
	Services BookingServiceLookup
	Notifier *Notifier
	Audit    AuditStore
	Location *time.Location
	Now      func() time.Time
}

// HousekeepingResult counts what one run changed.
type HousekeepingResult struct {
	Completed int
	Expired   int
}

// ExecuteBookingHousekeeping completes confirmed sessions that have ended and
// cancels pending requests whose start passed without an answer.
// POST: bookings changed concurrently by a participant are skipped
func ExecuteBookingHousekeeping(ctx context.Context, deps HousekeepingDeps) (HousekeepingResult, error) {
	var res HousekeepingResult
	now := nowOr(deps.Now)
	today := now.In(location(deps.Location)).Format(timeslot.DateLayout)

	confirmed, err := deps.Bookings.ListDue(ctx, booking.StatusConfirmed, today)
	if err != nil {
		return res, err
	}
	for _, b := range confirmed {
		if err := b.Transition(booking.StatusCompleted, booking.ActorSystem, "", now, location(deps.Location)); err != nil {
			continue
		}
		if housekeep(ctx, deps, b, booking.StatusConfirmed, b.StudentID) {
			res.Completed++
		}
	}

	pending, err := deps.Bookings.ListDue(ctx, booking.StatusPending, today)
	if err != nil {
		return res, err
	}
	for _, b := range pending {
		start, err := b.StartsAt(location(deps.Location))
		if err != nil || now.Before(start) {
			continue
		}
		if err := b.Transition(booking.StatusCancelled, booking.ActorSystem, booking.ReasonExpired, now, location(deps.Location)); err != nil {
			continue
		}
		if housekeep(ctx, deps, b, booking.StatusPending, b.StudentID, b.CoachID) {
			res.Expired++
		}
	}

	if res.Completed > 0 || res.Expired > 0 {
		slog.Info("booking_event", "event", "housekeeping", "completed", res.Completed, "expired", res.Expired)
	}
	return res, nil
}

func housekeep(ctx context.Context, deps HousekeepingDeps, b booking.Booking, from string, notify ...string) bool {
	err := deps.Bookings.UpdateStatus(ctx, b, from)
	if errors.Is(err, bookingStore.ErrStaleStatus) {
		return false
	}
	if err != nil {
		slog.Error("housekeeping_update_failed", "booking_id", b.ID, "error", err)
		return false
	}
	notifyParticipants(ctx, deps.Notifier, deps.Users, deps.Services, b, notify...)
	recordAudit(ctx, deps.Audit, audit.SystemEvent(audit.CategoryBooking, audit.ActionStatusChange).
		WithResource("booking", b.ID).
		WithMetadata(map[string]string{"from": from, "to": b.Status, "reason": b.CancelReason}))
	return true
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
