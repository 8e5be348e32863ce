package booking

import (
	"context"

	domain "coachhub/internal/domain/booking"
)

// Store defines the interface for booking persistence.
type Store interface {
	// GetByID retrieves a booking.
	// POST: wraps storage.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (domain.Booking, error)

	// CreateIfNoConflict inserts b unless an active booking of the same coach,
	// or of the same court when b has one, overlaps it on the same date.
	// PRE: b has been validated and is pending
	// POST: ErrSlotConflict or ErrCourtConflict, and nothing written, on overlap
	CreateIfNoConflict(ctx context.Context, b domain.Booking) error

	// UpdateStatus persists a transition made by booking.Transition.
	// POST: ErrStaleStatus when the stored status is no longer from
	UpdateStatus(ctx context.Context, b domain.Booking, from string) error

	// ListActiveOnDate returns the coach's slot-holding bookings on date.
	ListActiveOnDate(ctx context.Context, coachID, date string) ([]domain.Booking, error)

	// List returns bookings with display names, newest date first unless
	// filter.Ascending is set.
	List(ctx context.Context, filter ListFilter) ([]Detail, error)

	// Count returns how many bookings match filter, ignoring Limit and Offset.
	Count(ctx context.Context, filter ListFilter) (int, error)

	// CountActiveForService returns how many slot-holding bookings use a service.
	CountActiveForService(ctx context.Context, serviceID string) (int, error)

	// ListDue returns bookings in status whose date is on or before throughDate.
	ListDue(ctx context.Context, status, throughDate string) ([]domain.Booking, error)

	// Earnings sums completed bookings for a coach with from <= date <= to.
	Earnings(ctx context.Context, coachID, from, to string) (count int, cents int, err error)
}
