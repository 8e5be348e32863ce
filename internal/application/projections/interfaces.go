package projections

import (
	"context"

	bookingStore "coachhub/internal/adapters/storage/booking"
	coachStore "coachhub/internal/adapters/storage/coach"
	reviewStore "coachhub/internal/adapters/storage/review"
	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/city"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/coachservice"
	"coachhub/internal/domain/sport"
	"coachhub/internal/domain/timeoff"
	"coachhub/internal/domain/user"
)

// Viewer is who a query runs for. The zero value is an anonymous visitor.
type Viewer struct {
	ID   string
	Role string
}

// IsAdmin reports whether the viewer has the admin role.
func (v Viewer) IsAdmin() bool {
	return v.Role == user.RoleAdmin
}

// CoachSearchStore searches coach listings.
type CoachSearchStore interface {
	Search(ctx context.Context, filter coachStore.SearchFilter) ([]coachStore.SearchResult, error)
	CountSearch(ctx context.Context, filter coachStore.SearchFilter) (int, error)
}

// CoachReader loads one coach listing.
type CoachReader interface {
	GetByUserID(ctx context.Context, userID string) (coach.Profile, error)
}

// ServiceReader loads services.
type ServiceReader interface {
	GetByID(ctx context.Context, id string) (coachservice.Service, error)
	ListByCoach(ctx context.Context, coachID string, activeOnly bool) ([]coachservice.Service, error)
}

// SportReader loads sports.
type SportReader interface {
	GetByID(ctx context.Context, id string) (sport.Sport, error)
}

// CityReader loads cities.
type CityReader interface {
	GetByID(ctx context.Context, id string) (city.City, error)
}

// ReviewReader lists a coach's reviews, newest first.
type ReviewReader interface {
	ListByCoach(ctx context.Context, coachID string, limit int) ([]reviewStore.ReviewWithAuthor, error)
}

// AvailabilityReader lists weekly windows.
type AvailabilityReader interface {
	ListByCoach(ctx context.Context, coachID string) ([]availability.Window, error)
}

// TimeOffReader lists time off.
type TimeOffReader interface {
	ListByCoach(ctx context.Context, coachID string) ([]timeoff.TimeOff, error)
}

// ActiveBookingReader lists bookings that hold a slot on a date.
type ActiveBookingReader interface {
	ListActiveOnDate(ctx context.Context, coachID, date string) ([]booking.Booking, error)
}

// BookingReader lists bookings with participant names.
type BookingReader interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	List(ctx context.Context, filter bookingStore.ListFilter) ([]bookingStore.Detail, error)
	Count(ctx context.Context, filter bookingStore.ListFilter) (int, error)
}

// EarningsReader sums completed bookings.
type EarningsReader interface {
	Earnings(ctx context.Context, coachID, from, to string) (int, int, error)
}
