package projections

import (
	"context"
	"errors"

	bookingStore "coachhub/internal/adapters/storage/booking"
	"coachhub/internal/application/listutil"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/user"
)

// ErrForbidden is returned when a viewer asks for bookings that are not theirs.
var ErrForbidden = errors.New("you are not allowed to see that")

// ListBookingsQuery carries list filters. Non-admin viewers are always
// limited to their own bookings.
type ListBookingsQuery struct {
	Status    string
	CoachID   string
	StudentID string
	Range     listutil.DateRange
	Page      listutil.PageParams
}

// BookingPage is a page of bookings.
type BookingPage struct {
	Bookings []bookingStore.Detail `json:"bookings"`
	Page     listutil.PageInfo     `json:"page"`
}

// QueryListBookings lists bookings visible to viewer, newest first.
// PRE: viewer is signed in
// POST: students see bookings they made, coaches bookings made with them,
// admins everything matching the filters
func QueryListBookings(ctx context.Context, query ListBookingsQuery, viewer Viewer, store BookingReader) (BookingPage, error) {
	if viewer.ID == "" {
		return BookingPage{}, ErrForbidden
	}
	filter := bookingStore.ListFilter{
		CoachID:   query.CoachID,
		StudentID: query.StudentID,
		From:      query.Range.From,
		To:        query.Range.To,
	}
	if query.Status != "" {
		if !validStatus(query.Status) {
			return BookingPage{}, booking.ErrInvalidStatus
		}
		filter.Statuses = []string{query.Status}
	}
	switch viewer.Role {
	case user.RoleAdmin:
	case user.RoleCoach:
		filter.CoachID = viewer.ID
		filter.StudentID = ""
	default:
		filter.StudentID = viewer.ID
		filter.CoachID = ""
	}

	page := query.Page
	if page.Page < 1 || page.PerPage < 1 {
		page = listutil.PageParams{Page: 1, PerPage: listutil.DefaultPerPage}
	}
	total, err := store.Count(ctx, filter)
	if err != nil {
		return BookingPage{}, err
	}
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	rows, err := store.List(ctx, filter)
	if err != nil {
		return BookingPage{}, err
	}
	return BookingPage{Bookings: nonNil(rows), Page: listutil.NewPageInfo(page, total)}, nil
}

// QueryGetBooking loads one booking for a participant or an admin.
// POST: ErrForbidden for anyone else
func QueryGetBooking(ctx context.Context, id string, viewer Viewer, store BookingReader) (booking.Booking, error) {
	b, err := store.GetByID(ctx, id)
	if err != nil {
		return booking.Booking{}, err
	}
	if viewer.IsAdmin() || (viewer.ID != "" && (viewer.ID == b.StudentID || viewer.ID == b.CoachID)) {
		return b, nil
	}
	return booking.Booking{}, ErrForbidden
}

func validStatus(status string) bool {
	for _, s := range booking.ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
