package projections

import (
	"context"
	"errors"
	"time"

	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/timeoff"
	"coachhub/internal/domain/timeslot"
)

// SlotStep is the spacing between candidate start times.
const SlotStep = 30

// ErrServiceNotOffered is returned when the service belongs to another coach.
var ErrServiceNotOffered = errors.New("this coach does not offer that service")

// Slot is a bookable start time and the end it implies.
type Slot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// AvailableSlotsQuery names the coach, service and day to list.
type AvailableSlotsQuery struct {
	CoachID   string
	ServiceID string
	Date      string
}

// AvailableSlotsDeps holds dependencies for GetAvailableSlots.
type AvailableSlotsDeps struct {
	Coaches      CoachReader
	Services     ServiceReader
	Availability AvailabilityReader
	TimeOff      TimeOffReader
	Bookings     ActiveBookingReader
	Location     *time.Location
	Now          func() time.Time
}

// QueryGetAvailableSlots lists start times on a date at which the service
// could be booked.
// PRE: Date is YYYY-MM-DD
// POST: every slot lies inside one availability window (08:00-20:00 when the
// coach has none), starts after now and overlaps no active booking; a date
// inside time off yields no slots
func QueryGetAvailableSlots(ctx context.Context, query AvailableSlotsQuery, deps AvailableSlotsDeps) ([]Slot, error) {
	day, err := timeslot.ParseDate(query.Date)
	if err != nil {
		return nil, err
	}
	p, err := deps.Coaches.GetByUserID(ctx, query.CoachID)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, coach.ErrProfileNotPublished
	}
	svc, err := deps.Services.GetByID(ctx, query.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.CoachID != p.UserID {
		return nil, ErrServiceNotOffered
	}
	if err := svc.Bookable(); err != nil {
		return nil, err
	}

	slots := []Slot{}
	away, err := deps.TimeOff.ListByCoach(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if timeoff.AnyContains(away, day) {
		return slots, nil
	}

	windows, err := deps.Availability.ListByCoach(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	var today []availability.Window
	if len(windows) == 0 {
		today = []availability.Window{{StartTime: availability.DefaultDayStart, EndTime: availability.DefaultDayEnd}}
	} else {
		today = availability.ForDay(windows, availability.DayOf(day))
	}
	if len(today) == 0 {
		return slots, nil
	}

	taken, err := deps.Bookings.ListActiveOnDate(ctx, p.UserID, query.Date)
	if err != nil {
		return nil, err
	}

	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	for _, w := range today {
		first, err := timeslot.Minutes(w.StartTime)
		if err != nil {
			return nil, err
		}
		last, err := timeslot.Minutes(w.EndTime)
		if err != nil {
			return nil, err
		}
		for m := first; m+svc.DurationMinutes <= last; m += SlotStep {
			s := Slot{StartTime: timeslot.FromMinutes(m), EndTime: timeslot.FromMinutes(m + svc.DurationMinutes)}
			if slotTaken(taken, s) {
				continue
			}
			at, err := timeslot.At(query.Date, s.StartTime, loc)
			if err != nil || !at.After(now) {
				continue
			}
			slots = append(slots, s)
		}
	}
	return slots, nil
}

func slotTaken(bookings []booking.Booking, s Slot) bool {
	for _, b := range bookings {
		if b.IsActive() && booking.Overlaps(b.StartTime, b.EndTime, s.StartTime, s.EndTime) {
			return true
		}
	}
	return false
}
