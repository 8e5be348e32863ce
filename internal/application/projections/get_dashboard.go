package projections

import (
	"context"
	"time"

	bookingStore "coachhub/internal/adapters/storage/booking"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/timeslot"
)

// dashboardListLimit bounds each dashboard section.
const dashboardListLimit = 50

// StudentDashboard groups a student's bookings.
type StudentDashboard struct {
	Upcoming       []bookingStore.Detail `json:"upcoming"`
	Past           []bookingStore.Detail `json:"past"`
	AwaitingReview []bookingStore.Detail `json:"awaiting_review"`
}

// CoachDashboard groups a coach's bookings and this month's earnings.
type CoachDashboard struct {
	PendingRequests   []bookingStore.Detail `json:"pending_requests"`
	UpcomingConfirmed []bookingStore.Detail `json:"upcoming_confirmed"`
	CompletedCount    int                   `json:"completed_count"`
	EarningsCents     int                   `json:"earnings_cents"`
	Month             string                `json:"month"`
}

// DashboardDeps holds dependencies for the dashboards.
type DashboardDeps struct {
	Bookings BookingReader
	Earnings EarningsReader
	Location *time.Location
	Now      func() time.Time
}

func (d DashboardDeps) today() (time.Time, string) {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	now = now.In(loc)
	return now, now.Format(timeslot.DateLayout)
}

// QueryGetStudentDashboard lists a student's upcoming and past sessions.
// PRE: studentID is non-empty
// POST: Upcoming holds pending and confirmed bookings from today on, soonest
// first; AwaitingReview holds completed bookings with no review yet
func QueryGetStudentDashboard(ctx context.Context, studentID string, deps DashboardDeps) (StudentDashboard, error) {
	_, today := deps.today()
	var d StudentDashboard
	var err error

	d.Upcoming, err = deps.Bookings.List(ctx, bookingStore.ListFilter{
		StudentID: studentID,
		Statuses:  booking.ActiveStatuses,
		From:      today,
		Ascending: true,
		Limit:     dashboardListLimit,
	})
	if err != nil {
		return StudentDashboard{}, err
	}
	d.Past, err = deps.Bookings.List(ctx, bookingStore.ListFilter{
		StudentID: studentID,
		Statuses:  []string{booking.StatusCompleted, booking.StatusCancelled, booking.StatusDeclined},
		Limit:     dashboardListLimit,
	})
	if err != nil {
		return StudentDashboard{}, err
	}
	d.AwaitingReview, err = deps.Bookings.List(ctx, bookingStore.ListFilter{
		StudentID:  studentID,
		Statuses:   []string{booking.StatusCompleted},
		Unreviewed: true,
		Limit:      dashboardListLimit,
	})
	if err != nil {
		return StudentDashboard{}, err
	}
	d.Upcoming = nonNil(d.Upcoming)
	d.Past = nonNil(d.Past)
	d.AwaitingReview = nonNil(d.AwaitingReview)
	return d, nil
}

// QueryGetCoachDashboard lists a coach's requests and sessions and sums the
// current month.
// PRE: coachID is non-empty
// POST: EarningsCents is the price sum of bookings completed this calendar
// month in the marketplace time zone
func QueryGetCoachDashboard(ctx context.Context, coachID string, deps DashboardDeps) (CoachDashboard, error) {
	now, today := deps.today()
	var d CoachDashboard
	var err error

	d.PendingRequests, err = deps.Bookings.List(ctx, bookingStore.ListFilter{
		CoachID:   coachID,
		Statuses:  []string{booking.StatusPending},
		From:      today,
		Ascending: true,
		Limit:     dashboardListLimit,
	})
	if err != nil {
		return CoachDashboard{}, err
	}
	d.UpcomingConfirmed, err = deps.Bookings.List(ctx, bookingStore.ListFilter{
		CoachID:   coachID,
		Statuses:  []string{booking.StatusConfirmed},
		From:      today,
		Ascending: true,
		Limit:     dashboardListLimit,
	})
	if err != nil {
		return CoachDashboard{}, err
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	d.CompletedCount, d.EarningsCents, err = deps.Earnings.Earnings(ctx, coachID,
		first.Format(timeslot.DateLayout), last.Format(timeslot.DateLayout))
	if err != nil {
		return CoachDashboard{}, err
	}
	d.Month = first.Format("2006-01")
	d.PendingRequests = nonNil(d.PendingRequests)
	d.UpcomingConfirmed = nonNil(d.UpcomingConfirmed)
	return d, nil
}

func nonNil(ds []bookingStore.Detail) []bookingStore.Detail {
	if ds == nil {
		return []bookingStore.Detail{}
	}
	return ds
}
