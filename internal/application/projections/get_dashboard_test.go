package projections

import (
	"context"
	"testing"

	bookingStore "coachhub/internal/adapters/storage/booking"
	"coachhub/internal/domain/booking"
)

func dashboardBookings() *mockBookings {
	return &mockBookings{
		bookings: []booking.Booking{
			{ID: "up1", StudentID: "s1", CoachID: "c1", Date: "2026-03-05", StartTime: "10:00", EndTime: "11:00", Status: booking.StatusConfirmed, PriceCents: 5000},
			{ID: "up2", StudentID: "s1", CoachID: "c1", Date: "2026-03-04", StartTime: "10:00", EndTime: "11:00", Status: booking.StatusPending, PriceCents: 5000},
			{ID: "old1", StudentID: "s1", CoachID: "c1", Date: "2026-02-20", StartTime: "10:00", EndTime: "11:00", Status: booking.StatusCompleted, PriceCents: 5000},
			{ID: "old2", StudentID: "s1", CoachID: "c1", Date: "2026-02-21", StartTime: "10:00", EndTime: "11:00", Status: booking.StatusCompleted, PriceCents: 5000},
			{ID: "gone", StudentID: "s1", CoachID: "c1", Date: "2026-02-22", StartTime: "10:00", EndTime: "11:00", Status: booking.StatusCancelled},
			{ID: "else", StudentID: "s2", CoachID: "c1", Date: "2026-03-06", StartTime: "10:00", EndTime: "11:00", Status: booking.StatusPending},
		},
		reviewed: map[string]bool{"old1": true},
		earnings: [2]int{3, 15000},
	}
}

func ids(t *testing.T, section string, got []string, want ...string) {
	t.Helper()
	if !equalStrings(got, want) {
		t.Errorf("%s = %v, want %v", section, got, want)
	}
}

func TestQueryGetStudentDashboard(t *testing.T) {
	store := dashboardBookings()
	d, err := QueryGetStudentDashboard(context.Background(), "s1", DashboardDeps{Bookings: store, Earnings: store, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	collect := func(ds []bookingStore.Detail) []string {
		out := []string{}
		for _, x := range ds {
			out = append(out, x.ID)
		}
		return out
	}
	ids(t, "upcoming", collect(d.Upcoming), "up1", "up2")
	ids(t, "past", collect(d.Past), "old1", "old2", "gone")
	ids(t, "awaiting review", collect(d.AwaitingReview), "old2")

	if f := store.filters[0]; f.From != "2026-03-03" || !f.Ascending {
		t.Errorf("upcoming filter = %+v", f)
	}
}

func TestQueryGetStudentDashboard_Empty(t *testing.T) {
	store := &mockBookings{}
	d, err := QueryGetStudentDashboard(context.Background(), "nobody", DashboardDeps{Bookings: store, Earnings: store, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if d.Upcoming == nil || d.Past == nil || d.AwaitingReview == nil {
		t.Error("sections must be empty lists, not nil")
	}
}

func TestQueryGetCoachDashboard(t *testing.T) {
	store := dashboardBookings()
	d, err := QueryGetCoachDashboard(context.Background(), "c1", DashboardDeps{Bookings: store, Earnings: store, Now: fixedNow})
	if err != nil {
		t.Fatal(err)
	}
	if len(d.PendingRequests) != 2 || len(d.UpcomingConfirmed) != 1 {
		t.Errorf("pending=%d confirmed=%d", len(d.PendingRequests), len(d.UpcomingConfirmed))
	}
	if d.CompletedCount != 3 || d.EarningsCents != 15000 || d.Month != "2026-03" {
		t.Errorf("earnings = %d/%d for %s", d.CompletedCount, d.EarningsCents, d.Month)
	}
	last := store.filters[len(store.filters)-1]
	if last.From != "2026-03-01" || last.To != "2026-03-31" {
		t.Errorf("earnings range = %s..%s", last.From, last.To)
	}
}
