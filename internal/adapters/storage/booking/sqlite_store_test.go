package booking_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"coachhub/internal/adapters/storage"
	store "coachhub/internal/adapters/storage/booking"
	"coachhub/internal/adapters/storage/storagetest"
	domain "coachhub/internal/domain/booking"
)

var created = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*sql.DB, *store.SQLiteStore) {
	t.Helper()
	db := storagetest.Open(t)
	storagetest.SeedCity(t, db, "akl", "Auckland")
	storagetest.SeedSport(t, db, "tennis", "Tennis")
	storagetest.SeedCoach(t, db, "c1")
	storagetest.SeedCoach(t, db, "c2")
	storagetest.SeedUser(t, db, "s1", "student")
	storagetest.SeedUser(t, db, "s2", "student")
	storagetest.SeedService(t, db, "svc1", "c1", "tennis", 60, 6000)
	storagetest.SeedService(t, db, "svc2", "c2", "tennis", 60, 4000)
	storagetest.SeedCourt(t, db, "court1", "akl", "tennis")
	return db, store.NewSQLiteStore(db)
}

func newBooking(id, student, coach, service, date, start, end string) domain.Booking {
	return domain.Booking{
		ID: id, StudentID: student, CoachID: coach, ServiceID: service,
		Date: date, StartTime: start, EndTime: end,
		Status: domain.StatusPending, PriceCents: 6000,
		CreatedAt: created, UpdatedAt: created,
	}
}

func TestSQLiteStore_CreateIfNoConflict(t *testing.T) {
	ctx := context.Background()
	_, s := setup(t)

	first := newBooking("b1", "s1", "c1", "svc1", "2026-05-10", "10:00", "11:00")
	first.CourtID = "court1"
	if err := s.CreateIfNoConflict(ctx, first); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	tests := []struct {
		name    string
		b       domain.Booking
		court   string
		wantErr error
	}{
		{name: "same coach overlapping", b: newBooking("b2", "s2", "c1", "svc1", "2026-05-10", "10:30", "11:30"), wantErr: store.ErrSlotConflict},
		{name: "same coach contained", b: newBooking("b3", "s2", "c1", "svc1", "2026-05-10", "10:15", "10:45"), wantErr: store.ErrSlotConflict},
		{name: "same coach adjacent", b: newBooking("b4", "s2", "c1", "svc1", "2026-05-10", "11:00", "12:00")},
		{name: "same coach other day", b: newBooking("b5", "s2", "c1", "svc1", "2026-05-11", "10:00", "11:00")},
		{name: "other coach same court", b: newBooking("b6", "s2", "c2", "svc2", "2026-05-10", "10:30", "11:30"), court: "court1", wantErr: store.ErrCourtConflict},
		{name: "other coach no court", b: newBooking("b7", "s2", "c2", "svc2", "2026-05-10", "10:30", "11:30")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.b.CourtID = tt.court
			err := s.CreateIfNoConflict(ctx, tt.b)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateIfNoConflict = %v, want %v", err, tt.wantErr)
			}
			_, getErr := s.GetByID(ctx, tt.b.ID)
			if tt.wantErr != nil && !errors.Is(getErr, storage.ErrNotFound) {
				t.Errorf("rejected booking was stored: %v", getErr)
			}
			if tt.wantErr == nil && getErr != nil {
				t.Errorf("accepted booking missing: %v", getErr)
			}
		})
	}

	got, err := s.GetByID(ctx, "b1")
	if err != nil || got.CourtID != "court1" || !got.CreatedAt.Equal(created) {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
	noCourt, _ := s.GetByID(ctx, "b7")
	if noCourt.CourtID != "" {
		t.Errorf("court id = %q, want empty", noCourt.CourtID)
	}
}

func TestSQLiteStore_CancelledBookingFreesSlot(t *testing.T) {
	ctx := context.Background()
	_, s := setup(t)

	b := newBooking("b1", "s1", "c1", "svc1", "2026-05-10", "10:00", "11:00")
	if err := s.CreateIfNoConflict(ctx, b); err != nil {
		t.Fatal(err)
	}
	b.Status = domain.StatusCancelled
	b.CancelledBy = domain.ActorStudent
	b.CancelReason = "sick"
	b.UpdatedAt = created.Add(time.Hour)
	if err := s.UpdateStatus(ctx, b, domain.StatusPending); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := s.CreateIfNoConflict(ctx, newBooking("b2", "s2", "c1", "svc1", "2026-05-10", "10:00", "11:00")); err != nil {
		t.Errorf("slot should be free after cancellation: %v", err)
	}

	got, _ := s.GetByID(ctx, "b1")
	if got.Status != domain.StatusCancelled || got.CancelReason != "sick" || got.CancelledBy != domain.ActorStudent {
		t.Errorf("cancelled booking = %+v", got)
	}
}

func TestSQLiteStore_ConcurrentRequestsForOneSlot(t *testing.T) {
	ctx := context.Background()
	_, s := setup(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := newBooking(fmt.Sprintf("b%d", i), "s1", "c1", "svc1", "2026-05-10", "10:00", "11:00")
			errs <- s.CreateIfNoConflict(ctx, b)
		}(i)
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, store.ErrSlotConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Errorf("ok=%d conflicts=%d, want 1 and %d", ok, conflicts, n-1)
	}
}

func TestSQLiteStore_UpdateStatusStale(t *testing.T) {
	ctx := context.Background()
	_, s := setup(t)

	b := newBooking("b1", "s1", "c1", "svc1", "2026-05-10", "10:00", "11:00")
	if err := s.CreateIfNoConflict(ctx, b); err != nil {
		t.Fatal(err)
	}
	b.Status = domain.StatusConfirmed
	if err := s.UpdateStatus(ctx, b, domain.StatusPending); err != nil {
		t.Fatal(err)
	}
	b.Status = domain.StatusDeclined
	if err := s.UpdateStatus(ctx, b, domain.StatusPending); !errors.Is(err, store.ErrStaleStatus) {
		t.Errorf("second transition from pending = %v, want ErrStaleStatus", err)
	}
	missing := newBooking("nope", "s1", "c1", "svc1", "2026-05-10", "10:00", "11:00")
	if err := s.UpdateStatus(ctx, missing, domain.StatusPending); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing booking = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ListingAndStats(t *testing.T) {
	ctx := context.Background()
	db, s := setup(t)

	rows := []struct {
		b      domain.Booking
		status string
	}{
		{newBooking("b1", "s1", "c1", "svc1", "2026-04-01", "09:00", "10:00"), domain.StatusCompleted},
		{newBooking("b2", "s1", "c1", "svc1", "2026-04-15", "09:00", "10:00"), domain.StatusCompleted},
		{newBooking("b3", "s2", "c1", "svc1", "2026-04-20", "09:00", "10:00"), domain.StatusCancelled},
		{newBooking("b4", "s1", "c1", "svc1", "2026-05-10", "09:00", "10:00"), domain.StatusPending},
		{newBooking("b5", "s2", "c2", "svc2", "2026-05-10", "09:00", "10:00"), domain.StatusConfirmed},
	}
	for _, r := range rows {
		if err := s.CreateIfNoConflict(ctx, r.b); err != nil {
			t.Fatal(err)
		}
		if r.status != domain.StatusPending {
			r.b.Status = r.status
			if err := s.UpdateStatus(ctx, r.b, domain.StatusPending); err != nil {
				t.Fatal(err)
			}
		}
	}
	if _, err := db.Exec(`INSERT INTO review (id, booking_id, student_id, coach_id, rating, created_at) VALUES ('r1', 'b1', 's1', 'c1', 5, ?)`,
		storage.FormatTime(created)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter store.ListFilter
		want   []string
	}{
		{name: "all newest first", filter: store.ListFilter{}, want: []string{"b5", "b4", "b3", "b2", "b1"}},
		{name: "student ascending", filter: store.ListFilter{StudentID: "s1", Ascending: true}, want: []string{"b1", "b2", "b4"}},
		{name: "coach active", filter: store.ListFilter{CoachID: "c1", Statuses: domain.ActiveStatuses}, want: []string{"b4"}},
		{name: "date range", filter: store.ListFilter{From: "2026-04-10", To: "2026-04-30"}, want: []string{"b3", "b2"}},
		{name: "awaiting review", filter: store.ListFilter{StudentID: "s1", Statuses: []string{domain.StatusCompleted}, Unreviewed: true}, want: []string{"b2"}},
		{name: "paged", filter: store.ListFilter{Limit: 2, Offset: 2}, want: []string{"b3", "b2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d rows, want %v", len(got), tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("row %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}

	details, _ := s.List(ctx, store.ListFilter{StudentID: "s1", Statuses: []string{domain.StatusCompleted}, Ascending: true})
	if d := details[0]; d.CoachName != "Coach c1" || d.StudentName != "User s1" || d.ServiceTitle != "Session svc1" || !d.Reviewed {
		t.Errorf("detail = %+v", d)
	}

	if n, err := s.Count(ctx, store.ListFilter{CoachID: "c1"}); err != nil || n != 4 {
		t.Errorf("Count = %d, %v", n, err)
	}
	if n, _ := s.CountActiveForService(ctx, "svc1"); n != 1 {
		t.Errorf("CountActiveForService = %d, want 1", n)
	}
	count, cents, err := s.Earnings(ctx, "c1", "2026-04-01", "2026-04-30")
	if err != nil || count != 2 || cents != 12000 {
		t.Errorf("Earnings = %d/%d, %v", count, cents, err)
	}
	due, _ := s.ListDue(ctx, domain.StatusPending, "2026-05-10")
	if len(due) != 1 || due[0].ID != "b4" {
		t.Errorf("ListDue = %+v", due)
	}
	active, _ := s.ListActiveOnDate(ctx, "c2", "2026-05-10")
	if len(active) != 1 || active[0].ID != "b5" {
		t.Errorf("ListActiveOnDate = %+v", active)
	}
}
