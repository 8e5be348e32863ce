package projections

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"coachhub/internal/adapters/storage"
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
)

var fixedTime = time.Date(2026, 3, 3, 9, 40, 0, 0, time.UTC) // a Tuesday

func fixedNow() time.Time { return fixedTime }

func missing(what string) error {
	return fmt.Errorf("%s %w", what, storage.ErrNotFound)
}

type mockCoaches struct {
	profiles map[string]coach.Profile
	results  []coachStore.SearchResult
	lastSort string
	searched int
}

func (m *mockCoaches) GetByUserID(_ context.Context, id string) (coach.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return coach.Profile{}, missing("coach " + id)
	}
	return p, nil
}

// Search filters the seeded results the way the SQL store does for the
// fields tests exercise.
func (m *mockCoaches) Search(ctx context.Context, f coachStore.SearchFilter) ([]coachStore.SearchResult, error) {
	m.searched++
	m.lastSort = f.Sort
	all := m.matching(f)
	if f.Offset >= len(all) {
		return nil, nil
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[f.Offset:end], nil
}

func (m *mockCoaches) CountSearch(_ context.Context, f coachStore.SearchFilter) (int, error) {
	return len(m.matching(f)), nil
}

func (m *mockCoaches) matching(f coachStore.SearchFilter) []coachStore.SearchResult {
	var out []coachStore.SearchResult
	for _, r := range m.results {
		p := r.Profile
		if f.PublishedOnly && !p.Published {
			continue
		}
		if f.MaxRateCents > 0 && p.HourlyRateCents > f.MaxRateCents {
			continue
		}
		if p.RatingAvg < f.MinRating {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(p.DisplayName), strings.ToLower(f.Query)) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Profile.RatingAvg > out[j].Profile.RatingAvg })
	return out
}

type mockServices struct {
	services map[string]coachservice.Service
}

func (m *mockServices) GetByID(_ context.Context, id string) (coachservice.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return coachservice.Service{}, missing("service " + id)
	}
	return s, nil
}

func (m *mockServices) ListByCoach(_ context.Context, coachID string, activeOnly bool) ([]coachservice.Service, error) {
	var out []coachservice.Service
	for _, s := range m.services {
		if s.CoachID == coachID && (s.Active || !activeOnly) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockSports map[string]sport.Sport

func (m mockSports) GetByID(_ context.Context, id string) (sport.Sport, error) {
	s, ok := m[id]
	if !ok {
		return sport.Sport{}, missing("sport " + id)
	}
	return s, nil
}

type mockCities map[string]city.City

func (m mockCities) GetByID(_ context.Context, id string) (city.City, error) {
	c, ok := m[id]
	if !ok {
		return city.City{}, missing("city " + id)
	}
	return c, nil
}

type mockReviews struct {
	reviews   []reviewStore.ReviewWithAuthor
	lastLimit int
}

func (m *mockReviews) ListByCoach(_ context.Context, coachID string, limit int) ([]reviewStore.ReviewWithAuthor, error) {
	m.lastLimit = limit
	var out []reviewStore.ReviewWithAuthor
	for _, r := range m.reviews {
		if r.CoachID == coachID && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockWindows map[string][]availability.Window

func (m mockWindows) ListByCoach(_ context.Context, coachID string) ([]availability.Window, error) {
	return m[coachID], nil
}

type mockAway map[string][]timeoff.TimeOff

func (m mockAway) ListByCoach(_ context.Context, coachID string) ([]timeoff.TimeOff, error) {
	return m[coachID], nil
}

type mockBookings struct {
	bookings []booking.Booking
	reviewed map[string]bool
	filters  []bookingStore.ListFilter
	earnings [2]int
}

func (m *mockBookings) GetByID(_ context.Context, id string) (booking.Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return booking.Booking{}, missing("booking " + id)
}

func (m *mockBookings) ListActiveOnDate(_ context.Context, coachID, date string) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.CoachID == coachID && b.Date == date && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookings) matching(f bookingStore.ListFilter) []bookingStore.Detail {
	var out []bookingStore.Detail
	for _, b := range m.bookings {
		if f.StudentID != "" && b.StudentID != f.StudentID {
			continue
		}
		if f.CoachID != "" && b.CoachID != f.CoachID {
			continue
		}
		if len(f.Statuses) > 0 && !contains(f.Statuses, b.Status) {
			continue
		}
		if (f.From != "" && b.Date < f.From) || (f.To != "" && b.Date > f.To) {
			continue
		}
		if f.Unreviewed && m.reviewed[b.ID] {
			continue
		}
		out = append(out, bookingStore.Detail{Booking: b, Reviewed: m.reviewed[b.ID]})
	}
	return out
}

func (m *mockBookings) List(_ context.Context, f bookingStore.ListFilter) ([]bookingStore.Detail, error) {
	m.filters = append(m.filters, f)
	all := m.matching(f)
	if f.Offset >= len(all) {
		return nil, nil
	}
	end := len(all)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], nil
}

func (m *mockBookings) Count(_ context.Context, f bookingStore.ListFilter) (int, error) {
	return len(m.matching(f)), nil
}

func (m *mockBookings) Earnings(_ context.Context, coachID, from, to string) (int, int, error) {
	m.filters = append(m.filters, bookingStore.ListFilter{CoachID: coachID, From: from, To: to})
	return m.earnings[0], m.earnings[1], nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
