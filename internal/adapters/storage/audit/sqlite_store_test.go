package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coachhub/internal/adapters/storage"
	store "coachhub/internal/adapters/storage/audit"
	"coachhub/internal/adapters/storage/storagetest"
	domain "coachhub/internal/domain/audit"
)

func TestSQLiteStore_SaveAndList(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLiteStore(storagetest.Open(t))

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	events := []domain.Event{
		domain.NewEvent("u1", "u1@example.com", "student", domain.CategoryAccount, domain.ActionCreate),
		domain.NewEvent("u1", "u1@example.com", "student", domain.CategoryBooking, domain.ActionCreate).WithResource("booking", "b1"),
		domain.NewEvent("c1", "c1@example.com", "coach", domain.CategoryBooking, domain.ActionStatusChange).
			WithResource("booking", "b1").WithMetadata(map[string]string{"to": "confirmed"}),
		domain.SystemEvent(domain.CategorySecurity, domain.ActionLogin).WithSeverity(domain.SeverityWarning),
	}
	for i := range events {
		events[i].Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := s.Save(ctx, events[i]); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter store.Filter
		want   int
	}{
		{name: "all", filter: store.Filter{}, want: 4},
		{name: "category", filter: store.Filter{Category: domain.CategoryBooking}, want: 2},
		{name: "actor", filter: store.Filter{ActorID: "u1"}, want: 2},
		{name: "resource", filter: store.Filter{ResourceID: "b1"}, want: 2},
		{name: "severity", filter: store.Filter{Severity: domain.SeverityWarning}, want: 1},
		{name: "from", filter: store.Filter{From: storage.FormatTime(base.Add(2 * time.Minute))}, want: 2},
		{name: "limited", filter: store.Filter{Limit: 3}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil || len(got) != tt.want {
				t.Fatalf("List = %d events, %v; want %d", len(got), err, tt.want)
			}
		})
	}

	all, _ := s.List(ctx, store.Filter{})
	if all[0].Category != domain.CategorySecurity {
		t.Errorf("newest first: got %s", all[0].Category)
	}
	if n, _ := s.Count(ctx, store.Filter{Category: domain.CategoryBooking, Limit: 1}); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}

	got, err := s.GetByID(ctx, events[2].ID)
	if err != nil || got.Metadata != `{"to":"confirmed"}` || !got.Timestamp.Equal(events[2].Timestamp) {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
	if _, err := s.GetByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing = %v", err)
	}
}
