package court_test

import (
	"context"
	"testing"
	"time"

	store "coachhub/internal/adapters/storage/court"
	"coachhub/internal/adapters/storage/storagetest"
	domain "coachhub/internal/domain/court"
)

func TestSQLiteStore_Courts(t *testing.T) {
	ctx := context.Background()
	db := storagetest.Open(t)
	storagetest.SeedCity(t, db, "akl", "Auckland")
	storagetest.SeedCity(t, db, "wlg", "Wellington")
	storagetest.SeedSport(t, db, "tennis", "Tennis")
	storagetest.SeedSport(t, db, "padel", "Padel")
	s := store.NewSQLiteStore(db)

	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, c := range []domain.Court{
		{ID: "c1", Name: "Stanley St", CityID: "akl", SportID: "tennis", CreatedAt: now},
		{ID: "c2", Name: "Padel Club", CityID: "akl", SportID: "padel", Indoor: true, CreatedAt: now},
		{ID: "c3", Name: "Renouf Centre", CityID: "wlg", SportID: "tennis", CreatedAt: now},
	} {
		if err := s.Save(ctx, c); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter store.ListFilter
		want   int
	}{
		{"all", store.ListFilter{}, 3},
		{"by city", store.ListFilter{CityID: "akl"}, 2},
		{"by city and sport", store.ListFilter{CityID: "akl", SportID: "tennis"}, 1},
		{"no match", store.ListFilter{CityID: "wlg", SportID: "padel"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.List(ctx, tt.filter)
			if err != nil || len(got) != tt.want {
				t.Errorf("List(%+v) = %d rows, %v; want %d", tt.filter, len(got), err, tt.want)
			}
		})
	}

	got, _ := s.GetByID(ctx, "c2")
	if !got.Indoor || !got.CreatedAt.Equal(now) {
		t.Errorf("GetByID = %+v", got)
	}

	if err := s.Save(ctx, domain.Court{ID: "c4", Name: "Nowhere", CityID: "zzz", SportID: "tennis", CreatedAt: now}); err == nil {
		t.Error("unknown city accepted")
	}
}
