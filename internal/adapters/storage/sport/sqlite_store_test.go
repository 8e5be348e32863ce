package sport_test

import (
	"context"
	"errors"
	"testing"

	"coachhub/internal/adapters/storage"
	store "coachhub/internal/adapters/storage/sport"
	"coachhub/internal/adapters/storage/storagetest"
	domain "coachhub/internal/domain/sport"
)

func TestSQLiteStore_Sports(t *testing.T) {
	ctx := context.Background()
	db := storagetest.Open(t)
	s := store.NewSQLiteStore(db)

	for _, sp := range []domain.Sport{
		{ID: "s2", Name: "Tennis", Slug: "tennis"},
		{ID: "s1", Name: "Padel", Slug: "padel"},
	} {
		if err := s.Save(ctx, sp); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	all, err := s.List(ctx)
	if err != nil || len(all) != 2 || all[0].Name != "Padel" {
		t.Fatalf("List = %+v, %v", all, err)
	}
	got, err := s.GetBySlug(ctx, "tennis")
	if err != nil || got.ID != "s2" {
		t.Errorf("GetBySlug = %+v, %v", got, err)
	}
	if err := s.Save(ctx, domain.Sport{ID: "s3", Name: "Tennis", Slug: "tennis-2"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate name = %v", err)
	}

	storagetest.SeedCity(t, db, "akl", "Auckland")
	storagetest.SeedCourt(t, db, "c1", "akl", "s2")
	if err := s.Delete(ctx, "s2"); !errors.Is(err, store.ErrInUse) {
		t.Errorf("delete referenced sport = %v, want ErrInUse", err)
	}
	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetByID(ctx, "s1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted sport = %v", err)
	}
}
