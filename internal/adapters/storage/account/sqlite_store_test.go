package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"coachhub/internal/adapters/storage"
	store "coachhub/internal/adapters/storage/account"
	"coachhub/internal/adapters/storage/storagetest"
	domain "coachhub/internal/domain/account"
)

func TestSQLiteStore_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLiteStore(storagetest.Open(t))
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	acc := domain.Account{ID: "a1", Email: "Pat@Example.com ", Status: domain.StatusPendingVerification, CreatedAt: now}
	if err := s.Save(ctx, acc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.GetByEmail(ctx, "pat@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Email != "pat@example.com" || got.Status != domain.StatusPendingVerification || !got.ConfirmedAt.IsZero() {
		t.Errorf("unexpected account %+v", got)
	}

	got.RecordFailedLogin(now)
	if err := got.Confirm(now); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	again, _ := s.GetByID(ctx, "a1")
	if again.FailedLogins != 1 || again.Status != domain.StatusActive || !again.ConfirmedAt.Equal(now) {
		t.Errorf("update not persisted: %+v", again)
	}

	dup := domain.Account{ID: "a2", Email: "pat@example.com", Status: domain.StatusActive, CreatedAt: now}
	if err := s.Save(ctx, dup); !storage.IsUniqueViolation(err) {
		t.Errorf("duplicate email = %v, want unique violation", err)
	}

	if err := s.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, "a1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("after delete = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_VerificationTokens(t *testing.T) {
	ctx := context.Background()
	s := store.NewSQLiteStore(storagetest.Open(t))
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	if err := s.Save(ctx, domain.Account{ID: "a1", Email: "x@example.com", Status: domain.StatusPendingVerification, CreatedAt: now}); err != nil {
		t.Fatal(err)
	}
	tok := domain.VerificationToken{ID: "t1", AccountID: "a1", Token: "abc", ExpiresAt: now.Add(domain.VerificationTTL), CreatedAt: now}
	if err := s.SaveVerificationToken(ctx, tok); err != nil {
		t.Fatalf("SaveVerificationToken: %v", err)
	}

	got, err := s.GetVerificationToken(ctx, "abc")
	if err != nil || got.Used || got.AccountID != "a1" {
		t.Fatalf("GetVerificationToken = %+v, %v", got, err)
	}

	if err := s.InvalidateTokensForAccount(ctx, "a1"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetVerificationToken(ctx, "abc")
	if !got.Used {
		t.Error("token still usable after invalidation")
	}

	n, err := s.DeleteExpiredTokens(ctx, storage.FormatTime(now.Add(48*time.Hour)))
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredTokens = %d, %v", n, err)
	}
	if _, err := s.GetVerificationToken(ctx, "abc"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expired token still present: %v", err)
	}
}
