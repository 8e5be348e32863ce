package outbox_test

import (
	"errors"
	"testing"
	"time"

	"coachhub/internal/domain/outbox"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewEntry(t *testing.T) {
	e, err := outbox.NewEntry(outbox.ActionIdentityCleanup, outbox.IdentityCleanupPayload{UserID: "u1", Email: "a@b.co"}, now)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if e.Status != outbox.StatusPending || e.MaxAttempts != outbox.DefaultMaxAttempts || e.ID == "" {
		t.Errorf("unexpected entry %+v", e)
	}
	var p outbox.IdentityCleanupPayload
	if err := e.Decode(&p); err != nil || p.UserID != "u1" {
		t.Errorf("Decode = %+v, %v", p, err)
	}

	if _, err := outbox.NewEntry("github_issue", map[string]string{"a": "b"}, now); !errors.Is(err, outbox.ErrUnknownAction) {
		t.Errorf("unknown action = %v", err)
	}
	if _, err := outbox.NewEntry(outbox.ActionEmail, nil, now); !errors.Is(err, outbox.ErrEmptyPayload) {
		t.Errorf("nil payload = %v", err)
	}
}

func TestEntry_Lifecycle(t *testing.T) {
	e := outbox.Entry{ActionType: outbox.ActionSMS, Payload: `{}`, Status: outbox.StatusPending, MaxAttempts: 2, CreatedAt: now}

	e.MarkAttempt(now)
	e.MarkFailed(errors.New("twilio down"))
	if e.Status != outbox.StatusRetrying || !e.CanRetry() || e.IsTerminal() {
		t.Fatalf("after first failure: %+v", e)
	}

	e.MarkAttempt(now.Add(time.Minute))
	e.MarkFailed(errors.New("twilio down"))
	if e.Status != outbox.StatusFailed || e.CanRetry() || e.IsTerminal() {
		t.Fatalf("after exhausting attempts: %+v", e)
	}

	ok := outbox.Entry{Status: outbox.StatusRetrying, Attempts: 1, MaxAttempts: 5}
	ok.MarkSuccess("SM123")
	if !ok.IsTerminal() || ok.ExternalID != "SM123" {
		t.Errorf("after success: %+v", ok)
	}

	ab := outbox.Entry{Status: outbox.StatusPending, MaxAttempts: 5}
	ab.MarkAbandoned()
	if !ab.IsTerminal() || ab.CanRetry() {
		t.Errorf("abandoned entry still retryable")
	}
}

func TestEntry_Backoff(t *testing.T) {
	base, max := 30*time.Second, 10*time.Minute
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{3, 4 * time.Minute},
		{5, 10 * time.Minute},
		{40, 10 * time.Minute},
	}
	for _, tt := range tests {
		e := outbox.Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(base, max); got != tt.want {
			t.Errorf("attempts=%d delay=%v, want %v", tt.attempts, got, tt.want)
		}
	}

	e := outbox.Entry{Attempts: 1, LastAttemptedAt: now}
	if e.IsDue(now.Add(59*time.Second), base, max) {
		t.Error("due before back-off elapsed")
	}
	if !e.IsDue(now.Add(time.Minute), base, max) {
		t.Error("not due after back-off elapsed")
	}
	if fresh := (outbox.Entry{}); !fresh.IsDue(now, base, max) {
		t.Error("never-attempted entry not due")
	}
}
