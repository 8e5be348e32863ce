package storage

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2026, 7, 1, 9, 30, 15, 500, time.FixedZone("NZST", 12*3600))
	out, err := ParseTime(FormatTime(in))
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
	if NullTime(time.Time{}) != nil {
		t.Error("zero time should map to NULL")
	}
	if got := ParseNullTime(sql.NullString{}); !got.IsZero() {
		t.Errorf("NULL parsed as %v", got)
	}
	if _, err := ParseTime("yesterday"); err == nil {
		t.Error("expected error for garbage timestamp")
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("booking", sql.ErrNoRows)
	if !errors.Is(err, ErrNotFound) || err.Error() != "booking not found" {
		t.Errorf("NotFound = %v", err)
	}
	other := errors.New("locked")
	if NotFound("booking", other) != other {
		t.Error("non-ErrNoRows errors must pass through")
	}
}

func TestPlaceholders(t *testing.T) {
	if got := Placeholders(3); got != "?, ?, ?" {
		t.Errorf("Placeholders(3) = %q", got)
	}
	if Placeholders(0) != "" {
		t.Error("Placeholders(0) should be empty")
	}
}
