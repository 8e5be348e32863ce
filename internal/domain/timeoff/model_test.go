package timeoff_test

import (
	"errors"
	"testing"
	"time"

	"coachhub/internal/domain/timeoff"
)

// TestTimeOff_Validate tests validation of TimeOff.
func TestTimeOff_Validate(t *testing.T) {
	start := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		off     timeoff.TimeOff
		wantErr error
	}{
		{name: "multi-day", off: timeoff.TimeOff{CoachID: "c1", StartDate: start, EndDate: end}},
		{name: "single day", off: timeoff.TimeOff{CoachID: "c1", StartDate: start, EndDate: start}},
		{name: "no coach", off: timeoff.TimeOff{StartDate: start, EndDate: end}, wantErr: timeoff.ErrEmptyCoachID},
		{name: "zero start", off: timeoff.TimeOff{CoachID: "c1", EndDate: end}, wantErr: timeoff.ErrEmptyStartDate},
		{name: "zero end", off: timeoff.TimeOff{CoachID: "c1", StartDate: start}, wantErr: timeoff.ErrEmptyEndDate},
		{name: "reversed", off: timeoff.TimeOff{CoachID: "c1", StartDate: end, EndDate: start}, wantErr: timeoff.ErrInvalidDates},
		{name: "over a year", off: timeoff.TimeOff{CoachID: "c1", StartDate: start, EndDate: start.AddDate(2, 0, 0)}, wantErr: timeoff.ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.off.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestTimeOff_Contains checks inclusive boundaries.
func TestTimeOff_Contains(t *testing.T) {
	off := timeoff.TimeOff{
		CoachID:   "c1",
		StartDate: time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		date time.Time
		want bool
	}{
		{time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 4, 5, 15, 30, 0, 0, time.UTC), true},
		{time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if got := off.Contains(tt.date); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
	if !timeoff.AnyContains([]timeoff.TimeOff{off}, time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC)) {
		t.Error("AnyContains missed a covered date")
	}
}
