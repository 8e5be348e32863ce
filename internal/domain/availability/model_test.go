package availability_test

import (
	"errors"
	"testing"
	"time"

	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/timeslot"
)

// TestWindow_Validate tests validation of Window.
func TestWindow_Validate(t *testing.T) {
	tests := []struct {
		name    string
		win     availability.Window
		wantErr error
	}{
		{
			name: "valid morning",
			win:  availability.Window{ID: "1", CoachID: "c1", Day: availability.Monday, StartTime: "08:00", EndTime: "12:00"},
		},
		{
			name:    "empty coach",
			win:     availability.Window{ID: "2", Day: availability.Monday, StartTime: "08:00", EndTime: "12:00"},
			wantErr: availability.ErrEmptyCoachID,
		},
		{
			name:    "invalid day",
			win:     availability.Window{ID: "3", CoachID: "c1", Day: "funday", StartTime: "08:00", EndTime: "12:00"},
			wantErr: availability.ErrInvalidDay,
		},
		{
			name:    "end before start",
			win:     availability.Window{ID: "4", CoachID: "c1", Day: availability.Friday, StartTime: "12:00", EndTime: "08:00"},
			wantErr: timeslot.ErrEmptyRange,
		},
		{
			name:    "bad clock",
			win:     availability.Window{ID: "5", CoachID: "c1", Day: availability.Friday, StartTime: "8am", EndTime: "12:00"},
			wantErr: timeslot.ErrInvalidClock,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.win.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateWeek(t *testing.T) {
	ok := []availability.Window{
		{CoachID: "c1", Day: availability.Monday, StartTime: "08:00", EndTime: "12:00"},
		{CoachID: "c1", Day: availability.Monday, StartTime: "12:00", EndTime: "16:00"},
		{CoachID: "c1", Day: availability.Tuesday, StartTime: "09:00", EndTime: "17:00"},
	}
	if err := availability.ValidateWeek(ok); err != nil {
		t.Errorf("back-to-back windows rejected: %v", err)
	}
	clash := append(ok, availability.Window{CoachID: "c1", Day: availability.Monday, StartTime: "11:00", EndTime: "13:00"})
	if err := availability.ValidateWeek(clash); !errors.Is(err, availability.ErrOverlapping) {
		t.Errorf("overlap = %v, want ErrOverlapping", err)
	}
}

func TestAnyCovers(t *testing.T) {
	windows := []availability.Window{
		{Day: availability.Monday, StartTime: "08:00", EndTime: "12:00"},
		{Day: availability.Monday, StartTime: "14:00", EndTime: "18:00"},
	}
	if !availability.AnyCovers(windows, "08:00", "09:00") {
		t.Error("start of window not covered")
	}
	if !availability.AnyCovers(windows, "17:00", "18:00") {
		t.Error("end of window not covered")
	}
	if availability.AnyCovers(windows, "11:30", "12:30") {
		t.Error("range spilling out of a window was covered")
	}
	if availability.AnyCovers(windows, "12:00", "14:00") {
		t.Error("gap between windows was covered")
	}
}

func TestForDayAndDayOf(t *testing.T) {
	windows := []availability.Window{
		{Day: availability.Monday, StartTime: "14:00", EndTime: "18:00"},
		{Day: availability.Sunday, StartTime: "10:00", EndTime: "11:00"},
		{Day: availability.Monday, StartTime: "08:00", EndTime: "12:00"},
	}
	mon := availability.ForDay(windows, availability.Monday)
	if len(mon) != 2 || mon[0].StartTime != "08:00" {
		t.Errorf("ForDay(monday) = %+v", mon)
	}
	d := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) // a Monday
	if got := availability.DayOf(d); got != availability.Monday {
		t.Errorf("DayOf = %s", got)
	}
}
