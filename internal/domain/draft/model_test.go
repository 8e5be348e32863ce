package draft_test

import (
	"errors"
	"strings"
	"testing"

	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/draft"
	"coachhub/internal/domain/timeslot"
)

func TestDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       draft.Draft
		wantErr error
	}{
		{name: "first step", d: draft.Draft{CoachID: "c1", Step: 1}},
		{name: "complete", d: draft.Draft{CoachID: "c1", ServiceID: "s1", Date: "2026-05-10", StartTime: "09:30", Step: 4}},
		{name: "no coach", d: draft.Draft{Step: 1}, wantErr: draft.ErrNoCoach},
		{name: "step zero", d: draft.Draft{CoachID: "c1"}, wantErr: draft.ErrInvalidStep},
		{name: "step five", d: draft.Draft{CoachID: "c1", Step: 5}, wantErr: draft.ErrInvalidStep},
		{name: "bad date", d: draft.Draft{CoachID: "c1", Step: 2, Date: "tomorrow"}, wantErr: timeslot.ErrInvalidDate},
		{name: "bad time", d: draft.Draft{CoachID: "c1", Step: 3, StartTime: "9:30"}, wantErr: timeslot.ErrInvalidClock},
		{name: "long notes", d: draft.Draft{CoachID: "c1", Step: 4, Notes: strings.Repeat("x", 1001)}, wantErr: booking.ErrNotesTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.d.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
