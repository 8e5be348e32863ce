package availability

import (
	"errors"
	"sort"
	"strings"
	"time"

	"coachhub/internal/domain/timeslot"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// MaxWindowsPerWeek caps how many windows a coach can declare.
const MaxWindowsPerWeek = 70

// Default opening hours used for coaches who have not declared any windows.
const (
	DefaultDayStart = "08:00"
	DefaultDayEnd   = "20:00"
)

// Domain errors
var (
	ErrEmptyCoachID    = errors.New("coach ID cannot be empty")
	ErrInvalidDay      = errors.New("day must be a valid day of the week")
	ErrOverlapping     = errors.New("availability windows on the same day cannot overlap")
	ErrTooManyWindows  = errors.New("too many availability windows")
	ErrOutsideSchedule = errors.New("requested time is outside the coach's availability")
)

// Window is a recurring weekly period in which a coach accepts bookings.
type Window struct {
	ID        string `json:"id"`
	CoachID   string `json:"coach_id"`
	Day       string `json:"day"`        // monday, tuesday, etc.
	StartTime string `json:"start_time"` // HH:MM format
	EndTime   string `json:"end_time"`   // HH:MM format
}

// Validate checks if the Window has valid data.
// PRE: Window struct is populated
// POST: Returns nil if valid, error otherwise
func (w *Window) Validate() error {
	if strings.TrimSpace(w.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if !isValidDay(w.Day) {
		return ErrInvalidDay
	}
	return timeslot.ValidateRange(w.StartTime, w.EndTime)
}

// Covers reports whether [start,end) lies entirely inside the window.
// INVARIANT: Window fields are not mutated
func (w *Window) Covers(start, end string) bool {
	return w.StartTime <= start && end <= w.EndTime
}

// ValidateWeek validates every window and rejects overlaps within a day.
// PRE: all windows belong to the same coach
// POST: Returns the first problem found, or nil
func ValidateWeek(windows []Window) error {
	if len(windows) > MaxWindowsPerWeek {
		return ErrTooManyWindows
	}
	byDay := make(map[string][]Window)
	for _, w := range windows {
		if err := w.Validate(); err != nil {
			return err
		}
		byDay[w.Day] = append(byDay[w.Day], w)
	}
	for _, day := range byDay {
		sort.Slice(day, func(i, j int) bool { return day[i].StartTime < day[j].StartTime })
		for i := 1; i < len(day); i++ {
			if timeslot.Overlaps(day[i-1].StartTime, day[i-1].EndTime, day[i].StartTime, day[i].EndTime) {
				return ErrOverlapping
			}
		}
	}
	return nil
}

// ForDay filters windows down to one weekday, ordered by start time.
func ForDay(windows []Window, day string) []Window {
	var out []Window
	for _, w := range windows {
		if w.Day == day {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// AnyCovers reports whether one of the windows covers [start,end).
func AnyCovers(windows []Window, start, end string) bool {
	for _, w := range windows {
		if w.Covers(start, end) {
			return true
		}
	}
	return false
}

// DayOf returns the lowercase weekday name for a date.
func DayOf(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}

func isValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}
