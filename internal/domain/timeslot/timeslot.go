// Package timeslot holds the time-of-day arithmetic shared by availability
// windows and bookings. Times are zero-padded 24h "HH:MM" strings, so
// lexical order equals chronological order within a day.
package timeslot

import (
	"errors"
	"fmt"
	"time"
)

// ClockLayout is the wire and storage format for a time of day.
const ClockLayout = "15:04"

// DateLayout is the wire and storage format for a calendar date.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrInvalidClock    = errors.New("time must be in HH:MM 24-hour format")
	ErrInvalidDate     = errors.New("date must be in YYYY-MM-DD format")
	ErrEmptyRange      = errors.New("start time must be before end time")
	ErrCrossesMidnight = errors.New("session cannot run past midnight")
)

// ValidClock reports whether s is a zero-padded HH:MM value.
func ValidClock(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse(ClockLayout, s)
	return err == nil
}

// ValidateRange checks both ends and that start < end.
// PRE: none
// POST: nil means both values are HH:MM and the range is non-empty
func ValidateRange(start, end string) error {
	if !ValidClock(start) || !ValidClock(end) {
		return ErrInvalidClock
	}
	if start >= end {
		return ErrEmptyRange
	}
	return nil
}

// Overlaps reports whether the half-open ranges [startA,endA) and [startB,endB)
// intersect. Back-to-back ranges (endA == startB) do not overlap.
// PRE: all four values are zero-padded HH:MM strings
func Overlaps(startA, endA, startB, endB string) bool {
	return startA < endB && endA > startB
}

// Minutes converts HH:MM to minutes after midnight.
func Minutes(clock string) (int, error) {
	if !ValidClock(clock) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, clock)
	}
	t, _ := time.Parse(ClockLayout, clock)
	return t.Hour()*60 + t.Minute(), nil
}

// FromMinutes formats minutes after midnight as HH:MM.
// PRE: 0 <= m < 24*60
func FromMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AddMinutes returns clock + d minutes. Results at or past midnight return
// ErrCrossesMidnight; the latest representable end is 23:59.
func AddMinutes(clock string, d int) (string, error) {
	m, err := Minutes(clock)
	if err != nil {
		return "", err
	}
	end := m + d
	if end >= 24*60 {
		return "", ErrCrossesMidnight
	}
	return FromMinutes(end), nil
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// At combines a date and a clock value into an instant in loc.
// PRE: date is YYYY-MM-DD, clock is HH:MM
func At(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrInvalidDate, date, clock)
	}
	return t, nil
}
