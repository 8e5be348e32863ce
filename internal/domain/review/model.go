package review

import (
	"errors"
	"strings"
	"time"
)

// Rating bounds.
const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// Domain errors
var (
	ErrEmptyBookingID  = errors.New("booking is required")
	ErrEmptyStudentID  = errors.New("student is required")
	ErrEmptyCoachID    = errors.New("coach is required")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrCommentTooLong  = errors.New("comment cannot exceed 2000 characters")
	ErrAlreadyReviewed = errors.New("booking has already been reviewed")
	ErrNotReviewable   = errors.New("only completed bookings can be reviewed")
)

// Review is a student's rating of a completed booking. One per booking.
type Review struct {
	ID        string    `json:"id"`
	BookingID string    `json:"booking_id"`
	StudentID string    `json:"student_id"`
	CoachID   string    `json:"coach_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the Review has valid data.
// PRE: Review struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Review) Validate() error {
	if strings.TrimSpace(r.BookingID) == "" {
		return ErrEmptyBookingID
	}
	if strings.TrimSpace(r.StudentID) == "" {
		return ErrEmptyStudentID
	}
	if strings.TrimSpace(r.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return ErrInvalidRating
	}
	if len(r.Comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
