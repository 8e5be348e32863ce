package review

import (
	"context"

	domain "coachhub/internal/domain/review"
)

// Store defines the interface for review persistence.
type Store interface {
	// Create inserts a review.
	// POST: review.ErrAlreadyReviewed when the booking already has one
	Create(ctx context.Context, r domain.Review) error
	GetByBooking(ctx context.Context, bookingID string) (domain.Review, error)
	// ListByCoach returns the newest reviews first; limit <= 0 returns all.
	ListByCoach(ctx context.Context, coachID string, limit int) ([]ReviewWithAuthor, error)
	// RatingFor returns the coach's average rating rounded to two decimals and the count.
	RatingFor(ctx context.Context, coachID string) (float64, int, error)
}
