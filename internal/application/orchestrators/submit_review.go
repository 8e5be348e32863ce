package orchestrators

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/review"
)

// BookingLookup loads a booking.
type BookingLookup interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
}

// ReviewStoreForSubmit stores reviews and recomputes ratings.
type ReviewStoreForSubmit interface {
	Create(ctx context.Context, r review.Review) error
	RatingFor(ctx context.Context, coachID string) (float64, int, error)
}

// RatingWriter stores the coach's rating summary.
type RatingWriter interface {
	SetRating(ctx context.Context, userID string, avg float64, count int) error
}

// SubmitReviewInput carries input for the orchestrator.
type SubmitReviewInput struct {
	Actor     Actor
	BookingID string
	Rating    int
	Comment   string
}

// SubmitReviewDeps holds dependencies for SubmitReview.
type SubmitReviewDeps struct {
	Bookings   BookingLookup
	Reviews    ReviewStoreForSubmit
	Coaches    RatingWriter
	Audit      AuditStore
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSubmitReview rates a completed session.
// PRE: Actor is the booking's student
// POST: the review is stored and the coach's rating summary includes it
// INVARIANT: at most one review per booking
func ExecuteSubmitReview(ctx context.Context, input SubmitReviewInput, deps SubmitReviewDeps) (review.Review, error) {
	if err := input.Actor.requireSignedIn(); err != nil {
		return review.Review{}, err
	}
	b, err := deps.Bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return review.Review{}, err
	}
	if b.StudentID != input.Actor.ID {
		return review.Review{}, ErrForbidden
	}
	if b.Status != booking.StatusCompleted {
		return review.Review{}, review.ErrNotReviewable
	}

	r := review.Review{
		ID:        generateID(deps.GenerateID),
		BookingID: b.ID,
		StudentID: b.StudentID,
		CoachID:   b.CoachID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
		CreatedAt: nowOr(deps.Now),
	}
	if err := r.Validate(); err != nil {
		return review.Review{}, err
	}
	if err := deps.Reviews.Create(ctx, r); err != nil {
		return review.Review{}, err
	}

	avg, count, err := deps.Reviews.RatingFor(ctx, b.CoachID)
	if err == nil {
		err = deps.Coaches.SetRating(ctx, b.CoachID, avg, count)
	}
	if err != nil {
		// The review is saved; the summary is recomputed on the next review.
		slog.Error("rating_update_failed", "coach_id", b.CoachID, "error", err)
	}

	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryBooking, audit.ActionCreate).
		WithResource("review", r.ID).
		WithMetadata(map[string]string{"booking_id": b.ID, "rating": strconv.Itoa(r.Rating)}))
	slog.Info("booking_event", "event", "reviewed", "booking_id", b.ID, "coach_id", b.CoachID, "rating", r.Rating)
	return r, nil
}
