package review

import (
	"context"
	"math"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/review"
)

// ReviewWithAuthor is a review with the student's display name.
type ReviewWithAuthor struct {
	domain.Review
	StudentName string `json:"student_name"`
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new review store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Create inserts r; the UNIQUE booking_id column enforces one review per booking.
func (s *SQLiteStore) Create(ctx context.Context, r domain.Review) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO review (id, booking_id, student_id, coach_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.BookingID, r.StudentID, r.CoachID, r.Rating, r.Comment, storage.FormatTime(r.CreatedAt))
	if storage.IsUniqueViolation(err) {
		return domain.ErrAlreadyReviewed
	}
	return err
}

// GetByBooking retrieves the review left for a booking.
func (s *SQLiteStore) GetByBooking(ctx context.Context, bookingID string) (domain.Review, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, booking_id, student_id, coach_id, rating, comment, created_at FROM review WHERE booking_id = ?", bookingID)
	var r domain.Review
	var createdAt string
	err := row.Scan(&r.ID, &r.BookingID, &r.StudentID, &r.CoachID, &r.Rating, &r.Comment, &createdAt)
	if err != nil {
		return domain.Review{}, storage.NotFound("review", err)
	}
	r.CreatedAt, _ = storage.ParseTime(createdAt)
	return r, nil
}

// ListByCoach returns a coach's reviews, newest first.
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string, limit int) ([]ReviewWithAuthor, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, r.booking_id, r.student_id, r.coach_id, r.rating, r.comment, r.created_at, u.full_name
		FROM review r JOIN users u ON u.id = r.student_id
		WHERE r.coach_id = ? ORDER BY r.created_at DESC LIMIT ?`, coachID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReviewWithAuthor
	for rows.Next() {
		var r ReviewWithAuthor
		var createdAt string
		if err := rows.Scan(&r.ID, &r.BookingID, &r.StudentID, &r.CoachID, &r.Rating, &r.Comment, &createdAt, &r.StudentName); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = storage.ParseTime(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RatingFor aggregates every review of a coach.
func (s *SQLiteStore) RatingFor(ctx context.Context, coachID string) (float64, int, error) {
	var avg float64
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM review WHERE coach_id = ?", coachID).Scan(&avg, &n)
	if err != nil {
		return 0, 0, err
	}
	return math.Round(avg*100) / 100, n, nil
}
