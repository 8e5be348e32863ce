package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/booking"
)

// Store errors.
var (
	ErrSlotConflict  = errors.New("coach already has a booking at that time")
	ErrCourtConflict = errors.New("court is already booked at that time")
	ErrStaleStatus   = errors.New("booking status changed concurrently")
)

const bookingColumns = "b.id, b.student_id, b.coach_id, b.service_id, b.court_id, b.date, b.start_time, b.end_time, b.status, b.price_cents, b.notes, b.cancel_reason, b.cancelled_by, b.created_at, b.updated_at"

// DefaultListLimit applies when ListFilter.Limit is zero.
const DefaultListLimit = 50

// Detail is a booking with the names a listing shows next to it.
type Detail struct {
	domain.Booking
	StudentName  string `json:"student_name"`
	CoachName    string `json:"coach_name"`
	ServiceTitle string `json:"service_title"`
	CourtName    string `json:"court_name,omitempty"`
	Reviewed     bool   `json:"reviewed"`
}

// ListFilter narrows List and Count. Empty fields do not filter.
// From and To bound the date inclusively.
type ListFilter struct {
	StudentID  string
	CoachID    string
	Statuses   []string
	From       string
	To         string
	Unreviewed bool
	Ascending  bool
	Limit      int
	Offset     int
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new booking store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Booking by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM booking b WHERE b.id = ?", id)
	b, err := scanBooking(row.Scan)
	return b, storage.NotFound("booking", err)
}

// CreateIfNoConflict checks and inserts inside one immediate transaction, so
// two requests for the same slot cannot both pass the check.
func (s *SQLiteStore) CreateIfNoConflict(ctx context.Context, b domain.Booking) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		coachBookings, err := activeOn(ctx, tx, "b.coach_id", b.CoachID, b.Date)
		if err != nil {
			return err
		}
		if overlapsAny(coachBookings, b) {
			return ErrSlotConflict
		}
		if b.CourtID != "" {
			courtBookings, err := activeOn(ctx, tx, "b.court_id", b.CourtID, b.Date)
			if err != nil {
				return err
			}
			if overlapsAny(courtBookings, b) {
				return ErrCourtConflict
			}
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO booking (id, student_id, coach_id, service_id, court_id, date, start_time, end_time, status, price_cents, notes, cancel_reason, cancelled_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.StudentID, b.CoachID, b.ServiceID, storage.NullString(b.CourtID), b.Date, b.StartTime, b.EndTime,
			b.Status, b.PriceCents, b.Notes, b.CancelReason, b.CancelledBy,
			storage.FormatTime(b.CreatedAt), storage.FormatTime(b.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		return nil
	})
}

func overlapsAny(existing []domain.Booking, b domain.Booking) bool {
	for _, e := range existing {
		if e.ID != b.ID && e.ConflictsWith(b) {
			return true
		}
	}
	return false
}

// activeOn loads slot-holding bookings where column = id on date.
// column is one of the fixed literals used by CreateIfNoConflict.
func activeOn(ctx context.Context, tx *sql.Tx, column, id, date string) ([]domain.Booking, error) {
	args := []any{id, date}
	for _, st := range domain.ActiveStatuses {
		args = append(args, st)
	}
	rows, err := tx.QueryContext(ctx, "SELECT "+bookingColumns+" FROM booking b WHERE "+column+" = ? AND b.date = ? AND b.status IN ("+
		storage.Placeholders(len(domain.ActiveStatuses))+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// UpdateStatus writes the status and cancellation fields.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, b domain.Booking, from string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE booking SET status = ?, cancel_reason = ?, cancelled_by = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		b.Status, b.CancelReason, b.CancelledBy, storage.FormatTime(b.UpdatedAt), b.ID, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetByID(ctx, b.ID); err != nil {
			return err
		}
		return ErrStaleStatus
	}
	return nil
}

// ListActiveOnDate returns the coach's slot-holding bookings on date, by start time.
func (s *SQLiteStore) ListActiveOnDate(ctx context.Context, coachID, date string) ([]domain.Booking, error) {
	args := []any{coachID, date}
	for _, st := range domain.ActiveStatuses {
		args = append(args, st)
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+bookingColumns+" FROM booking b WHERE b.coach_id = ? AND b.date = ? AND b.status IN ("+
		storage.Placeholders(len(domain.ActiveStatuses))+") ORDER BY b.start_time", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// where renders filter as a WHERE clause and its arguments.
func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.StudentID != "" {
		clauses = append(clauses, "b.student_id = ?")
		args = append(args, f.StudentID)
	}
	if f.CoachID != "" {
		clauses = append(clauses, "b.coach_id = ?")
		args = append(args, f.CoachID)
	}
	if len(f.Statuses) > 0 {
		clauses = append(clauses, "b.status IN ("+storage.Placeholders(len(f.Statuses))+")")
		for _, st := range f.Statuses {
			args = append(args, st)
		}
	}
	if f.From != "" {
		clauses = append(clauses, "b.date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		clauses = append(clauses, "b.date <= ?")
		args = append(args, f.To)
	}
	if f.Unreviewed {
		clauses = append(clauses, "r.id IS NULL")
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

const detailJoins = ` FROM booking b
	JOIN users su ON su.id = b.student_id
	JOIN coach_profile cp ON cp.user_id = b.coach_id
	JOIN coach_service cs ON cs.id = b.service_id
	LEFT JOIN court ct ON ct.id = b.court_id
	LEFT JOIN review r ON r.booking_id = b.id`

// List returns matching bookings with display names.
func (s *SQLiteStore) List(ctx context.Context, f ListFilter) ([]Detail, error) {
	where, args := f.where()
	order := " ORDER BY b.date DESC, b.start_time DESC"
	if f.Ascending {
		order = " ORDER BY b.date, b.start_time"
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, "SELECT "+bookingColumns+
		", su.full_name, cp.display_name, cs.title, COALESCE(ct.name, ''), r.id IS NOT NULL"+
		detailJoins+where+order+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Detail
	for rows.Next() {
		var d Detail
		err := scanBookingInto(&d.Booking, rows.Scan, &d.StudentName, &d.CoachName, &d.ServiceTitle, &d.CourtName, &d.Reviewed)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Count returns the number of bookings matching f.
func (s *SQLiteStore) Count(ctx context.Context, f ListFilter) (int, error) {
	where, args := f.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+detailJoins+where, args...).Scan(&n)
	return n, err
}

// CountActiveForService returns how many pending or confirmed bookings use serviceID.
func (s *SQLiteStore) CountActiveForService(ctx context.Context, serviceID string) (int, error) {
	args := []any{serviceID}
	for _, st := range domain.ActiveStatuses {
		args = append(args, st)
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM booking WHERE service_id = ? AND status IN ("+
		storage.Placeholders(len(domain.ActiveStatuses))+")", args...).Scan(&n)
	return n, err
}

// ListDue returns bookings in status dated on or before throughDate, oldest first.
// Callers compare exact start or end instants themselves.
func (s *SQLiteStore) ListDue(ctx context.Context, status, throughDate string) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+bookingColumns+" FROM booking b WHERE b.status = ? AND b.date <= ? ORDER BY b.date, b.start_time",
		status, throughDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// Earnings returns the count and summed price of completed bookings in [from, to].
func (s *SQLiteStore) Earnings(ctx context.Context, coachID, from, to string) (int, int, error) {
	var count, cents int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(price_cents), 0) FROM booking
		WHERE coach_id = ? AND status = ? AND date >= ? AND date <= ?`,
		coachID, domain.StatusCompleted, from, to).Scan(&count, &cents)
	return count, cents, err
}

func scanBookings(rows *sql.Rows) ([]domain.Booking, error) {
	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// scanBooking extracts a Booking from a row scanner function.
func scanBooking(scan func(dest ...interface{}) error) (domain.Booking, error) {
	var b domain.Booking
	if err := scanBookingInto(&b, scan); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

// scanBookingInto scans the booking columns into b followed by extra destinations.
func scanBookingInto(b *domain.Booking, scan func(dest ...interface{}) error, extra ...interface{}) error {
	var courtID sql.NullString
	var createdAt, updatedAt string
	dest := []interface{}{&b.ID, &b.StudentID, &b.CoachID, &b.ServiceID, &courtID, &b.Date, &b.StartTime, &b.EndTime,
		&b.Status, &b.PriceCents, &b.Notes, &b.CancelReason, &b.CancelledBy, &createdAt, &updatedAt}
	if err := scan(append(dest, extra...)...); err != nil {
		return err
	}
	b.CourtID = courtID.String
	b.CreatedAt, _ = storage.ParseTime(createdAt)
	b.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return nil
}
