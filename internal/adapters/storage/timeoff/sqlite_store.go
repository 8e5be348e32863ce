package timeoff

import (
	"context"
	"time"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/timeoff"
	"coachhub/internal/domain/timeslot"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new time-off store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a TimeOff by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.TimeOff, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, coach_id, start_date, end_date, reason FROM time_off WHERE id = ?", id)
	t, err := scanTimeOff(row.Scan)
	return t, storage.NotFound("time off", err)
}

// ListByCoach returns the coach's ranges ordered by start date.
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string) ([]domain.TimeOff, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, coach_id, start_date, end_date, reason FROM time_off WHERE coach_id = ? ORDER BY start_date", coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.TimeOff
	for rows.Next() {
		t, err := scanTimeOff(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Save inserts or updates a range. Dates are stored as YYYY-MM-DD.
// PRE: value has been validated
func (s *SQLiteStore) Save(ctx context.Context, v domain.TimeOff) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO time_off (id, coach_id, start_date, end_date, reason) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET start_date=excluded.start_date, end_date=excluded.end_date, reason=excluded.reason`,
		v.ID, v.CoachID, v.StartDate.Format(timeslot.DateLayout), v.EndDate.Format(timeslot.DateLayout), v.Reason)
	return err
}

// Delete removes a range.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM time_off WHERE id = ?", id)
	return err
}

// scanTimeOff extracts a TimeOff from a row scanner function.
func scanTimeOff(scan func(dest ...interface{}) error) (domain.TimeOff, error) {
	var t domain.TimeOff
	var start, end string
	if err := scan(&t.ID, &t.CoachID, &start, &end, &t.Reason); err != nil {
		return domain.TimeOff{}, err
	}
	t.StartDate, _ = time.Parse(timeslot.DateLayout, start)
	t.EndDate, _ = time.Parse(timeslot.DateLayout, end)
	return t, nil
}
