package availability

import (
	"context"
	"database/sql"
	"fmt"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/availability"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new availability store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListByCoach returns the coach's windows ordered by weekday then start.
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string) ([]domain.Window, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, coach_id, day, start_time, end_time FROM availability
		WHERE coach_id = ?
		ORDER BY CASE day
			WHEN 'monday' THEN 1 WHEN 'tuesday' THEN 2 WHEN 'wednesday' THEN 3 WHEN 'thursday' THEN 4
			WHEN 'friday' THEN 5 WHEN 'saturday' THEN 6 ELSE 7 END, start_time`, coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Window
	for rows.Next() {
		var w domain.Window
		if err := rows.Scan(&w.ID, &w.CoachID, &w.Day, &w.StartTime, &w.EndTime); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ReplaceWeek swaps the coach's whole weekly schedule in one transaction.
// PRE: windows passed availability.ValidateWeek and carry IDs
// POST: exactly windows are stored for coachID
func (s *SQLiteStore) ReplaceWeek(ctx context.Context, coachID string, windows []domain.Window) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM availability WHERE coach_id = ?", coachID); err != nil {
			return err
		}
		for _, w := range windows {
			_, err := tx.ExecContext(ctx, "INSERT INTO availability (id, coach_id, day, start_time, end_time) VALUES (?, ?, ?, ?, ?)",
				w.ID, coachID, w.Day, w.StartTime, w.EndTime)
			if err != nil {
				return fmt.Errorf("insert window %s %s-%s: %w", w.Day, w.StartTime, w.EndTime, err)
			}
		}
		return nil
	})
}
