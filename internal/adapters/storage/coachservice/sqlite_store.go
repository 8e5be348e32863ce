package coachservice

import (
	"context"
	"errors"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/coachservice"
)

// ErrReferenced is returned when deleting a service that bookings point at.
var ErrReferenced = errors.New("service is referenced by bookings")

const serviceColumns = "id, coach_id, sport_id, title, description, duration_minutes, price_cents, active, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new service store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Service by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Service, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+serviceColumns+" FROM coach_service WHERE id = ?", id)
	svc, err := scanService(row.Scan)
	return svc, storage.NotFound("service", err)
}

// ListByCoach returns a coach's services, cheapest first.
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string, activeOnly bool) ([]domain.Service, error) {
	query := "SELECT " + serviceColumns + " FROM coach_service WHERE coach_id = ?"
	if activeOnly {
		query += " AND active = 1"
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY price_cents, title", coachID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Service
	for rows.Next() {
		svc, err := scanService(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

// CountActive returns how many active services a coach offers.
func (s *SQLiteStore) CountActive(ctx context.Context, coachID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM coach_service WHERE coach_id = ? AND active = 1", coachID).Scan(&n)
	return n, err
}

// Save inserts or updates a service. The owning coach never changes.
// PRE: value has been validated
func (s *SQLiteStore) Save(ctx context.Context, v domain.Service) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO coach_service ("+serviceColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"+
		` ON CONFLICT(id) DO UPDATE SET
			sport_id=excluded.sport_id,
			title=excluded.title,
			description=excluded.description,
			duration_minutes=excluded.duration_minutes,
			price_cents=excluded.price_cents,
			active=excluded.active`,
		v.ID, v.CoachID, v.SportID, v.Title, v.Description, v.DurationMinutes, v.PriceCents, v.Active, storage.FormatTime(v.CreatedAt))
	return err
}

// Delete removes a service that no booking references.
// POST: ErrReferenced when bookings point at it
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coach_service WHERE id = ?", id)
	if storage.IsForeignKeyViolation(err) {
		return ErrReferenced
	}
	return err
}

// scanService extracts a Service from a row scanner function.
func scanService(scan func(dest ...interface{}) error) (domain.Service, error) {
	var v domain.Service
	var createdAt string
	if err := scan(&v.ID, &v.CoachID, &v.SportID, &v.Title, &v.Description, &v.DurationMinutes, &v.PriceCents, &v.Active, &createdAt); err != nil {
		return domain.Service{}, err
	}
	v.CreatedAt, _ = storage.ParseTime(createdAt)
	return v, nil
}
