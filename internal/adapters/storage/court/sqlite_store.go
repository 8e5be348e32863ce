package court

import (
	"context"
	"errors"
	"strings"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/court"
)

// ErrInUse is returned when deleting a court that bookings reference.
var ErrInUse = errors.New("court has bookings")

const courtColumns = "id, name, address, city_id, sport_id, indoor, created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new court store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Court by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Court, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+courtColumns+" FROM court WHERE id = ?", id)
	c, err := scanCourt(row.Scan)
	return c, storage.NotFound("court", err)
}

// List returns courts matching filter ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Court, error) {
	var clauses []string
	var args []any
	if filter.CityID != "" {
		clauses = append(clauses, "city_id = ?")
		args = append(args, filter.CityID)
	}
	if filter.SportID != "" {
		clauses = append(clauses, "sport_id = ?")
		args = append(args, filter.SportID)
	}
	query := "SELECT " + courtColumns + " FROM court"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Court
	for rows.Next() {
		c, err := scanCourt(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Save inserts or updates a court.
// PRE: value has been validated
func (s *SQLiteStore) Save(ctx context.Context, c domain.Court) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO court ("+courtColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"+
		` ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			address=excluded.address,
			city_id=excluded.city_id,
			sport_id=excluded.sport_id,
			indoor=excluded.indoor`,
		c.ID, c.Name, c.Address, c.CityID, c.SportID, c.Indoor, storage.FormatTime(c.CreatedAt))
	return err
}

// Delete removes a court with no bookings.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM court WHERE id = ?", id)
	if storage.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	return err
}

// scanCourt extracts a Court from a row scanner function.
func scanCourt(scan func(dest ...interface{}) error) (domain.Court, error) {
	var c domain.Court
	var createdAt string
	if err := scan(&c.ID, &c.Name, &c.Address, &c.CityID, &c.SportID, &c.Indoor, &createdAt); err != nil {
		return domain.Court{}, err
	}
	c.CreatedAt, _ = storage.ParseTime(createdAt)
	return c, nil
}
