package city

import (
	"context"
	"errors"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/city"
)

// Store errors
var (
	ErrDuplicate = errors.New("this city already exists")
	ErrInUse     = errors.New("city is referenced by courts")
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new city store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a City by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.City, error) {
	var c domain.City
	err := s.db.QueryRowContext(ctx, "SELECT id, name, country FROM city WHERE id = ?", id).Scan(&c.ID, &c.Name, &c.Country)
	return c, storage.NotFound("city", err)
}

// List returns all cities ordered by country then name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.City, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, country FROM city ORDER BY country, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.City
	for rows.Next() {
		var c domain.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Country); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Save inserts or updates a city.
// POST: ErrDuplicate when (name, country) is already used
func (s *SQLiteStore) Save(ctx context.Context, value domain.City) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO city (id, name, country) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, country=excluded.country`,
		value.ID, value.Name, value.Country)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes a city. Profiles pointing at it lose their city; courts block deletion.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM city WHERE id = ?", id)
	if storage.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	return err
}
