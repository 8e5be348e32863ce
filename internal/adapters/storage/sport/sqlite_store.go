package sport

import (
	"context"
	"errors"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/sport"
)

// ErrDuplicate is returned when the name or slug is already used.
var ErrDuplicate = errors.New("a sport with this name already exists")

// ErrInUse is returned when deleting a sport that services or courts reference.
var ErrInUse = errors.New("sport is referenced by services or courts")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new sport store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Sport by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Sport, error) {
	var sp domain.Sport
	err := s.db.QueryRowContext(ctx, "SELECT id, name, slug FROM sport WHERE id = ?", id).Scan(&sp.ID, &sp.Name, &sp.Slug)
	return sp, storage.NotFound("sport", err)
}

// GetBySlug retrieves a Sport by slug.
func (s *SQLiteStore) GetBySlug(ctx context.Context, slug string) (domain.Sport, error) {
	var sp domain.Sport
	err := s.db.QueryRowContext(ctx, "SELECT id, name, slug FROM sport WHERE slug = ?", slug).Scan(&sp.ID, &sp.Name, &sp.Slug)
	return sp, storage.NotFound("sport", err)
}

// List returns all sports ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Sport, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, slug FROM sport ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Sport
	for rows.Next() {
		var sp domain.Sport
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Slug); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// Save inserts or renames a sport.
// PRE: value has been validated
// POST: ErrDuplicate when the name or slug collides with another sport
func (s *SQLiteStore) Save(ctx context.Context, value domain.Sport) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sport (id, name, slug) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, slug=excluded.slug`,
		value.ID, value.Name, value.Slug)
	if storage.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// Delete removes a sport that nothing references.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sport WHERE id = ?", id)
	if storage.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	return err
}
