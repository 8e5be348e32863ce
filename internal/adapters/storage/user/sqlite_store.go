package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coachhub/internal/adapters/storage"
	"coachhub/internal/domain/account"
	domain "coachhub/internal/domain/user"
)

// ErrEmailTaken is returned by Create when another profile owns the address.
var ErrEmailTaken = errors.New("a profile with this email already exists")

const userColumns = "id, email, full_name, role, phone, city_id, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new user store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a User by ID.
// POST: Returns the entity or a wrapped storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row.Scan)
	return u, storage.NotFound("user", err)
}

// GetByEmail retrieves a User by normalized email.
// POST: Returns the entity or a wrapped storage.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", account.NormalizeEmail(email))
	u, err := scanUser(row.Scan)
	return u, storage.NotFound("user", err)
}

// Create inserts a new profile row.
// PRE: u has been validated
// POST: Row inserted, or ErrEmailTaken when the id or email is already used
func (s *SQLiteStore) Create(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)", userArgs(u)...)
	if storage.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Save updates the editable fields of an existing profile, inserting it if missing.
// PRE: u has been validated
func (s *SQLiteStore) Save(ctx context.Context, u domain.User) error {
	query := "INSERT INTO users (" + userColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)" +
		` ON CONFLICT(id) DO UPDATE SET
			full_name=excluded.full_name,
			role=excluded.role,
			phone=excluded.phone,
			city_id=excluded.city_id,
			updated_at=excluded.updated_at`
	_, err := s.db.ExecContext(ctx, query, userArgs(u)...)
	if storage.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// Delete removes a profile; the coach profile cascades.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	return err
}

// List returns users matching filter ordered by newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.User, error) {
	where, args := filter.where()
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users"+where+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Count returns the number of users matching filter, ignoring paging.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&n)
	return n, err
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Role != "" {
		clauses = append(clauses, "role = ?")
		args = append(args, f.Role)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		clauses = append(clauses, "(lower(full_name) LIKE ? OR email LIKE ?)")
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func userArgs(u domain.User) []any {
	return []any{
		u.ID,
		account.NormalizeEmail(u.Email),
		strings.TrimSpace(u.FullName),
		u.Role,
		u.Phone,
		storage.NullString(u.CityID),
		storage.FormatTime(u.CreatedAt),
		storage.FormatTime(u.UpdatedAt),
	}
}

// scanUser extracts a User from a row scanner function.
func scanUser(scan func(dest ...interface{}) error) (domain.User, error) {
	var u domain.User
	var cityID *string
	var createdAt, updatedAt string
	if err := scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Phone, &cityID, &createdAt, &updatedAt); err != nil {
		return domain.User{}, err
	}
	if cityID != nil {
		u.CityID = *cityID
	}
	u.CreatedAt, _ = storage.ParseTime(createdAt)
	u.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return u, nil
}
