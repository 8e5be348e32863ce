package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/coach"
)

// ErrExists is returned by Create when the user already has a profile.
var ErrExists = errors.New("coach profile already exists")

const profileColumns = `p.user_id, p.display_name, p.bio, p.city_id, p.hourly_rate_cents, p.years_experience,
	p.avatar_url, p.published, p.rating_avg, p.rating_count, p.created_at, p.updated_at,
	(SELECT group_concat(cs.sport_id) FROM coach_sport cs WHERE cs.coach_id = p.user_id)`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new coach profile store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByUserID retrieves the profile owned by userID.
// POST: Returns the profile or a wrapped storage.ErrNotFound
func (s *SQLiteStore) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM coach_profile p WHERE p.user_id = ?", userID)
	p, err := scanProfile(row.Scan)
	return p, storage.NotFound("coach profile", err)
}

// Create inserts a new profile and its sports.
// PRE: value has been validated; the user row exists
// POST: ErrExists when the user already has a profile
func (s *SQLiteStore) Create(ctx context.Context, value domain.Profile) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO coach_profile (user_id, display_name, bio, city_id, hourly_rate_cents,
			years_experience, avatar_url, published, rating_avg, rating_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, profileArgs(value)...)
		if storage.IsUniqueViolation(err) {
			return ErrExists
		}
		if err != nil {
			return fmt.Errorf("create coach profile: %w", err)
		}
		return replaceSports(ctx, tx, value.UserID, value.SportIDs)
	})
}

// Save updates the editable fields of a profile and replaces its sports.
// Rating fields are left alone; SetRating owns them.
// PRE: value has been validated
func (s *SQLiteStore) Save(ctx context.Context, value domain.Profile) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO coach_profile (user_id, display_name, bio, city_id, hourly_rate_cents,
			years_experience, avatar_url, published, rating_avg, rating_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				display_name=excluded.display_name,
				bio=excluded.bio,
				city_id=excluded.city_id,
				hourly_rate_cents=excluded.hourly_rate_cents,
				years_experience=excluded.years_experience,
				avatar_url=excluded.avatar_url,
				published=excluded.published,
				updated_at=excluded.updated_at`, profileArgs(value)...)
		if err != nil {
			return fmt.Errorf("save coach profile: %w", err)
		}
		return replaceSports(ctx, tx, value.UserID, value.SportIDs)
	})
}

// Delete removes a profile; services, windows and time off cascade.
func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coach_profile WHERE user_id = ?", userID)
	return err
}

// SetRating stores the denormalised review summary.
func (s *SQLiteStore) SetRating(ctx context.Context, userID string, avg float64, count int) error {
	res, err := s.db.ExecContext(ctx, "UPDATE coach_profile SET rating_avg = ?, rating_count = ? WHERE user_id = ?", avg, count, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("coach profile %w", storage.ErrNotFound)
	}
	return nil
}

// Search returns profiles matching filter with their cheapest active service.
func (s *SQLiteStore) Search(ctx context.Context, f SearchFilter) ([]SearchResult, error) {
	where, args := f.where()
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + profileColumns + `,
		COALESCE((SELECT MIN(sv.price_cents) FROM coach_service sv WHERE sv.coach_id = p.user_id AND sv.active = 1), 0) AS from_price,
		(SELECT COUNT(*) FROM coach_service sv WHERE sv.coach_id = p.user_id AND sv.active = 1)
		FROM coach_profile p` + where + " ORDER BY " + f.orderBy() + " LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		p, err := scanProfile(func(dest ...interface{}) error {
			return rows.Scan(append(dest, &r.FromPriceCents, &r.ActiveServiceCount)...)
		})
		if err != nil {
			return nil, err
		}
		r.Profile = p
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountSearch returns the number of profiles matching filter, ignoring paging.
func (s *SQLiteStore) CountSearch(ctx context.Context, f SearchFilter) (int, error) {
	where, args := f.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM coach_profile p"+where, args...).Scan(&n)
	return n, err
}

func (f SearchFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.PublishedOnly {
		clauses = append(clauses, "p.published = 1")
	}
	if f.SportSlug != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM coach_sport cs JOIN sport sp ON sp.id = cs.sport_id
			WHERE cs.coach_id = p.user_id AND sp.slug = ?)`)
		args = append(args, f.SportSlug)
	}
	if f.CityID != "" {
		clauses = append(clauses, "p.city_id = ?")
		args = append(args, f.CityID)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		clauses = append(clauses, "lower(p.display_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	if f.MaxRateCents > 0 {
		clauses = append(clauses, "p.hourly_rate_cents <= ?")
		args = append(args, f.MaxRateCents)
	}
	if f.MinRating > 0 {
		clauses = append(clauses, "p.rating_avg >= ?")
		args = append(args, f.MinRating)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (f SearchFilter) orderBy() string {
	switch f.Sort {
	case SortPrice:
		return "p.hourly_rate_cents ASC, p.rating_avg DESC, p.user_id"
	case SortNewest:
		return "p.created_at DESC, p.user_id"
	default:
		return "p.rating_avg DESC, p.rating_count DESC, p.user_id"
	}
}

func replaceSports(ctx context.Context, tx *sql.Tx, coachID string, sportIDs []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM coach_sport WHERE coach_id = ?", coachID); err != nil {
		return err
	}
	for _, id := range sportIDs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO coach_sport (coach_id, sport_id) VALUES (?, ?)", coachID, id); err != nil {
			return fmt.Errorf("link sport %s: %w", id, err)
		}
	}
	return nil
}

func profileArgs(p domain.Profile) []any {
	return []any{
		p.UserID, p.DisplayName, p.Bio, storage.NullString(p.CityID), p.HourlyRateCents,
		p.YearsExperience, p.AvatarURL, p.Published, p.RatingAvg, p.RatingCount,
		storage.FormatTime(p.CreatedAt), storage.FormatTime(p.UpdatedAt),
	}
}

// scanProfile extracts a Profile from a row scanner function.
func scanProfile(scan func(dest ...interface{}) error) (domain.Profile, error) {
	var p domain.Profile
	var cityID, sports sql.NullString
	var createdAt, updatedAt string
	err := scan(&p.UserID, &p.DisplayName, &p.Bio, &cityID, &p.HourlyRateCents, &p.YearsExperience,
		&p.AvatarURL, &p.Published, &p.RatingAvg, &p.RatingCount, &createdAt, &updatedAt, &sports)
	if err != nil {
		return domain.Profile{}, err
	}
	p.CityID = cityID.String
	if sports.Valid && sports.String != "" {
		p.SportIDs = strings.Split(sports.String, ",")
		sort.Strings(p.SportIDs)
	}
	p.CreatedAt, _ = storage.ParseTime(createdAt)
	p.UpdatedAt, _ = storage.ParseTime(updatedAt)
	return p, nil
}
