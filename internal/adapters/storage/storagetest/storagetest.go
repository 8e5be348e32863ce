// Package storagetest opens migrated throwaway databases and seeds the rows
// that foreign keys require, for store and handler tests.
package storagetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"coachhub/internal/adapters/storage"
)

const stamp = "2026-01-01T00:00:00Z"

// Open returns a migrated database in a temp directory, closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func exec(t testing.TB, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("seed: %v\n%s", err, query)
	}
}

// SeedCity inserts a city row.
func SeedCity(t testing.TB, db *sql.DB, id, name string) {
	exec(t, db, `INSERT INTO city (id, name, country) VALUES (?, ?, 'New Zealand')`, id, name)
}

// SeedSport inserts a sport row whose slug is the id.
func SeedSport(t testing.TB, db *sql.DB, id, name string) {
	exec(t, db, `INSERT INTO sport (id, name, slug) VALUES (?, ?, ?)`, id, name, id)
}

// SeedUser inserts a profile row with the given role.
func SeedUser(t testing.TB, db *sql.DB, id, role string) {
	exec(t, db, `INSERT INTO users (id, email, full_name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, id+"@example.com", "User "+id, role, stamp, stamp)
}

// SeedCoach inserts a coach user and a published profile.
func SeedCoach(t testing.TB, db *sql.DB, id string) {
	SeedUser(t, db, id, "coach")
	exec(t, db, `INSERT INTO coach_profile (user_id, display_name, bio, published, created_at, updated_at) VALUES (?, ?, 'Coaching since forever', 1, ?, ?)`,
		id, "Coach "+id, stamp, stamp)
}

// SeedService inserts an active service for coachID.
func SeedService(t testing.TB, db *sql.DB, id, coachID, sportID string, minutes, priceCents int) {
	exec(t, db, `INSERT INTO coach_service (id, coach_id, sport_id, title, duration_minutes, price_cents, active, created_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
		id, coachID, sportID, "Session "+id, minutes, priceCents, stamp)
}

// SeedCourt inserts a court.
func SeedCourt(t testing.TB, db *sql.DB, id, cityID, sportID string) {
	exec(t, db, `INSERT INTO court (id, name, address, city_id, sport_id, created_at) VALUES (?, ?, '', ?, ?, ?)`,
		id, "Court "+id, cityID, sportID, stamp)
}
