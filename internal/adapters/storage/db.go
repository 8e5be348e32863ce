package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DSN builds the modernc.org/sqlite connection string for path.
// WAL with a busy timeout lets readers proceed during writes; _txlock=immediate
// takes the write lock at BEGIN so concurrent check-then-insert transactions serialize.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)&_txlock=immediate"
}

// Open opens the database at path and applies migrations.
// POST: returns a migrated connection pool
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := MigrateDB(db, path); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// migrationsTable is where golang-migrate records the applied version.
const migrationsTable = "schema_migrations"

// MigrateDB applies every pending embedded migration.
// PRE: db is a valid SQLite connection; dbPath identifies it in logs
// POST: schema is at LatestSchemaVersion() or an error is returned
func MigrateDB(db *sql.DB, dbPath string) error {
	from, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	drv, err := sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	// m.Close would close db, which the caller owns.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	to, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if to != from {
		slog.Info("schema_migrated", "path", dbPath, "from", from, "to", to)
	}
	return nil
}

// SchemaVersion returns the applied migration version, 0 for a fresh database.
func SchemaVersion(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, migrationsTable).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("check schema version: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	var version int
	var dirty bool
	err = db.QueryRow(`SELECT version, dirty FROM `+migrationsTable+` LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}

// LatestSchemaVersion returns the highest version among the embedded migrations.
func LatestSchemaVersion() int {
	files, err := fs.Glob(migrationFS, "migrations/*.up.sql")
	if err != nil {
		return 0
	}
	versions := make([]int, 0, len(files))
	for _, f := range files {
		name := strings.TrimPrefix(f, "migrations/")
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		if v, err := strconv.Atoi(prefix); err == nil {
			versions = append(versions, v)
		}
	}
	if len(versions) == 0 {
		return 0
	}
	sort.Ints(versions)
	return versions[len(versions)-1]
}
