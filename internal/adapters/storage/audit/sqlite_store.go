package audit

import (
	"context"
	"strings"

	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/audit"
)

const eventColumns = "id, timestamp, category, action, severity, actor_id, actor_email, actor_role, resource_id, resource_type, description, ip_address, user_agent, metadata"

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit event store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an audit event.
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO audit_log ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, storage.FormatTime(e.Timestamp), string(e.Category), string(e.Action), string(e.Severity),
		e.ActorID, e.ActorEmail, e.ActorRole, e.ResourceID, e.ResourceType, e.Description, e.IPAddress, e.UserAgent, e.Metadata)
	return err
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	add := func(clause, v string) {
		if v != "" {
			clauses = append(clauses, clause)
			args = append(args, v)
		}
	}
	add("category = ?", string(f.Category))
	add("action = ?", string(f.Action))
	add("severity = ?", string(f.Severity))
	add("actor_id = ?", f.ActorID)
	add("resource_id = ?", f.ResourceID)
	add("timestamp >= ?", f.From)
	add("timestamp <= ?", f.To)
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns audit events newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]domain.Event, error) {
	where, args := filter.where()
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	args = append(args, limit, filter.Offset)
	rows, err := s.db.QueryContext(ctx, "SELECT "+eventColumns+" FROM audit_log"+where+" ORDER BY timestamp DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Count returns the number of matching events.
func (s *SQLiteStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log"+where, args...).Scan(&n)
	return n, err
}

// GetByID retrieves a specific audit event.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM audit_log WHERE id = ?", id)
	e, err := scanEvent(row.Scan)
	return e, storage.NotFound("audit event", err)
}

// scanEvent extracts an Event from a row scanner function.
func scanEvent(scan func(dest ...interface{}) error) (domain.Event, error) {
	var e domain.Event
	var timestamp string
	err := scan(&e.ID, &timestamp, &e.Category, &e.Action, &e.Severity, &e.ActorID, &e.ActorEmail, &e.ActorRole,
		&e.ResourceID, &e.ResourceType, &e.Description, &e.IPAddress, &e.UserAgent, &e.Metadata)
	if err != nil {
		return domain.Event{}, err
	}
	e.Timestamp, _ = storage.ParseTime(timestamp)
	return e, nil
}
