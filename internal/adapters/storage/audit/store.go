package audit

import (
	"context"

	domain "coachhub/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event is valid
	// POST: Event is persisted
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter.
	// POST: Returns events ordered by timestamp desc
	List(ctx context.Context, filter Filter) ([]domain.Event, error)

	// Count returns how many events match filter, ignoring Limit and Offset.
	Count(ctx context.Context, filter Filter) (int, error)

	// GetByID retrieves a specific audit event.
	// POST: wraps storage.ErrNotFound when absent
	GetByID(ctx context.Context, id string) (domain.Event, error)
}

// Filter defines query parameters for listing audit events.
// Zero values do not filter. From and To are RFC 3339 timestamps.
type Filter struct {
	Category   domain.Category
	Action     domain.Action
	Severity   domain.Severity
	ActorID    string
	ResourceID string
	From       string
	To         string
	Limit      int
	Offset     int
}

// DefaultLimit applies when Filter.Limit is zero.
const DefaultLimit = 100

var _ Store = (*SQLiteStore)(nil)
