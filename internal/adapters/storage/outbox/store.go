package outbox

import (
	"context"
	"time"

	domain "coachhub/internal/domain/outbox"
)

// Store persists deferred side effects (identity cleanup, email, SMS,
// broker events) until the outbox job delivers them.
type Store interface {
	// PRE: id is non-empty
	// POST: Returns the entry or a wrapped storage.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save inserts e or updates its delivery state; action and payload never change.
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns up to limit pending or retrying entries, oldest first.
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// List returns entries in status (all statuses when empty), newest first.
	List(ctx context.Context, status string, limit int) ([]domain.Entry, error)

	// Purge deletes done and abandoned entries created before cutoff.
	// POST: failed entries are kept for the admin view
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

var _ Store = (*SQLiteStore)(nil)
