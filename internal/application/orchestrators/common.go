package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/outbox"
	"coachhub/internal/domain/user"
)

// Orchestrator errors shared by several use cases.
var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrForbidden          = errors.New("you are not allowed to do that")
	ErrUnauthenticated    = errors.New("sign in required")
)

// Actor is the signed-in user on whose behalf a use case runs.
// IP and UserAgent are copied into audit events.
type Actor struct {
	ID        string
	Email     string
	Role      string
	IP        string
	UserAgent string
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

// IsCoach reports whether the actor has the coach role.
func (a Actor) IsCoach() bool {
	return a.Role == user.RoleCoach
}

func (a Actor) requireSignedIn() error {
	if a.ID == "" {
		return ErrUnauthenticated
	}
	return nil
}

func (a Actor) requireAdmin() error {
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (a Actor) requireStudent() error {
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	if a.Role != user.RoleStudent {
		return ErrForbidden
	}
	return nil
}

func (a Actor) requireCoach() error {
	if err := a.requireSignedIn(); err != nil {
		return err
	}
	if !a.IsCoach() {
		return ErrForbidden
	}
	return nil
}

// event starts an audit event attributed to the actor.
func (a Actor) event(category audit.Category, action audit.Action) audit.Event {
	return audit.NewEvent(a.ID, a.Email, a.Role, category, action).WithRequest(a.IP, a.UserAgent)
}

// AuditStore records audit events.
type AuditStore interface {
	Save(ctx context.Context, event audit.Event) error
}

// OutboxWriter queues side effects that failed inline.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// recordAudit saves e. Audit failures are logged and never fail the use case.
func recordAudit(ctx context.Context, store AuditStore, e audit.Event) {
	if store == nil {
		return
	}
	if err := store.Save(ctx, e); err != nil {
		slog.Error("audit_save_failed", "category", e.Category, "action", e.Action, "error", err)
	}
}

// enqueue writes a pending outbox entry for a later retry.
// POST: returns an error only when the entry could not be stored
func enqueue(ctx context.Context, w OutboxWriter, actionType string, payload any, now time.Time) error {
	if w == nil {
		return errors.New("no outbox configured")
	}
	entry, err := outbox.NewEntry(actionType, payload, now)
	if err != nil {
		return err
	}
	if err := w.Save(ctx, entry); err != nil {
		return err
	}
	slog.Info("outbox_enqueued", "entry_id", entry.ID, "action_type", actionType)
	return nil
}

func nowOr(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now()
}
