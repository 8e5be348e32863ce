package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"coachhub/internal/adapters/email"
	"coachhub/internal/adapters/events"
	"coachhub/internal/adapters/metrics"
	"coachhub/internal/adapters/sms"
	"coachhub/internal/adapters/storage"
	domain "coachhub/internal/domain/outbox"
	"coachhub/internal/domain/user"
)

// ErrTerminalEntry is returned when an admin retries an entry that was delivered or abandoned.
var ErrTerminalEntry = errors.New("outbox entry is finished and cannot be retried")

// OutboxStore is the outbox persistence the processor needs.
type OutboxStore interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// OutboxProcessor replays side effects that failed inline.
type OutboxProcessor struct {
	store     OutboxStore
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given entry's payload.
	// Returns the provider's id for the delivered message, if any.
	Execute(ctx context.Context, entry domain.Entry) (string, error)
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store OutboxStore, executors map[string]ActionExecutor) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: 30 * time.Second,
		maxDelay:  1 * time.Hour,
		batchSize: 25,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the processor's clock.
func (p *OutboxProcessor) WithClock(now func() time.Time) *OutboxProcessor {
	p.now = now
	return p
}

// ProcessPending processes pending outbox entries whose back-off has elapsed.
// PRE: Context is valid
// POST: returns how many entries were attempted
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (int, error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}
	attempted := 0
	for _, entry := range entries {
		if !entry.CanRetry() || !entry.IsDue(p.now(), p.baseDelay, p.maxDelay) {
			continue
		}
		attempted++
		if err := p.run(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	return attempted, nil
}

// run executes one entry and saves the outcome.
func (p *OutboxProcessor) run(ctx context.Context, entry domain.Entry) error {
	executor, ok := p.executors[entry.ActionType]
	entry.MarkAttempt(p.now())
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	externalID, err := executor.Execute(ctx, entry)
	metrics.OutboxAction(entry.ActionType, err == nil)
	if err != nil {
		entry.MarkFailed(err)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return p.store.Save(ctx, entry)
}

// ProcessSingle manually processes a single outbox entry (for admin retry).
// Back-off is ignored, and an entry that used up its attempts gets one more.
// PRE: entryID is non-empty
// POST: Entry is processed, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry.IsTerminal() {
		return entry, ErrTerminalEntry
	}
	if !entry.CanRetry() {
		entry.MaxAttempts = entry.Attempts + 1
	}
	if err := p.run(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return p.store.GetByID(ctx, entryID)
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// --- Executors ---

// ProfileLookup finds the profile that owns an identity user id.
type ProfileLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// IdentityCleanupExecutor deletes identity users left without a profile.
type IdentityCleanupExecutor struct {
	Identity IdentityDeleter
	Users    ProfileLookup
}

// Execute deletes the identity user named in the payload unless a profile
// was provisioned for it after the cleanup was queued.
// PRE: payload decodes to domain.IdentityCleanupPayload
// POST: an identity that owns a profile is never deleted
// INVARIANT: outbox entry status managed by caller
func (e *IdentityCleanupExecutor) Execute(ctx context.Context, entry domain.Entry) (string, error) {
	var p domain.IdentityCleanupPayload
	if err := entry.Decode(&p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if p.UserID == "" {
		return "", errors.New("identity cleanup payload has no user id")
	}
	_, err := e.Users.GetByID(ctx, p.UserID)
	switch {
	case err == nil:
		slog.Info("auth_event", "event", "identity_cleanup_skipped", "user_id", p.UserID, "reason", "profile_exists")
		return "", nil
	case !errors.Is(err, storage.ErrNotFound):
		return "", fmt.Errorf("look up profile %s: %w", p.UserID, err)
	}
	if err := e.Identity.AdminDeleteUser(ctx, p.UserID); err != nil {
		return "", err
	}
	return p.UserID, nil
}

// EmailExecutor resends queued emails.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends the email in the payload.
// PRE: payload decodes to domain.EmailPayload
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, entry domain.Entry) (string, error) {
	var p domain.EmailPayload
	if err := entry.Decode(&p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	res, err := e.Sender.Send(ctx, email.SendRequest{To: p.To, Subject: p.Subject, HTML: p.HTML})
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// SMSExecutor resends queued text messages.
type SMSExecutor struct {
	Sender sms.Sender
}

// Execute sends the SMS in the payload.
// INVARIANT: outbox entry status managed by caller
func (e *SMSExecutor) Execute(ctx context.Context, entry domain.Entry) (string, error) {
	var p domain.SMSPayload
	if err := entry.Decode(&p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	return e.Sender.Send(ctx, p.To, p.Body)
}

// EventExecutor republishes queued broker events.
type EventExecutor struct {
	Publisher events.Publisher
}

// Execute publishes the already encoded event in the payload.
// INVARIANT: outbox entry status managed by caller
func (e *EventExecutor) Execute(ctx context.Context, entry domain.Entry) (string, error) {
	var p domain.EventPayload
	if err := entry.Decode(&p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}
	if err := e.Publisher.Publish(ctx, p.RoutingKey, p.Body); err != nil {
		return "", err
	}
	return p.RoutingKey, nil
}
