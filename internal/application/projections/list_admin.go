package projections

import (
	"context"

	auditStore "coachhub/internal/adapters/storage/audit"
	userStore "coachhub/internal/adapters/storage/user"
	"coachhub/internal/application/listutil"
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/outbox"
	"coachhub/internal/domain/user"
)

// AuditReader lists audit events.
type AuditReader interface {
	List(ctx context.Context, filter auditStore.Filter) ([]audit.Event, error)
	Count(ctx context.Context, filter auditStore.Filter) (int, error)
}

// OutboxReader lists queued side effects.
type OutboxReader interface {
	List(ctx context.Context, status string, limit int) ([]outbox.Entry, error)
}

// UserLister lists profiles.
type UserLister interface {
	List(ctx context.Context, filter userStore.ListFilter) ([]user.User, error)
	Count(ctx context.Context, filter userStore.ListFilter) (int, error)
}

// AuditPage is a page of audit events.
type AuditPage struct {
	Events []audit.Event     `json:"events"`
	Page   listutil.PageInfo `json:"page"`
}

// QueryListAudit pages through audit events, newest first.
// PRE: caller is an admin
func QueryListAudit(ctx context.Context, filter auditStore.Filter, page listutil.PageParams, store AuditReader) (AuditPage, error) {
	total, err := store.Count(ctx, filter)
	if err != nil {
		return AuditPage{}, err
	}
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	events, err := store.List(ctx, filter)
	if err != nil {
		return AuditPage{}, err
	}
	if events == nil {
		events = []audit.Event{}
	}
	return AuditPage{Events: events, Page: listutil.NewPageInfo(page, total)}, nil
}

// QueryListOutbox lists outbox entries, optionally by status.
// PRE: caller is an admin
func QueryListOutbox(ctx context.Context, status string, limit int, store OutboxReader) ([]outbox.Entry, error) {
	if limit <= 0 || limit > listutil.MaxPerPage {
		limit = listutil.MaxPerPage
	}
	entries, err := store.List(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []outbox.Entry{}
	}
	return entries, nil
}

// UserPage is a page of profiles.
type UserPage struct {
	Users []user.User       `json:"users"`
	Page  listutil.PageInfo `json:"page"`
}

// QueryListUsers pages through profiles filtered by role and a name or email substring.
// PRE: caller is an admin
func QueryListUsers(ctx context.Context, role, search string, page listutil.PageParams, store UserLister) (UserPage, error) {
	filter := userStore.ListFilter{Role: role, Search: search}
	total, err := store.Count(ctx, filter)
	if err != nil {
		return UserPage{}, err
	}
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	users, err := store.List(ctx, filter)
	if err != nil {
		return UserPage{}, err
	}
	if users == nil {
		users = []user.User{}
	}
	return UserPage{Users: users, Page: listutil.NewPageInfo(page, total)}, nil
}
