package user

import (
	"context"

	domain "coachhub/internal/domain/user"
)

// Store persists profile rows.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, value domain.User) error
	Save(ctx context.Context, value domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.User, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// Search matches a case-insensitive substring of full name or email.
type ListFilter struct {
	Role   string
	Search string
	Limit  int
	Offset int
}
