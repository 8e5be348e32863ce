package sport

import (
	"context"

	domain "coachhub/internal/domain/sport"
)

// Store persists the sport catalog.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Sport, error)
	GetBySlug(ctx context.Context, slug string) (domain.Sport, error)
	List(ctx context.Context) ([]domain.Sport, error)
	Save(ctx context.Context, value domain.Sport) error
	Delete(ctx context.Context, id string) error
}
