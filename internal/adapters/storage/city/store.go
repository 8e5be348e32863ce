package city

import (
	"context"

	domain "coachhub/internal/domain/city"
)

// Store persists the city catalog.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.City, error)
	List(ctx context.Context) ([]domain.City, error)
	Save(ctx context.Context, value domain.City) error
	Delete(ctx context.Context, id string) error
}
