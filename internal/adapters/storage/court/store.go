package court

import (
	"context"

	domain "coachhub/internal/domain/court"
)

// Store persists courts.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Court, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Court, error)
	Save(ctx context.Context, value domain.Court) error
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows List; empty fields match everything.
type ListFilter struct {
	CityID  string
	SportID string
}
