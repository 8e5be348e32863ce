package coachservice

import (
	"context"

	domain "coachhub/internal/domain/coachservice"
)

// Store persists the services coaches sell.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Service, error)
	ListByCoach(ctx context.Context, coachID string, activeOnly bool) ([]domain.Service, error)
	CountActive(ctx context.Context, coachID string) (int, error)
	Save(ctx context.Context, value domain.Service) error
	Delete(ctx context.Context, id string) error
}
