package timeoff

import (
	"context"

	domain "coachhub/internal/domain/timeoff"
)

// Store persists coaches' time-off ranges.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.TimeOff, error)
	ListByCoach(ctx context.Context, coachID string) ([]domain.TimeOff, error)
	Save(ctx context.Context, value domain.TimeOff) error
	Delete(ctx context.Context, id string) error
}
