package availability

import (
	"context"

	domain "coachhub/internal/domain/availability"
)

// Store persists coaches' weekly availability windows.
type Store interface {
	ListByCoach(ctx context.Context, coachID string) ([]domain.Window, error)
	ReplaceWeek(ctx context.Context, coachID string, windows []domain.Window) error
}
