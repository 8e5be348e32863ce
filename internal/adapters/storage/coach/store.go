package coach

import (
	"context"

	domain "coachhub/internal/domain/coach"
)

// Store persists coach profiles and the sports each coach teaches.
type Store interface {
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	Create(ctx context.Context, value domain.Profile) error
	Save(ctx context.Context, value domain.Profile) error
	Delete(ctx context.Context, userID string) error
	SetRating(ctx context.Context, userID string, avg float64, count int) error
	Search(ctx context.Context, filter SearchFilter) ([]SearchResult, error)
	CountSearch(ctx context.Context, filter SearchFilter) (int, error)
}

// Sort orders for Search.
const (
	SortRating = "rating"
	SortPrice  = "price"
	SortNewest = "newest"
)

// SearchFilter narrows coach search. Zero values match everything.
type SearchFilter struct {
	SportSlug     string
	CityID        string
	Query         string // substring of display name
	MaxRateCents  int    // 0 = no limit
	MinRating     float64
	PublishedOnly bool
	Sort          string
	Limit         int
	Offset        int
}

// SearchResult is a profile plus the cheapest active service price (0 when none).
type SearchResult struct {
	Profile            domain.Profile
	FromPriceCents     int
	ActiveServiceCount int
}
