package projections

import (
	"context"
	"strings"

	coachStore "coachhub/internal/adapters/storage/coach"
	"coachhub/internal/application/listutil"
)

// SearchCoachesQuery carries the public search parameters.
type SearchCoachesQuery struct {
	SportSlug    string
	CityID       string
	Text         string
	MaxRateCents int
	MinRating    float64
	Sort         string
	Page         listutil.PageParams
}

// CoachCard is one row of the search results.
type CoachCard struct {
	UserID          string   `json:"user_id"`
	DisplayName     string   `json:"display_name"`
	CityID          string   `json:"city_id,omitempty"`
	SportIDs        []string `json:"sport_ids"`
	HourlyRateCents int      `json:"hourly_rate_cents"`
	FromPriceCents  int      `json:"from_price_cents"`
	RatingAvg       float64  `json:"rating_avg"`
	RatingCount     int      `json:"rating_count"`
	AvatarURL       string   `json:"avatar_url,omitempty"`
	YearsExperience int      `json:"years_experience"`
}

// SearchCoachesResult is a page of coach cards.
type SearchCoachesResult struct {
	Coaches []CoachCard       `json:"coaches"`
	Page    listutil.PageInfo `json:"page"`
}

// SortOptions are the accepted values for SearchCoachesQuery.Sort.
var SortOptions = []string{coachStore.SortRating, coachStore.SortPrice, coachStore.SortNewest}

// QuerySearchCoaches lists published coaches.
// PRE: none
// POST: only published profiles; sorted by rating unless Sort says otherwise
func QuerySearchCoaches(ctx context.Context, query SearchCoachesQuery, store CoachSearchStore) (SearchCoachesResult, error) {
	sort := query.Sort
	if sort == "" {
		sort = coachStore.SortRating
	}
	page := query.Page
	if page.Page < 1 || page.PerPage < 1 {
		page = listutil.PageParams{Page: 1, PerPage: listutil.DefaultPerPage}
	}
	filter := coachStore.SearchFilter{
		SportSlug:     strings.TrimSpace(query.SportSlug),
		CityID:        query.CityID,
		Query:         strings.TrimSpace(query.Text),
		MaxRateCents:  query.MaxRateCents,
		MinRating:     query.MinRating,
		PublishedOnly: true,
		Sort:          sort,
		Limit:         page.PerPage,
		Offset:        page.Offset(),
	}

	total, err := store.CountSearch(ctx, filter)
	if err != nil {
		return SearchCoachesResult{}, err
	}
	res := SearchCoachesResult{Coaches: []CoachCard{}, Page: listutil.NewPageInfo(page, total)}
	if total == 0 || filter.Offset >= total {
		return res, nil
	}
	rows, err := store.Search(ctx, filter)
	if err != nil {
		return SearchCoachesResult{}, err
	}
	for _, r := range rows {
		p := r.Profile
		res.Coaches = append(res.Coaches, CoachCard{
			UserID:          p.UserID,
			DisplayName:     p.DisplayName,
			CityID:          p.CityID,
			SportIDs:        p.SportIDs,
			HourlyRateCents: p.HourlyRateCents,
			FromPriceCents:  r.FromPriceCents,
			RatingAvg:       p.RatingAvg,
			RatingCount:     p.RatingCount,
			AvatarURL:       p.AvatarURL,
			YearsExperience: p.YearsExperience,
		})
	}
	return res, nil
}
