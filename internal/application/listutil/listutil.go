package listutil

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateRange is returned when from/to are malformed or reversed.
var ErrInvalidDateRange = errors.New("from and to must be YYYY-MM-DD with from <= to")

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// DateRange is an inclusive YYYY-MM-DD range. Empty bounds are open.
type DateRange struct {
	From string
	To   string
}

// PageInfo carries pagination metadata returned with every list.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// MaxPerPage caps per_page so a client cannot ask for the whole table.
const MaxPerPage = 100

const dateLayout = "2006-01-02"

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied; per_page in [1, MaxPerPage]
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	switch {
	case err != nil || perPage < 1:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// Offset returns the SQL OFFSET for the requested page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ParseChoice returns q[key] when it is one of allowed, otherwise def.
// Matching ignores case and surrounding spaces.
func ParseChoice(q url.Values, key string, allowed []string, def string) string {
	v := strings.ToLower(strings.TrimSpace(q.Get(key)))
	for _, a := range allowed {
		if v == a {
			return a
		}
	}
	return def
}

// ParseInt reads a non-negative integer parameter; anything else yields 0.
func ParseInt(q url.Values, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseFloat reads a non-negative decimal parameter; anything else yields 0.
func ParseFloat(q url.Values, key string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(q.Get(key)), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// ParseDateRange reads from and to as dates.
// POST: ErrInvalidDateRange when either bound is malformed or from > to
func ParseDateRange(q url.Values) (DateRange, error) {
	r := DateRange{From: strings.TrimSpace(q.Get("from")), To: strings.TrimSpace(q.Get("to"))}
	for _, d := range []string{r.From, r.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, d); err != nil {
			return DateRange{}, ErrInvalidDateRange
		}
	}
	if r.From != "" && r.To != "" && r.From > r.To {
		return DateRange{}, ErrInvalidDateRange
	}
	return r, nil
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page is not clamped so an out-of-range page reports an empty list
func NewPageInfo(p PageParams, total int) PageInfo {
	perPage := p.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// HasNext reports whether another page follows.
func (p PageInfo) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether a page precedes this one.
func (p PageInfo) HasPrev() bool {
	return p.Page > 1
}

// PageNumbers returns the page numbers to display in pagination controls.
// Shows at most 5 pages centered around the current page.
// PRE: PageInfo is valid
// POST: Returns slice of at most 5 page numbers centered on current page
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := p.Page - maxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - maxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
