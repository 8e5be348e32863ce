package listutil

import (
	"errors"
	"net/url"
	"reflect"
	"testing"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name  string
		q     url.Values
		want  PageParams
		start int
	}{
		{name: "defaults", q: url.Values{}, want: PageParams{Page: 1, PerPage: DefaultPerPage}, start: 0},
		{name: "valid", q: url.Values{"page": {"3"}, "per_page": {"50"}}, want: PageParams{Page: 3, PerPage: 50}, start: 100},
		{name: "negative page", q: url.Values{"page": {"-1"}}, want: PageParams{Page: 1, PerPage: DefaultPerPage}, start: 0},
		{name: "per page capped", q: url.Values{"per_page": {"5000"}}, want: PageParams{Page: 1, PerPage: MaxPerPage}, start: 0},
		{name: "garbage", q: url.Values{"page": {"two"}, "per_page": {"x"}}, want: PageParams{Page: 1, PerPage: DefaultPerPage}, start: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePageParams(tt.q)
			if got != tt.want {
				t.Errorf("ParsePageParams = %+v, want %+v", got, tt.want)
			}
			if got.Offset() != tt.start {
				t.Errorf("Offset = %d, want %d", got.Offset(), tt.start)
			}
		})
	}
}

func TestParseChoice(t *testing.T) {
	allowed := []string{"rating", "price", "newest"}
	if got := ParseChoice(url.Values{"sort": {" Price "}}, "sort", allowed, "rating"); got != "price" {
		t.Errorf("got %q", got)
	}
	if got := ParseChoice(url.Values{"sort": {"password"}}, "sort", allowed, "rating"); got != "rating" {
		t.Errorf("disallowed value gave %q", got)
	}
}

func TestParseNumbers(t *testing.T) {
	q := url.Values{"max_rate": {"4500"}, "min_rating": {"4.5"}, "bad": {"-3"}}
	if got := ParseInt(q, "max_rate"); got != 4500 {
		t.Errorf("ParseInt = %d", got)
	}
	if got := ParseInt(q, "bad"); got != 0 {
		t.Errorf("negative ParseInt = %d", got)
	}
	if got := ParseFloat(q, "min_rating"); got != 4.5 {
		t.Errorf("ParseFloat = %v", got)
	}
	if got := ParseFloat(q, "missing"); got != 0 {
		t.Errorf("missing ParseFloat = %v", got)
	}
}

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name    string
		q       url.Values
		want    DateRange
		wantErr error
	}{
		{name: "open", q: url.Values{}},
		{name: "bounded", q: url.Values{"from": {"2026-03-01"}, "to": {"2026-03-31"}}, want: DateRange{From: "2026-03-01", To: "2026-03-31"}},
		{name: "single day", q: url.Values{"from": {"2026-03-01"}, "to": {"2026-03-01"}}, want: DateRange{From: "2026-03-01", To: "2026-03-01"}},
		{name: "reversed", q: url.Values{"from": {"2026-03-31"}, "to": {"2026-03-01"}}, wantErr: ErrInvalidDateRange},
		{name: "malformed", q: url.Values{"from": {"03/01/2026"}}, wantErr: ErrInvalidDateRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateRange(tt.q)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("range = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		name      string
		p         PageParams
		total     int
		wantPages int
		hasNext   bool
		hasPrev   bool
	}{
		{name: "empty", p: PageParams{Page: 1, PerPage: 20}, total: 0, wantPages: 1},
		{name: "exact fit", p: PageParams{Page: 1, PerPage: 20}, total: 40, wantPages: 2, hasNext: true},
		{name: "partial last page", p: PageParams{Page: 3, PerPage: 20}, total: 41, wantPages: 3, hasPrev: true},
		{name: "beyond the end", p: PageParams{Page: 9, PerPage: 20}, total: 5, wantPages: 1, hasPrev: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := NewPageInfo(tt.p, tt.total)
			if info.TotalPages != tt.wantPages || info.HasNext() != tt.hasNext || info.HasPrev() != tt.hasPrev {
				t.Errorf("info = %+v next=%v prev=%v", info, info.HasNext(), info.HasPrev())
			}
		})
	}
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		page, totalPages int
		want             []int
	}{
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 3, 4, 5}},
		{6, 10, []int{4, 5, 6, 7, 8}},
		{10, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		info := PageInfo{Page: tt.page, PerPage: 20, TotalPages: tt.totalPages}
		if got := info.PageNumbers(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PageNumbers(page=%d of %d) = %v, want %v", tt.page, tt.totalPages, got, tt.want)
		}
	}
}
