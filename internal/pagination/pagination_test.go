package pagination

import (
	"net/http/httptest"
	"testing"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", url: "/patients", wantPage: DefaultPage, wantLimit: DefaultLimit},
		{name: "explicit values", url: "/patients?page=3&limit=10", wantPage: 3, wantLimit: 10},
		{name: "limit capped", url: "/patients?limit=500", wantPage: DefaultPage, wantLimit: MaxLimit},
		{name: "invalid values ignored", url: "/patients?page=-1&limit=abc", wantPage: DefaultPage, wantLimit: DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			params := ParseParams(r)
			if params.Page != tt.wantPage || params.Limit != tt.wantLimit {
				t.Errorf("Expected page=%d limit=%d, got page=%d limit=%d",
					tt.wantPage, tt.wantLimit, params.Page, params.Limit)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int
		wantStart int
		wantEnd   int
	}{
		{name: "first page", page: 1, limit: 10, total: 25, wantStart: 0, wantEnd: 10},
		{name: "middle page", page: 2, limit: 10, total: 25, wantStart: 10, wantEnd: 20},
		{name: "partial last page", page: 3, limit: 10, total: 25, wantStart: 20, wantEnd: 25},
		{name: "page past the end", page: 5, limit: 10, total: 25, wantStart: 25, wantEnd: 25},
		{name: "empty slice", page: 1, limit: 10, total: 0, wantStart: 0, wantEnd: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Params{Page: tt.page, Limit: tt.limit}
			start, end := p.Bounds(tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("Expected [%d, %d), got [%d, %d)", tt.wantStart, tt.wantEnd, start, end)
			}
		})
	}
}

func TestCalculateMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	meta := p.CalculateMeta(25)

	if meta.TotalPages != 3 {
		t.Errorf("Expected 3 pages, got %d", meta.TotalPages)
	}
	if meta.TotalRecords != 25 {
		t.Errorf("Expected 25 records, got %d", meta.TotalRecords)
	}
	if !meta.HasNext || !meta.HasPrevious {
		t.Errorf("Expected both neighbours from the middle page, got %+v", meta)
	}

	first := Params{Page: 1, Limit: 10}
	empty := first.CalculateMeta(0)
	if empty.TotalPages != 1 || empty.HasNext || empty.HasPrevious {
		t.Errorf("Unexpected meta for empty set: %+v", empty)
	}
}
