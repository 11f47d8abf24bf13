package viewdata

import (
	"net/url"
	"testing"
)

func TestNewPager(t *testing.T) {
	q := url.Values{"q": {"ann"}, "status": {"blocked"}, "page": {"2"}, "empty": {""}}

	tests := []struct {
		name      string
		page      int
		total     int64
		wantPage  int
		wantPages int
		wantPrev  string
		wantNext  string
		wantRange [2]int
	}{
		{"first of three", 1, 25, 1, 3, "", "/users?page=2&q=ann&status=blocked", [2]int{1, 10}},
		{"middle", 2, 25, 2, 3, "/users?q=ann&status=blocked", "/users?page=3&q=ann&status=blocked", [2]int{11, 20}},
		{"last partial", 3, 25, 3, 3, "/users?page=2&q=ann&status=blocked", "", [2]int{21, 25}},
		{"past the end clamps", 9, 25, 3, 3, "/users?page=2&q=ann&status=blocked", "", [2]int{21, 25}},
		{"empty", 1, 0, 1, 1, "", "", [2]int{0, 0}},
		{"zero page", 0, 5, 1, 1, "", "", [2]int{1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPager("/users", q, tt.page, 10, tt.total)
			if p.Page != tt.wantPage || p.TotalPages != tt.wantPages {
				t.Errorf("page %d of %d, want %d of %d", p.Page, p.TotalPages, tt.wantPage, tt.wantPages)
			}
			if p.PrevURL != tt.wantPrev {
				t.Errorf("PrevURL = %q, want %q", p.PrevURL, tt.wantPrev)
			}
			if p.NextURL != tt.wantNext {
				t.Errorf("NextURL = %q, want %q", p.NextURL, tt.wantNext)
			}
			if p.HasPrev != (tt.wantPrev != "") || p.HasNext != (tt.wantNext != "") {
				t.Errorf("HasPrev=%v HasNext=%v", p.HasPrev, p.HasNext)
			}
			if p.RangeStart != tt.wantRange[0] || p.RangeEnd != tt.wantRange[1] {
				t.Errorf("range = %d-%d, want %d-%d", p.RangeStart, p.RangeEnd, tt.wantRange[0], tt.wantRange[1])
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	for raw, want := range map[string]int{"": 1, "0": 1, "-3": 1, "x": 1, "4": 4} {
		if got := ParsePage(raw); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", raw, got, want)
		}
	}
}
