// internal/app/system/viewdata/pager.go
package viewdata

import (
	"net/url"
	"strconv"
)

// Pager describes one page of a paged list and links to its neighbours.
type Pager struct {
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
	RangeStart int
	RangeEnd   int
}

// NewPager builds a Pager for page (1-based) of total items. Links keep the
// other parameters of q and rewrite only "page". An out-of-range page is
// clamped.
func NewPager(path string, q url.Values, page, pageSize int, total int64) Pager {
	if pageSize <= 0 {
		pageSize = 10
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	p := Pager{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if total > 0 {
		p.RangeStart = (page-1)*pageSize + 1
		p.RangeEnd = p.RangeStart + pageSize - 1
		if int64(p.RangeEnd) > total {
			p.RangeEnd = int(total)
		}
	}
	if p.HasPrev {
		p.PrevURL = pageURL(path, q, page-1)
	}
	if p.HasNext {
		p.NextURL = pageURL(path, q, page+1)
	}
	return p
}

// ParsePage reads a 1-based page number; anything else is page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func pageURL(path string, q url.Values, page int) string {
	v := url.Values{}
	for k, vals := range q {
		if k == "page" {
			continue
		}
		for _, s := range vals {
			if s != "" {
				v.Add(k, s)
			}
		}
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if enc := v.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}
