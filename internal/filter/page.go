package filter

import "github.com/amishk599/cadre/internal/model"

// PageSize is the default number of jobs shown per page.
const PageSize = 25

// Page is one window of a filtered result.
type Page struct {
	Jobs    []model.JobListing `json:"jobs"`
	Total   int                `json:"total"`
	Offset  int                `json:"offset"`
	HasMore bool               `json:"hasMore"`
}

// Page returns limit jobs starting at offset. A non-positive limit uses
// PageSize; offsets past the end yield an empty page.
func (r Result) Page(offset, limit int) Page {
	if limit <= 0 {
		limit = PageSize
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(r.Jobs) {
		offset = len(r.Jobs)
	}
	end := min(offset+limit, len(r.Jobs))
	return Page{
		Jobs:    r.Jobs[offset:end],
		Total:   r.Total,
		Offset:  offset,
		HasMore: end < len(r.Jobs),
	}
}
