package filter

import (
	"slices"
	"strings"

	"github.com/amishk599/cadre/internal/model"
)

// Remote is the tri-state remote filter.
type Remote string

const (
	RemoteAny  Remote = ""
	RemoteOnly Remote = "remote"
	OnsiteOnly Remote = "onsite"
)

// ParseRemote maps a query value to a Remote mode. Unknown values mean RemoteAny.
func ParseRemote(s string) Remote {
	switch Remote(strings.ToLower(strings.TrimSpace(s))) {
	case RemoteOnly:
		return RemoteOnly
	case OnsiteOnly:
		return OnsiteOnly
	}
	return RemoteAny
}

// Spec describes which jobs to keep. Filters combine with AND; values inside
// a multi-valued filter combine with OR. Empty fields match everything.
type Spec struct {
	Search      string
	Departments []string
	Locations   []string
	Industries  []string
	Remote      Remote
}

// IsZero reports whether s matches every job.
func (s Spec) IsZero() bool {
	return strings.TrimSpace(s.Search) == "" && len(s.Departments) == 0 &&
		len(s.Locations) == 0 && len(s.Industries) == 0 && s.Remote == RemoteAny
}

// Result is the filtered job list. Total always equals len(Jobs).
type Result struct {
	Jobs  []model.JobListing `json:"jobs"`
	Total int                `json:"total"`
}

// Apply returns the jobs matching s in their original order.
func Apply(jobs []model.JobListing, s Spec) Result {
	q := strings.ToLower(strings.TrimSpace(s.Search))
	out := make([]model.JobListing, 0, len(jobs))
	for _, j := range jobs {
		if s.match(j, q) {
			out = append(out, j)
		}
	}
	return Result{Jobs: out, Total: len(out)}
}

// Match reports whether a single job passes s.
func (s Spec) Match(j model.JobListing) bool {
	return s.match(j, strings.ToLower(strings.TrimSpace(s.Search)))
}

func (s Spec) match(j model.JobListing, q string) bool {
	if q != "" && !MatchesSearch(j, q) {
		return false
	}
	if len(s.Departments) > 0 && !slices.Contains(s.Departments, j.Department) {
		return false
	}
	if len(s.Locations) > 0 && !slices.Contains(s.Locations, LocationSegment(j.Location)) {
		return false
	}
	if len(s.Industries) > 0 && !slices.Contains(s.Industries, j.Industry) {
		return false
	}
	switch s.Remote {
	case RemoteOnly:
		return j.IsRemote
	case OnsiteOnly:
		return !j.IsRemote
	}
	return true
}

// MatchesSearch reports whether the lowercased query q occurs in the job's
// title, company, department or any investor name.
func MatchesSearch(j model.JobListing, q string) bool {
	if strings.Contains(strings.ToLower(j.Title), q) ||
		strings.Contains(strings.ToLower(j.Company), q) ||
		strings.Contains(strings.ToLower(j.Department), q) {
		return true
	}
	for _, inv := range j.Investors {
		if strings.Contains(strings.ToLower(inv), q) {
			return true
		}
	}
	return false
}

// LocationSegment is the city-level part of a location: everything before
// the first comma, trimmed.
func LocationSegment(location string) string {
	seg, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(seg)
}
