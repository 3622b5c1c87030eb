package filter

import (
	"slices"
	"strings"

	"github.com/amishk599/cadre/internal/model"
)

// Options are the selectable values for the job filters.
type Options struct {
	Departments []string `json:"departments"`
	Locations   []string `json:"locations"`
	Industries  []string `json:"industries"`
	Investors   []string `json:"investors"`
}

// OptionsFor collects the sorted, de-duplicated filter values present in jobs.
// Locations are city-level segments; the bare "remote" location is left out
// because the remote filter covers it.
func OptionsFor(jobs []model.JobListing) Options {
	departments := map[string]struct{}{}
	locations := map[string]struct{}{}
	industries := map[string]struct{}{}
	investors := map[string]struct{}{}

	for _, j := range jobs {
		add(departments, j.Department)
		if seg := LocationSegment(j.Location); !strings.EqualFold(seg, "remote") {
			add(locations, seg)
		}
		add(industries, j.Industry)
		for _, inv := range j.Investors {
			add(investors, inv)
		}
	}

	return Options{
		Departments: sortedKeys(departments),
		Locations:   sortedKeys(locations),
		Industries:  sortedKeys(industries),
		Investors:   sortedKeys(investors),
	}
}

func add(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
