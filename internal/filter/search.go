package filter

import (
	"strings"

	"github.com/amishk599/cadre/internal/model"
)

// SearchLimit caps each category of a global search.
const SearchLimit = 10

// SearchResults groups global search hits by kind.
type SearchResults struct {
	Companies []model.CompanyListing  `json:"companies"`
	Investors []model.InvestorListing `json:"investors"`
	Jobs      []model.JobListing      `json:"jobs"`
}

// SearchAll matches q against company names, investor names and the job
// search fields. A blank query returns empty lists.
func SearchAll(q string, jobs []model.JobListing, companies []model.CompanyListing, investors []model.InvestorListing) SearchResults {
	res := SearchResults{
		Companies: []model.CompanyListing{},
		Investors: []model.InvestorListing{},
		Jobs:      []model.JobListing{},
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return res
	}

	for _, c := range companies {
		if len(res.Companies) == SearchLimit {
			break
		}
		if strings.Contains(strings.ToLower(c.Name), q) {
			res.Companies = append(res.Companies, c)
		}
	}
	for _, inv := range investors {
		if len(res.Investors) == SearchLimit {
			break
		}
		if strings.Contains(strings.ToLower(inv.Name), q) {
			res.Investors = append(res.Investors, inv)
		}
	}
	for _, j := range jobs {
		if len(res.Jobs) == SearchLimit {
			break
		}
		if MatchesSearch(j, q) {
			res.Jobs = append(res.Jobs, j)
		}
	}
	return res
}

// Companies returns the companies whose name contains q, case-insensitively.
func Companies(companies []model.CompanyListing, q string) []model.CompanyListing {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.CompanyListing, 0, len(companies))
	for _, c := range companies {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	return out
}

// Investors returns the investors whose name contains q, case-insensitively.
func Investors(investors []model.InvestorListing, q string) []model.InvestorListing {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.InvestorListing, 0, len(investors))
	for _, inv := range investors {
		if q == "" || strings.Contains(strings.ToLower(inv.Name), q) {
			out = append(out, inv)
		}
	}
	return out
}
