package normalize

import (
	"strings"

	"github.com/amishk599/cadre/internal/model"
)

// Tables bundles the raw records of every table the board reads. Any of the
// reference tables may be empty.
type Tables struct {
	Jobs       []model.Record
	Companies  []model.Record
	Investors  []model.Record
	Functions  []model.Record
	Industries []model.Record
}

// Dataset is the normalized, display-ready form of Tables.
type Dataset struct {
	Jobs      []model.JobListing      `json:"jobs"`
	Companies []model.CompanyListing  `json:"companies"`
	Investors []model.InvestorListing `json:"investors"`
}

// Normalizer resolves linked references against lookup maps built once per
// dataset.
type Normalizer struct {
	companyNames  Names
	investorNames Names
	functionNames Names
	industryNames Names

	companyByID   map[string]model.Record
	companyByName map[string]model.Record
}

// NewNormalizer builds the lookup maps for the reference tables in t.
func NewNormalizer(t Tables) *Normalizer {
	n := &Normalizer{
		companyNames:  BuildNames(t.Companies, CompanyName),
		investorNames: BuildNames(t.Investors, InvestorName),
		functionNames: BuildNames(t.Functions, FunctionName),
		industryNames: BuildNames(t.Industries, IndustryName),
		companyByID:   make(map[string]model.Record, len(t.Companies)),
		companyByName: make(map[string]model.Record, len(t.Companies)),
	}
	for _, c := range t.Companies {
		n.companyByID[c.ID] = c
		if name := String(c.Fields, CompanyName); name != "" {
			n.companyByName[strings.ToLower(name)] = c
		}
	}
	return n
}

// Normalize converts every table in t into listings. Company open-job counts
// and investor portfolio counts are derived from the normalized jobs and
// companies.
func Normalize(t Tables) Dataset {
	n := NewNormalizer(t)
	jobs := n.Jobs(t.Jobs)
	companies := n.Companies(t.Companies, jobs)
	investors := n.Investors(t.Investors, companies)
	return Dataset{Jobs: jobs, Companies: companies, Investors: investors}
}

// employer finds the company record a job links to, by id or by name.
func (n *Normalizer) employer(values []string, name string) (model.Record, bool) {
	for _, v := range values {
		if c, ok := n.companyByID[v]; ok {
			return c, true
		}
	}
	if name == "" || name == model.CompanyUnknown {
		return model.Record{}, false
	}
	c, ok := n.companyByName[strings.ToLower(name)]
	return c, ok
}
