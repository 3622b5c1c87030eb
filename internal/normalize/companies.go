package normalize

import "github.com/amishk599/cadre/internal/model"

// Companies normalizes company records. OpenJobs counts the jobs whose company
// slug matches.
func (n *Normalizer) Companies(records []model.Record, jobs []model.JobListing) []model.CompanyListing {
	openJobs := make(map[string]int)
	for _, j := range jobs {
		openJobs[j.CompanySlug]++
	}

	companies := make([]model.CompanyListing, 0, len(records))
	for _, r := range records {
		f := r.Fields
		if f == nil {
			f = map[string]any{}
		}
		name := String(f, CompanyName)
		slug := Slug(name)
		website := String(f, CompanyWebsite)

		c := model.CompanyListing{
			ID:        r.ID,
			Name:      name,
			Slug:      slug,
			Website:   website,
			Domain:    Domain(website),
			Logo:      String(f, CompanyLogo),
			Stage:     String(f, CompanyStage),
			Industry:  n.industryNames.First(Strings(f, CompanyIndustry)),
			Investors: n.investorNames.Resolve(Strings(f, CompanyInvestors)),
			JobsURL:   String(f, CompanyJobsURL),
		}
		if slug != "" {
			c.OpenJobs = openJobs[slug]
		}
		companies = append(companies, c)
	}
	return companies
}
