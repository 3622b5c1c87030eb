package normalize

import (
	"github.com/amishk599/cadre/internal/ats"
	"github.com/amishk599/cadre/internal/model"
)

// Jobs normalizes job records in their original order.
func (n *Normalizer) Jobs(records []model.Record) []model.JobListing {
	jobs := make([]model.JobListing, 0, len(records))
	for _, r := range records {
		jobs = append(jobs, n.Job(r))
	}
	return jobs
}

// Job normalizes one job record. A job whose employer cannot be resolved is
// attributed to model.CompanyUnknown.
func (n *Normalizer) Job(r model.Record) model.JobListing {
	f := r.Fields
	if f == nil {
		f = map[string]any{}
	}

	companyRefs := Strings(f, JobCompany)
	company := n.companyNames.First(companyRefs)
	if company == "" {
		company = model.CompanyUnknown
	}
	employer, hasEmployer := n.employer(companyRefs, company)

	industry := n.industryNames.First(Strings(f, JobIndustry))
	investors := n.investorNames.Resolve(Strings(f, JobInvestors))
	var website string
	if hasEmployer {
		website = String(employer.Fields, CompanyWebsite)
		if industry == "" {
			industry = n.industryNames.First(Strings(employer.Fields, CompanyIndustry))
		}
		if len(investors) == 0 {
			investors = n.investorNames.Resolve(Strings(employer.Fields, CompanyInvestors))
		}
	}

	location := String(f, JobLocation)
	jobURL := String(f, JobURL)
	applyURL := String(f, JobApplyURL)
	if applyURL == "" {
		applyURL = jobURL
	}

	return model.JobListing{
		ID:             r.ID,
		JobID:          String(f, JobExternalID),
		Title:          String(f, JobTitle),
		Company:        company,
		CompanySlug:    Slug(company),
		CompanyWebsite: website,
		Location:       location,
		Department:     n.functionNames.First(Strings(f, JobFunction)),
		Industry:       industry,
		PostedDate:     PostedDate(f, r.CreatedTime),
		JobURL:         jobURL,
		ApplyURL:       applyURL,
		Salary:         String(f, JobSalary),
		Description:    CleanHTML(String(f, JobDescription)),
		Investors:      investors,
		IsRemote:       IsRemote(remoteSignal(f), location),
	}
}

// remoteSignal returns the structured remote flag for a job: the originating
// board's own flag when the raw posting carries one, else a checked
// remote-first box. nil means no structured signal.
func remoteSignal(f map[string]any) *bool {
	if p, ok := ats.ParsePosting(String(f, JobRawJSON)); ok && p.Remote != nil {
		return p.Remote
	}
	if remote, ok := Bool(f, JobRemote); ok && remote {
		return &remote
	}
	return nil
}
