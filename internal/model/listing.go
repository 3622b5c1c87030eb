package model

import "time"

// CompanyUnknown is the display name used when a job has no resolvable employer.
const CompanyUnknown = "Unknown"

// JobListing is a job posting ready for display and filtering.
type JobListing struct {
	ID             string   `json:"id"`
	JobID          string   `json:"jobId,omitempty"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	CompanySlug    string   `json:"companySlug"`
	CompanyWebsite string   `json:"companyWebsite,omitempty"`
	Location       string   `json:"location"`
	Department     string   `json:"department"`
	Industry       string   `json:"industry,omitempty"`
	PostedDate     string   `json:"postedDate"`
	JobURL         string   `json:"jobUrl,omitempty"`
	ApplyURL       string   `json:"applyUrl"`
	Salary         string   `json:"salary,omitempty"`
	Description    string   `json:"description,omitempty"`
	Investors      []string `json:"investors"`
	IsRemote       bool     `json:"isRemote"`
}

// CompanyListing is a portfolio company with its open-role count.
type CompanyListing struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	Website   string   `json:"website,omitempty"`
	Domain    string   `json:"domain,omitempty"`
	Logo      string   `json:"logo,omitempty"`
	Stage     string   `json:"stage,omitempty"`
	Industry  string   `json:"industry,omitempty"`
	Investors []string `json:"investors"`
	JobsURL   string   `json:"jobsUrl,omitempty"`
	OpenJobs  int      `json:"openJobs"`
}

// InvestorListing is a venture firm with the number of portfolio companies it backs.
type InvestorListing struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Website      string `json:"website,omitempty"`
	Logo         string `json:"logo,omitempty"`
	Type         string `json:"type,omitempty"`
	CompanyCount int    `json:"companyCount"`
}

// RunReport summarizes one maintenance run (a backfill or an enrichment pass).
type RunReport struct {
	Name      string        `json:"name"`
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Errors    []string      `json:"errors,omitempty"`
	HasMore   bool          `json:"hasMore"`
	Runtime   time.Duration `json:"runtime"`
	Results   []string      `json:"results,omitempty"`
}
