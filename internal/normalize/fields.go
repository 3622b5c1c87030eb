package normalize

import (
	"strconv"
	"strings"
)

// Candidates lists the field names that may hold one logical value, most
// preferred first. Airtable columns come first, then the snake_case columns
// of the Supabase schema.
type Candidates []string

// Job Listings table.
var (
	JobTitle       = Candidates{"Title", "Job Title", "title"}
	JobExternalID  = Candidates{"Job ID", "job_id", "external_id"}
	JobCompany     = Candidates{"Company", "Company Name", "company_name", "companies"}
	JobLocation    = Candidates{"Country", "Location", "location"}
	JobRemote      = Candidates{"Remote First", "Remote", "is_remote"}
	JobFunction    = Candidates{"Function", "Department", "function_bucket", "function"}
	JobIndustry    = Candidates{"Company Industry", "Industry", "industry"}
	JobInvestors   = Candidates{"Investors", "investors"}
	JobDatePosted  = Candidates{"Date Posted", "Posted Date", "date_posted", "posted_at"}
	JobFirstSeen   = Candidates{"First Seen", "first_seen_at", "first_seen"}
	JobURL         = Candidates{"Job URL", "job_url", "url"}
	JobApplyURL    = Candidates{"Apply URL", "apply_url"}
	JobSalary      = Candidates{"Salary", "salary"}
	JobDescription = Candidates{"Job Description", "Description", "description"}
	JobRawJSON     = Candidates{"Raw JSON", "raw_json"}
)

// Companies table.
var (
	CompanyName      = Candidates{"Company", "Name", "Company Name", "name"}
	CompanyWebsite   = Candidates{"Website", "Company Website", "URL", "website", "domain"}
	CompanyLogo      = Candidates{"Logo", "logo_url", "logo"}
	CompanyStage     = Candidates{"Stage", "Funding Stage", "stage"}
	CompanyIndustry  = Candidates{"Industry", "industry"}
	CompanyInvestors = Candidates{"Investors", "VCs", "investors"}
	CompanyJobsURL   = Candidates{"Jobs API URL", "careers_url"}
)

// Investors table. The investor's display name lives in a column called
// "Company" in the Airtable base.
var (
	InvestorName    = Candidates{"Company", "Name", "Investor", "name"}
	InvestorWebsite = Candidates{"Website", "URL", "website"}
	InvestorLogo    = Candidates{"Logo", "logo_url", "logo"}
	InvestorType    = Candidates{"Type", "Investor Type", "type"}
)

// Function and Industry lookup tables.
var (
	FunctionName = Candidates{"Function", "Name", "name"}
	IndustryName = Candidates{"Industry Name", "Industry", "Name", "name"}
)

// Lookup returns the first candidate field holding a non-empty value.
func Lookup(fields map[string]any, c Candidates) (any, bool) {
	for _, name := range c {
		v, ok := fields[name]
		if !ok || isEmpty(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

// String resolves c to a single trimmed string. Lists yield their first
// non-empty element.
func String(fields map[string]any, c Candidates) string {
	v, ok := Lookup(fields, c)
	if !ok {
		return ""
	}
	if list := toList(v); list != nil {
		for _, item := range list {
			if s := scalarString(item); s != "" {
				return s
			}
		}
		return ""
	}
	return scalarString(v)
}

// Strings resolves c to a list of non-empty strings. A scalar yields a
// one-element list.
func Strings(fields map[string]any, c Candidates) []string {
	v, ok := Lookup(fields, c)
	if !ok {
		return nil
	}
	list := toList(v)
	if list == nil {
		list = []any{v}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := scalarString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Bool resolves c to a boolean. The second result reports whether any
// candidate held a value that could be read as one.
func Bool(fields map[string]any, c Candidates) (bool, bool) {
	for _, name := range c {
		switch v := fields[name].(type) {
		case bool:
			return v, true
		case float64:
			return v != 0, true
		case int:
			return v != 0, true
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, true
			}
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "yes", "y":
				return true, true
			case "no", "n":
				return false, true
			}
		}
	}
	return false, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func toList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any:
		// attachment and linked-object shapes
		for _, key := range []string{"url", "name"} {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
