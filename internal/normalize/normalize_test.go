package normalize

import (
	"reflect"
	"testing"
	"time"

	"github.com/amishk599/cadre/internal/model"
)

var created = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func testTables() Tables {
	return Tables{
		Jobs: []model.Record{
			{
				ID:          "recJobBackend00001",
				CreatedTime: created,
				Fields: map[string]any{
					"Title":       "Backend Engineer",
					"Company":     []any{"recCompanyAcme0001"},
					"Function":    []any{"recFunctionEng0001"},
					"Country":     "San Francisco, CA",
					"Date Posted": "2024-01-15",
					"Job URL":     "https://jobs.lever.co/acme/1",
					"Investors":   []any{"recInvestorSeq0001"},
					"Raw JSON":    `{"text":"Backend Engineer","workplaceType":"remote","hostedUrl":"https://jobs.lever.co/acme/1"}`,
				},
			},
			{
				ID:          "recJobDesigner0001",
				CreatedTime: created,
				Fields: map[string]any{
					"Title":     "Product Designer",
					"Company":   []any{"recCompanyBeta0001"},
					"Country":   "Remote - US",
					"Apply URL": "https://beta.dev/apply",
				},
			},
			{
				ID:          "recJobOrphan00001",
				CreatedTime: created,
				Fields: map[string]any{
					"Title":   "Account Executive",
					"Company": []any{"recCompanyGone0001"},
				},
			},
		},
		Companies: []model.Record{
			{ID: "recCompanyAcme0001", Fields: map[string]any{
				"Company":   "Acme Robotics",
				"Website":   "https://www.acme.io",
				"Industry":  []any{"recIndustryAI00001"},
				"Investors": []any{"recInvestorSeq0001", "recInvestorA16z001"},
				"Stage":     "Series B",
			}},
			{ID: "recCompanyBeta0001", Fields: map[string]any{
				"Company":   "Beta Labs",
				"Investors": []any{"recInvestorA16z001"},
			}},
		},
		Investors: []model.Record{
			{ID: "recInvestorSeq0001", Fields: map[string]any{"Company": "Sequoia Capital"}},
			{ID: "recInvestorA16z001", Fields: map[string]any{"Company": "Andreessen Horowitz", "Type": "VC"}},
		},
		Functions: []model.Record{
			{ID: "recFunctionEng0001", Fields: map[string]any{"Function": "Engineering"}},
		},
		Industries: []model.Record{
			{ID: "recIndustryAI00001", Fields: map[string]any{"Industry Name": "AI"}},
		},
	}
}

func TestNormalizeJobs(t *testing.T) {
	ds := Normalize(testTables())
	if len(ds.Jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(ds.Jobs))
	}

	backend := ds.Jobs[0]
	want := model.JobListing{
		ID:             "recJobBackend00001",
		Title:          "Backend Engineer",
		Company:        "Acme Robotics",
		CompanySlug:    "acme-robotics",
		CompanyWebsite: "https://www.acme.io",
		Location:       "San Francisco, CA",
		Department:     "Engineering",
		Industry:       "AI",
		PostedDate:     "2024-01-15",
		JobURL:         "https://jobs.lever.co/acme/1",
		ApplyURL:       "https://jobs.lever.co/acme/1",
		Investors:      []string{"Sequoia Capital"},
		IsRemote:       true,
	}
	if !reflect.DeepEqual(backend, want) {
		t.Errorf("backend job mismatch:\n got %+v\nwant %+v", backend, want)
	}

	designer := ds.Jobs[1]
	if designer.Company != "Beta Labs" || designer.CompanySlug != "beta-labs" {
		t.Errorf("designer company = %q/%q", designer.Company, designer.CompanySlug)
	}
	if !designer.IsRemote {
		t.Error("expected designer to be remote from location text")
	}
	if designer.ApplyURL != "https://beta.dev/apply" {
		t.Errorf("designer ApplyURL = %q", designer.ApplyURL)
	}
	if !reflect.DeepEqual(designer.Investors, []string{"Andreessen Horowitz"}) {
		t.Errorf("designer investors should fall back to the company's: %v", designer.Investors)
	}
	if designer.PostedDate != "2024-02-01T12:00:00Z" {
		t.Errorf("designer PostedDate = %q, want created time", designer.PostedDate)
	}

	orphan := ds.Jobs[2]
	if orphan.Company != model.CompanyUnknown {
		t.Errorf("orphan company = %q, want %q", orphan.Company, model.CompanyUnknown)
	}
	if orphan.CompanySlug != "unknown" {
		t.Errorf("orphan slug = %q", orphan.CompanySlug)
	}
	if orphan.Investors == nil || len(orphan.Investors) != 0 {
		t.Errorf("orphan investors = %#v, want empty list", orphan.Investors)
	}
}

func TestNormalizeJobs_MissingReferenceTables(t *testing.T) {
	tables := testTables()
	tables.Companies = nil
	tables.Investors = nil
	tables.Functions = nil
	tables.Industries = nil

	ds := Normalize(tables)
	for _, j := range ds.Jobs {
		if j.Company != model.CompanyUnknown {
			t.Errorf("%s: company = %q, want Unknown", j.ID, j.Company)
		}
		if j.Department != "" || j.Industry != "" {
			t.Errorf("%s: department/industry = %q/%q, want empty", j.ID, j.Department, j.Industry)
		}
		if len(j.Investors) != 0 {
			t.Errorf("%s: investors = %v, want empty", j.ID, j.Investors)
		}
	}
}

func TestNormalizeJobs_LiteralValues(t *testing.T) {
	ds := Normalize(Tables{Jobs: []model.Record{{
		ID: "42",
		Fields: map[string]any{
			"title":           "Data Engineer",
			"companies":       map[string]any{"name": "Gamma AI"},
			"function_bucket": "Engineering",
			"investors":       []any{"Sequoia Capital", "Index Ventures"},
			"location":        "Berlin, Germany",
			"is_remote":       false,
			"first_seen_at":   "2024-03-03T00:00:00Z",
		},
	}}})

	j := ds.Jobs[0]
	if j.Title != "Data Engineer" || j.Company != "Gamma AI" || j.CompanySlug != "gamma-ai" {
		t.Errorf("unexpected identity fields: %+v", j)
	}
	if j.Department != "Engineering" {
		t.Errorf("Department = %q", j.Department)
	}
	if !reflect.DeepEqual(j.Investors, []string{"Sequoia Capital", "Index Ventures"}) {
		t.Errorf("Investors = %v", j.Investors)
	}
	if j.IsRemote {
		t.Error("expected onsite job")
	}
	if j.PostedDate != "2024-03-03T00:00:00Z" {
		t.Errorf("PostedDate = %q", j.PostedDate)
	}
}

func TestNormalizeJobs_MissingTitleKept(t *testing.T) {
	ds := Normalize(Tables{Jobs: []model.Record{{ID: "recJobNoTitle00001", Fields: map[string]any{"Country": "Paris"}}}})
	if len(ds.Jobs) != 1 {
		t.Fatalf("expected the record to be kept, got %d jobs", len(ds.Jobs))
	}
	if ds.Jobs[0].Title != "" {
		t.Errorf("Title = %q, want empty", ds.Jobs[0].Title)
	}
}

func TestNormalizeCompaniesAndInvestors(t *testing.T) {
	ds := Normalize(testTables())

	if len(ds.Companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(ds.Companies))
	}
	acme := ds.Companies[0]
	if acme.Slug != "acme-robotics" || acme.Domain != "acme.io" || acme.Industry != "AI" || acme.Stage != "Series B" {
		t.Errorf("acme = %+v", acme)
	}
	if !reflect.DeepEqual(acme.Investors, []string{"Sequoia Capital", "Andreessen Horowitz"}) {
		t.Errorf("acme investors = %v", acme.Investors)
	}
	if acme.OpenJobs != 1 {
		t.Errorf("acme OpenJobs = %d, want 1", acme.OpenJobs)
	}

	counts := map[string]int{}
	for _, inv := range ds.Investors {
		counts[inv.Slug] = inv.CompanyCount
	}
	if counts["sequoia-capital"] != 1 || counts["andreessen-horowitz"] != 2 {
		t.Errorf("investor company counts = %v", counts)
	}
	if ds.Investors[1].Type != "VC" {
		t.Errorf("investor type = %q", ds.Investors[1].Type)
	}
}
