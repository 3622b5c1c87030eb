package normalize

import (
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Robotics", "acme-robotics"},
		{"  --Hello,  World!!--", "hello-world"},
		{"a---b", "a-b"},
		{"ALLCAPS", "allcaps"},
		{"Café 24/7", "caf-24-7"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Slug(tt.in)
			if got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if Slug(got) != got {
				t.Errorf("Slug is not stable for %q", tt.in)
			}
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.acme.io", "acme.io"},
		{"http://beta.dev/careers", "beta.dev"},
		{"www.Gamma.COM", "gamma.com"},
		{"gamma.com", "gamma.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Domain(tt.in); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsRecordID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"recCompanyAcme0001", true},
		{"rec12345678901234", true},
		{"rec1234567890123", false},
		{"Acme Robotics", false},
		{"tblCompanyAcme0001", false},
		{"rec_company_acme_1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRecordID(tt.in); got != tt.want {
			t.Errorf("IsRecordID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNamesResolve(t *testing.T) {
	names := Names{
		"recInvestorSeq0001": "Sequoia Capital",
		"recInvestorA16z001": "Andreessen Horowitz",
	}

	got := names.Resolve([]string{"recInvestorSeq0001", "Index Ventures", "recInvestorGone001", "", "recInvestorA16z001"})
	want := []string{"Sequoia Capital", "Index Ventures", "Andreessen Horowitz"}
	if len(got) != len(want) {
		t.Fatalf("Resolve = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resolve[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if first := names.First([]string{"recInvestorGone001"}); first != "" {
		t.Errorf("First of unresolvable id = %q, want empty", first)
	}
	if out := (Names{}).Resolve(nil); out == nil || len(out) != 0 {
		t.Errorf("Resolve(nil) = %#v, want empty non-nil slice", out)
	}
}

func TestFieldAccessors(t *testing.T) {
	fields := map[string]any{
		"Title":        "  Staff Engineer ",
		"Job Title":    "ignored",
		"Company":      []any{"recCompanyAcme0001", "recCompanyBeta0001"},
		"Salary":       float64(150000),
		"Remote First": true,
		"Empty":        "",
		"Logo":         []any{map[string]any{"url": "https://cdn.example.com/logo.png", "filename": "logo.png"}},
		"is_remote":    "yes",
	}

	if got := String(fields, Candidates{"Title", "Job Title"}); got != "Staff Engineer" {
		t.Errorf("String(Title) = %q", got)
	}
	if got := String(fields, Candidates{"Empty", "Job Title"}); got != "ignored" {
		t.Errorf("String skips empty candidates: got %q", got)
	}
	if got := String(fields, Candidates{"Company"}); got != "recCompanyAcme0001" {
		t.Errorf("String(list) = %q, want first element", got)
	}
	if got := String(fields, Candidates{"Salary"}); got != "150000" {
		t.Errorf("String(number) = %q", got)
	}
	if got := String(fields, Candidates{"Logo"}); got != "https://cdn.example.com/logo.png" {
		t.Errorf("String(attachment) = %q", got)
	}
	if got := String(fields, Candidates{"Missing"}); got != "" {
		t.Errorf("String(missing) = %q", got)
	}
	if got := Strings(fields, Candidates{"Title"}); len(got) != 1 || got[0] != "Staff Engineer" {
		t.Errorf("Strings(scalar) = %v", got)
	}
	if got := Strings(fields, Candidates{"Company"}); len(got) != 2 {
		t.Errorf("Strings(list) = %v", got)
	}
	if v, ok := Bool(fields, Candidates{"Remote First"}); !ok || !v {
		t.Errorf("Bool(Remote First) = %v, %v", v, ok)
	}
	if v, ok := Bool(fields, Candidates{"is_remote"}); !ok || !v {
		t.Errorf("Bool(yes) = %v, %v", v, ok)
	}
	if _, ok := Bool(fields, Candidates{"Missing"}); ok {
		t.Error("Bool(missing) reported a value")
	}
}

func TestIsRemote(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name       string
		structured *bool
		location   string
		want       bool
	}{
		{"regex remote", nil, "Remote - US", true},
		{"regex wfh", nil, "WFH friendly", true},
		{"regex anywhere", nil, "Work from anywhere", true},
		{"regex distributed", nil, "Distributed team", true},
		{"regex work from home", nil, "Work From Home", true},
		{"regex onsite", nil, "New York, NY", false},
		{"structured wins over location", &no, "Remote", false},
		{"structured true", &yes, "London, UK", true},
		{"empty location", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRemote(tt.structured, tt.location); got != tt.want {
				t.Errorf("IsRemote = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostedDate(t *testing.T) {
	created := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		fields  map[string]any
		created time.Time
		want    string
	}{
		{"explicit date", map[string]any{"Date Posted": "2024-01-15", "First Seen": "2024-01-12T00:00:00.000Z"}, created, "2024-01-15"},
		{"first seen", map[string]any{"First Seen": "2024-01-12T00:00:00.000Z"}, created, "2024-01-12T00:00:00.000Z"},
		{"created time", map[string]any{}, created, "2024-01-10T08:30:00Z"},
		{"blank explicit date", map[string]any{"Date Posted": "  "}, created, "2024-01-10T08:30:00Z"},
		{"nothing known", map[string]any{}, time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PostedDate(tt.fields, tt.created); got != tt.want {
				t.Errorf("PostedDate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "  Build   things  ", "Build things"},
		{"paragraphs", "<p>Hello</p><p>World &amp; more</p>", "Hello World & more"},
		{"double encoded", "&lt;p&gt;Ship &lt;strong&gt;fast&lt;/strong&gt;&lt;/p&gt;", "Ship fast"},
		{"list items", "<ul><li>Go</li><li>SQL</li></ul>", "Go SQL"},
		{"drops scripts", "<div>Apply<script>alert(1)</script></div>", "Apply"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHTML(tt.in); got != tt.want {
				t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
