package source

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/amishk599/cadre/internal/model"
)

var (
	_ model.RecordSource = (*SampleSource)(nil)
	_ model.RecordGetter = (*SampleSource)(nil)
)

// SampleSource serves a fixed built-in dataset. It backs the board when no
// store is configured and replaces a table whose fetch failed.
type SampleSource struct {
	tables map[string][]model.Record
}

// NewSampleSource registers the built-in records under the given table names.
func NewSampleSource(names model.TableNames) *SampleSource {
	return &SampleSource{tables: map[string][]model.Record{
		names.Jobs:       sampleJobs(),
		names.Companies:  sampleCompanies(),
		names.Investors:  sampleInvestors(),
		names.Functions:  sampleFunctions(),
		names.Industries: sampleIndustries(),
	}}
}

// ListRecords returns a copy of the table's records, honouring MaxRecords.
// Unknown tables yield model.ErrTableNotFound.
func (s *SampleSource) ListRecords(_ context.Context, table string, q model.Query) ([]model.Record, error) {
	records, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("sample list %s: %w", table, model.ErrTableNotFound)
	}
	n := len(records)
	if q.MaxRecords > 0 && q.MaxRecords < n {
		n = q.MaxRecords
	}
	out := make([]model.Record, n)
	for i := range n {
		out[i] = copyRecord(records[i])
	}
	return out, nil
}

// GetRecord returns one record by id.
func (s *SampleSource) GetRecord(_ context.Context, table, id string) (model.Record, error) {
	for _, r := range s.tables[table] {
		if r.ID == id {
			return copyRecord(r), nil
		}
	}
	return model.Record{}, fmt.Errorf("sample get %s/%s: %w", table, id, model.ErrNotFound)
}

// Records returns the records of one table, or nil for unknown tables.
func (s *SampleSource) Records(table string) []model.Record {
	out, _ := s.ListRecords(context.Background(), table, model.Query{})
	return out
}

func copyRecord(r model.Record) model.Record {
	r.Fields = maps.Clone(r.Fields)
	return r
}

var sampleEpoch = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func sampleFunctions() []model.Record {
	return []model.Record{
		{ID: "recSampleFuncEng01", CreatedTime: sampleEpoch, Fields: map[string]any{"Function": "Engineering"}},
		{ID: "recSampleFuncDes01", CreatedTime: sampleEpoch, Fields: map[string]any{"Function": "Design"}},
		{ID: "recSampleFuncPrd01", CreatedTime: sampleEpoch, Fields: map[string]any{"Function": "Product"}},
		{ID: "recSampleFuncSal01", CreatedTime: sampleEpoch, Fields: map[string]any{"Function": "Sales"}},
		{ID: "recSampleFuncOps01", CreatedTime: sampleEpoch, Fields: map[string]any{"Function": "Operations"}},
	}
}

func sampleIndustries() []model.Record {
	return []model.Record{
		{ID: "recSampleIndAI0001", CreatedTime: sampleEpoch, Fields: map[string]any{"Industry Name": "AI"}},
		{ID: "recSampleIndFin001", CreatedTime: sampleEpoch, Fields: map[string]any{"Industry Name": "Fintech"}},
		{ID: "recSampleIndDev001", CreatedTime: sampleEpoch, Fields: map[string]any{"Industry Name": "Developer Tools"}},
		{ID: "recSampleIndHlth01", CreatedTime: sampleEpoch, Fields: map[string]any{"Industry Name": "Healthcare"}},
	}
}

func sampleInvestors() []model.Record {
	return []model.Record{
		{ID: "recSampleInvSeq001", CreatedTime: sampleEpoch, Fields: map[string]any{"Company": "Sequoia Capital", "Website": "https://www.sequoiacap.com", "Type": "VC"}},
		{ID: "recSampleInvA16z01", CreatedTime: sampleEpoch, Fields: map[string]any{"Company": "Andreessen Horowitz", "Website": "https://a16z.com", "Type": "VC"}},
		{ID: "recSampleInvIdx001", CreatedTime: sampleEpoch, Fields: map[string]any{"Company": "Index Ventures", "Website": "https://www.indexventures.com", "Type": "VC"}},
		{ID: "recSampleInvYC0001", CreatedTime: sampleEpoch, Fields: map[string]any{"Company": "Y Combinator", "Website": "https://www.ycombinator.com", "Type": "Accelerator"}},
	}
}

func sampleCompanies() []model.Record {
	company := func(id, name, website, stage, industry string, investors ...string) model.Record {
		inv := make([]any, len(investors))
		for i, v := range investors {
			inv[i] = v
		}
		return model.Record{ID: id, CreatedTime: sampleEpoch, Fields: map[string]any{
			"Company":   name,
			"Website":   website,
			"Stage":     stage,
			"Industry":  []any{industry},
			"Investors": inv,
		}}
	}
	return []model.Record{
		company("recSampleCoNimbus1", "Nimbus AI", "https://www.nimbus.ai", "Series B", "recSampleIndAI0001", "recSampleInvSeq001", "recSampleInvYC0001"),
		company("recSampleCoLedger1", "Ledgerline", "https://ledgerline.com", "Series A", "recSampleIndFin001", "recSampleInvA16z01"),
		company("recSampleCoForge01", "Forgekit", "https://forgekit.dev", "Seed", "recSampleIndDev001", "recSampleInvIdx001", "recSampleInvYC0001"),
		company("recSampleCoPulse01", "Pulse Health", "https://www.pulsehealth.io", "Series C", "recSampleIndHlth01", "recSampleInvSeq001", "recSampleInvA16z01"),
	}
}

func sampleJobs() []model.Record {
	job := func(n int, title, company, function, location string, daysAgo int) model.Record {
		posted := sampleEpoch.AddDate(0, 0, -daysAgo)
		return model.Record{
			ID:          fmt.Sprintf("recSampleJob%06d", n),
			CreatedTime: posted,
			Fields: map[string]any{
				"Job ID":      fmt.Sprintf("sample-%d", n),
				"Title":       title,
				"Company":     []any{company},
				"Function":    []any{function},
				"Country":     location,
				"Date Posted": posted.Format("2006-01-02"),
				"Job URL":     fmt.Sprintf("https://jobs.example.com/%d", n),
			},
		}
	}
	return []model.Record{
		job(1, "Senior Backend Engineer", "recSampleCoNimbus1", "recSampleFuncEng01", "San Francisco, CA", 1),
		job(2, "Machine Learning Engineer", "recSampleCoNimbus1", "recSampleFuncEng01", "Remote - US", 2),
		job(3, "Product Designer", "recSampleCoNimbus1", "recSampleFuncDes01", "New York, NY", 3),
		job(4, "Staff Software Engineer, Payments", "recSampleCoLedger1", "recSampleFuncEng01", "London, UK", 2),
		job(5, "Account Executive", "recSampleCoLedger1", "recSampleFuncSal01", "New York, NY", 5),
		job(6, "Product Manager", "recSampleCoLedger1", "recSampleFuncPrd01", "Remote", 7),
		job(7, "Developer Advocate", "recSampleCoForge01", "recSampleFuncEng01", "Anywhere", 4),
		job(8, "Founding Frontend Engineer", "recSampleCoForge01", "recSampleFuncEng01", "Berlin, Germany", 6),
		job(9, "Clinical Operations Lead", "recSampleCoPulse01", "recSampleFuncOps01", "Boston, MA", 8),
		job(10, "Data Engineer", "recSampleCoPulse01", "recSampleFuncEng01", "Boston, MA", 9),
		job(11, "Sales Development Representative", "recSampleCoPulse01", "recSampleFuncSal01", "Distributed", 10),
		job(12, "Design Systems Engineer", "recSampleCoForge01", "recSampleFuncDes01", "San Francisco, CA", 12),
	}
}
