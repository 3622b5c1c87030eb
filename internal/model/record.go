package model

import (
	"context"
	"time"
)

// Record is one row of a backing-store table as returned by the remote API.
// Fields maps column names to loosely typed values: strings, numbers, booleans,
// and lists of linked record ids or literals.
type Record struct {
	ID          string         `json:"id"`
	Fields      map[string]any `json:"fields"`
	CreatedTime time.Time      `json:"createdTime"`
}

// SortField orders a query by one column.
type SortField struct {
	Field     string
	Direction string // "asc" or "desc"
}

// Query narrows a table listing. The zero value lists every record with every field.
type Query struct {
	Fields     []string    // projection; empty means all fields
	Sort       []SortField // applied in order
	PageSize   int         // records per page, zero uses the store default
	MaxRecords int         // overall cap, zero means unlimited
	Formula    string      // store-specific filter formula, may be empty
}

// RecordUpdate is a partial update of one record's fields.
type RecordUpdate struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// RecordSource lists every record of a table, following pagination to the end.
type RecordSource interface {
	ListRecords(ctx context.Context, table string, q Query) ([]Record, error)
}

// RecordGetter fetches a single record by id.
type RecordGetter interface {
	GetRecord(ctx context.Context, table, id string) (Record, error)
}

// RecordUpdater applies partial updates to existing records.
type RecordUpdater interface {
	UpdateRecords(ctx context.Context, table string, updates []RecordUpdate) error
}

// SnapshotStore persists the last successfully fetched records per table so a
// failed refresh can fall back to stale data.
type SnapshotStore interface {
	SaveSnapshot(table string, records []Record) error
	LoadSnapshot(table string) ([]Record, time.Time, error)
}

// Notifier delivers the summary of a maintenance run.
type Notifier interface {
	Notify(report RunReport) error
}

// TableNames maps the logical tables to their names in the backing store.
type TableNames struct {
	Jobs       string `yaml:"jobs"`
	Companies  string `yaml:"companies"`
	Investors  string `yaml:"investors"`
	Functions  string `yaml:"functions"`
	Industries string `yaml:"industries"`
}

// DefaultTableNames returns the table names of the Airtable base.
func DefaultTableNames() TableNames {
	return TableNames{
		Jobs:       "Job Listings",
		Companies:  "Companies",
		Investors:  "Investors",
		Functions:  "Function",
		Industries: "Industry",
	}
}
