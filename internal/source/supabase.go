package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"github.com/amishk599/cadre/internal/model"
)

// defaultSupabasePageSize matches PostgREST's default max-rows setting.
const defaultSupabasePageSize = 1000

var _ model.RecordSource = (*SupabaseSource)(nil)

// SupabaseSource lists rows of Supabase tables through PostgREST. Linked
// values arrive as literals (joined names), not record ids.
type SupabaseSource struct {
	client *supabase.Client
}

// NewSupabaseSource creates a source for the project at url. It returns
// model.ErrNotConfigured when url or key is missing.
func NewSupabaseSource(url, key string) (*SupabaseSource, error) {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("supabase client: %w", model.ErrNotConfigured)
	}
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &SupabaseSource{client: client}, nil
}

// ListRecords pages through table with range requests until a short page is
// returned. Query formulas are Airtable syntax and are not applied here.
func (s *SupabaseSource) ListRecords(ctx context.Context, table string, q model.Query) ([]model.Record, error) {
	columns := "*"
	if len(q.Fields) > 0 {
		columns = strings.Join(q.Fields, ",")
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = defaultSupabasePageSize
	}
	if q.MaxRecords > 0 && q.MaxRecords < pageSize {
		pageSize = q.MaxRecords
	}

	var records []model.Record
	for from := 0; ; from += pageSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("supabase list %s: %w", table, err)
		}

		query := s.client.From(table).Select(columns, "", false)
		for _, sf := range q.Sort {
			query = query.Order(sf.Field, &postgrest.OrderOpts{Ascending: sf.Direction != "desc"})
		}
		query = query.Range(from, from+pageSize-1, "")

		var rows []map[string]any
		if _, err := query.ExecuteTo(&rows); err != nil {
			return nil, fmt.Errorf("supabase list %s: %w", table, classifyPostgrestError(err))
		}
		records = append(records, RowsToRecords(rows)...)

		if q.MaxRecords > 0 && len(records) >= q.MaxRecords {
			return records[:q.MaxRecords], nil
		}
		if len(rows) < pageSize {
			return records, nil
		}
	}
}

// RowsToRecords converts PostgREST rows into records. The "id" and
// "created_at" columns populate the record identity and creation time; every
// column stays available in Fields.
func RowsToRecords(rows []map[string]any) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		rec := model.Record{Fields: row}
		rec.ID = rowID(row["id"])
		if created, ok := row["created_at"].(string); ok {
			if t, err := time.Parse(time.RFC3339, created); err == nil {
				rec.CreatedTime = t
			}
		}
		records = append(records, rec)
	}
	return records
}

// rowID formats an id column. JSON numbers decode as float64, and bigint ids
// must not come out in exponent form.
func rowID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// classifyPostgrestError maps "relation does not exist" errors to
// model.ErrTableNotFound.
func classifyPostgrestError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "42P01") || strings.Contains(msg, "PGRST205") || strings.Contains(msg, "does not exist") {
		return fmt.Errorf("%w: %v", model.ErrTableNotFound, err)
	}
	return err
}
