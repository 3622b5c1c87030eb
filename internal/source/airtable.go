package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/cadre/internal/model"
)

const (
	// DefaultAirtableBaseURL is the Airtable REST endpoint.
	DefaultAirtableBaseURL = "https://api.airtable.com/v0"

	// maxUpdateBatch is the most records Airtable accepts in one PATCH.
	maxUpdateBatch = 10

	// maxPages bounds a single listing in case the cursor never terminates.
	maxPages = 1000
)

var (
	_ model.RecordSource  = (*AirtableClient)(nil)
	_ model.RecordGetter  = (*AirtableClient)(nil)
	_ model.RecordUpdater = (*AirtableClient)(nil)
)

// AirtableClient reads and updates records of one Airtable base.
type AirtableClient struct {
	baseURL string
	baseID  string
	apiKey  string
	client  *http.Client
}

// NewAirtableClient creates a client for the given base. It returns
// model.ErrNotConfigured when the base id or API key is missing.
func NewAirtableClient(baseURL, baseID, apiKey string, client *http.Client) (*AirtableClient, error) {
	if strings.TrimSpace(baseID) == "" || strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("airtable client: %w", model.ErrNotConfigured)
	}
	if baseURL == "" {
		baseURL = DefaultAirtableBaseURL
	}
	return &AirtableClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		baseID:  baseID,
		apiKey:  apiKey,
		client:  client,
	}, nil
}

// listResponse is one page of an Airtable listing.
type listResponse struct {
	Records []model.Record `json:"records"`
	Offset  string         `json:"offset"`
}

// errorResponse covers both Airtable error shapes: {"error":"NOT_FOUND"} and
// {"error":{"type":"...","message":"..."}}.
type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// ListRecords returns every record of table matching q, following the offset
// cursor until Airtable stops returning one.
func (c *AirtableClient) ListRecords(ctx context.Context, table string, q model.Query) ([]model.Record, error) {
	var (
		records []model.Record
		offset  string
	)
	for page := 0; page < maxPages; page++ {
		params := listParams(q, offset)
		var resp listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+params.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("airtable list %s: %w", table, err)
		}
		records = append(records, resp.Records...)

		if q.MaxRecords > 0 && len(records) >= q.MaxRecords {
			return records[:q.MaxRecords], nil
		}
		if resp.Offset == "" || resp.Offset == offset {
			return records, nil
		}
		offset = resp.Offset
	}
	return records, nil
}

// GetRecord fetches one record by id. Unknown ids yield model.ErrNotFound.
func (c *AirtableClient) GetRecord(ctx context.Context, table, id string) (model.Record, error) {
	var rec model.Record
	err := c.do(ctx, http.MethodGet, c.tableURL(table)+"/"+url.PathEscape(id), nil, &rec)
	if err != nil {
		return model.Record{}, fmt.Errorf("airtable get %s/%s: %w", table, id, err)
	}
	return rec, nil
}

// UpdateRecords patches records in batches of at most ten. It stops at the
// first failed batch.
func (c *AirtableClient) UpdateRecords(ctx context.Context, table string, updates []model.RecordUpdate) error {
	for start := 0; start < len(updates); start += maxUpdateBatch {
		end := min(start+maxUpdateBatch, len(updates))
		body, err := json.Marshal(struct {
			Records []model.RecordUpdate `json:"records"`
		}{Records: updates[start:end]})
		if err != nil {
			return fmt.Errorf("airtable update %s: %w", table, err)
		}
		if err := c.do(ctx, http.MethodPatch, c.tableURL(table), body, nil); err != nil {
			return fmt.Errorf("airtable update %s (records %d-%d): %w", table, start, end-1, err)
		}
	}
	return nil
}

func (c *AirtableClient) tableURL(table string) string {
	return c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)
}

func listParams(q model.Query, offset string) url.Values {
	params := url.Values{}
	for _, f := range q.Fields {
		params.Add("fields[]", f)
	}
	for i, s := range q.Sort {
		params.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		dir := s.Direction
		if dir == "" {
			dir = "asc"
		}
		params.Set(fmt.Sprintf("sort[%d][direction]", i), dir)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(min(q.PageSize, 100)))
	}
	if q.MaxRecords > 0 {
		params.Set("maxRecords", strconv.Itoa(q.MaxRecords))
	}
	if q.Formula != "" {
		params.Set("filterByFormula", q.Formula)
	}
	if offset != "" {
		params.Set("offset", offset)
	}
	return params
}

func (c *AirtableClient) do(ctx context.Context, method, rawURL string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError converts a non-2xx response into an HTTPError. Missing tables
// and records wrap model.ErrTableNotFound or model.ErrNotFound.
func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	kind := errorKind(raw)

	var cause error
	switch {
	case kind == "TABLE_NOT_FOUND" || kind == "INVALID_PERMISSIONS_OR_MODEL_NOT_FOUND":
		cause = model.ErrTableNotFound
	case resp.StatusCode == http.StatusNotFound && (kind == "NOT_FOUND" || kind == "MODEL_ID_NOT_FOUND"):
		cause = model.ErrNotFound
	case resp.StatusCode == http.StatusNotFound:
		cause = model.ErrTableNotFound
	default:
		cause = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return &model.HTTPError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		Err:        cause,
	}
}

func errorKind(raw []byte) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil || len(er.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(er.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(er.Error, &obj); err == nil {
		return obj.Type
	}
	return ""
}
