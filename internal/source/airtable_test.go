package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/amishk599/cadre/internal/model"
)

func newTestAirtable(t *testing.T, srv *httptest.Server) *AirtableClient {
	t.Helper()
	c, err := NewAirtableClient(srv.URL+"/v0", "appTestBase", "pat-test", srv.Client())
	if err != nil {
		t.Fatalf("NewAirtableClient: %v", err)
	}
	return c
}

func TestNewAirtableClient_MissingCredentials(t *testing.T) {
	tests := []struct {
		name, baseID, key string
	}{
		{"no key", "appTestBase", ""},
		{"no base", "", "pat-test"},
		{"blank", "  ", "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAirtableClient("", tt.baseID, tt.key, http.DefaultClient)
			if !errors.Is(err, model.ErrNotConfigured) {
				t.Errorf("expected ErrNotConfigured, got %v", err)
			}
		})
	}
}

func TestAirtableListRecords_FollowsOffset(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []*http.Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "":
			fmt.Fprint(w, `{"records":[{"id":"recA","createdTime":"2024-01-10T08:30:00.000Z","fields":{"Title":"One"}},{"id":"recB","createdTime":"2024-01-11T08:30:00.000Z","fields":{"Title":"Two"}}],"offset":"itr1/recB"}`)
		case "itr1/recB":
			fmt.Fprint(w, `{"records":[{"id":"recC","createdTime":"2024-01-12T08:30:00.000Z","fields":{"Title":"Three"}}]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))
	defer srv.Close()

	c := newTestAirtable(t, srv)
	records, err := c.ListRecords(context.Background(), "Job Listings", model.Query{
		Fields:   []string{"Title", "Company"},
		Sort:     []model.SortField{{Field: "Date Posted", Direction: "desc"}},
		PageSize: 2,
		Formula:  "{Remote First} = 1",
	})
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records across pages, got %d", len(records))
	}
	if records[2].ID != "recC" || records[2].Fields["Title"] != "Three" {
		t.Errorf("unexpected last record %+v", records[2])
	}
	wantCreated := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	if !records[0].CreatedTime.Equal(wantCreated) {
		t.Errorf("CreatedTime = %v, want %v", records[0].CreatedTime, wantCreated)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	first := requests[0]
	if first.URL.Path != "/v0/appTestBase/Job Listings" {
		t.Errorf("path = %q", first.URL.Path)
	}
	if got := first.Header.Get("Authorization"); got != "Bearer pat-test" {
		t.Errorf("Authorization = %q", got)
	}
	q := first.URL.Query()
	if fields := q["fields[]"]; len(fields) != 2 || fields[0] != "Title" || fields[1] != "Company" {
		t.Errorf("fields[] = %v", fields)
	}
	if q.Get("sort[0][field]") != "Date Posted" || q.Get("sort[0][direction]") != "desc" {
		t.Errorf("sort params = %v", q)
	}
	if q.Get("pageSize") != "2" || q.Get("filterByFormula") != "{Remote First} = 1" {
		t.Errorf("pageSize/formula params = %v", q)
	}
}

func TestAirtableListRecords_MaxRecordsStopsPaging(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("maxRecords") != "1" {
			t.Errorf("maxRecords = %q", r.URL.Query().Get("maxRecords"))
		}
		fmt.Fprint(w, `{"records":[{"id":"recA","fields":{}},{"id":"recB","fields":{}}],"offset":"more"}`)
	}))
	defer srv.Close()

	records, err := newTestAirtable(t, srv).ListRecords(context.Background(), "Companies", model.Query{MaxRecords: 1})
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 || calls != 1 {
		t.Errorf("got %d records in %d calls, want 1 in 1", len(records), calls)
	}
}

func TestAirtableListRecords_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		retryAfter string
		wantIs     error
		wantStatus int
		wantRetry  time.Duration
	}{
		{name: "missing table 404", status: 404, body: `{"error":{"type":"TABLE_NOT_FOUND","message":"Could not find table"}}`, wantIs: model.ErrTableNotFound, wantStatus: 404},
		{name: "missing table 403", status: 403, body: `{"error":{"type":"INVALID_PERMISSIONS_OR_MODEL_NOT_FOUND"}}`, wantIs: model.ErrTableNotFound, wantStatus: 403},
		{name: "rate limited", status: 429, body: `{"errors":[]}`, retryAfter: "30", wantStatus: 429, wantRetry: 30 * time.Second},
		{name: "server error", status: 503, body: `oops`, wantStatus: 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestAirtable(t, srv).ListRecords(context.Background(), "Investors", model.Query{})
			if err == nil {
				t.Fatal("expected error")
			}
			var httpErr *model.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if httpErr.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", httpErr.StatusCode, tt.wantStatus)
			}
			if httpErr.RetryAfter != tt.wantRetry {
				t.Errorf("RetryAfter = %v, want %v", httpErr.RetryAfter, tt.wantRetry)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected errors.Is(%v), got %v", tt.wantIs, err)
			}
		})
	}
}

func TestAirtableListRecords_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer srv.Close()

	if _, err := newTestAirtable(t, srv).ListRecords(context.Background(), "Companies", model.Query{}); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestAirtableGetRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v0/appTestBase/Job Listings/recKnown" {
			fmt.Fprint(w, `{"id":"recKnown","createdTime":"2024-01-10T08:30:00.000Z","fields":{"Title":"Known"}}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"NOT_FOUND"}`)
	}))
	defer srv.Close()

	c := newTestAirtable(t, srv)
	rec, err := c.GetRecord(context.Background(), "Job Listings", "recKnown")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.Fields["Title"] != "Known" {
		t.Errorf("unexpected record %+v", rec)
	}

	_, err = c.GetRecord(context.Background(), "Job Listings", "recMissing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAirtableUpdateRecords_Batches(t *testing.T) {
	var batches []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		var body struct {
			Records []model.RecordUpdate `json:"records"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		batches = append(batches, len(body.Records))
		fmt.Fprint(w, `{"records":[]}`)
	}))
	defer srv.Close()

	updates := make([]model.RecordUpdate, 23)
	for i := range updates {
		updates[i] = model.RecordUpdate{ID: fmt.Sprintf("rec%d", i), Fields: map[string]any{"First Seen": "2024-01-01"}}
	}
	if err := newTestAirtable(t, srv).UpdateRecords(context.Background(), "Job Listings", updates); err != nil {
		t.Fatalf("UpdateRecords: %v", err)
	}
	if len(batches) != 3 || batches[0] != 10 || batches[1] != 10 || batches[2] != 3 {
		t.Errorf("batches = %v, want [10 10 3]", batches)
	}
}

func TestAirtableUpdateRecords_StopsOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN"}}`)
	}))
	defer srv.Close()

	updates := make([]model.RecordUpdate, 15)
	err := newTestAirtable(t, srv).UpdateRecords(context.Background(), "Job Listings", updates)
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call before stopping, got %d", calls)
	}
}

func TestAirtableListRecords_SingleRecordQuery(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/v0/appTestBase/Industry" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"type":"TABLE_NOT_FOUND"}}`)
			return
		}
		if r.URL.Query().Get("maxRecords") != "1" {
			t.Errorf("expected a single-record request, got %v", r.URL.Query())
		}
		fmt.Fprint(w, `{"records":[{"id":"recA","fields":{}}],"offset":"next"}`)
	}))
	defer srv.Close()

	c := newTestAirtable(t, srv)
	one := model.Query{PageSize: 1, MaxRecords: 1}
	got, err := c.ListRecords(context.Background(), "Companies", one)
	if err != nil {
		t.Fatalf("ListRecords(Companies): %v", err)
	}
	if len(got) != 1 || calls != 1 {
		t.Errorf("got %d records in %d calls, want 1 in 1", len(got), calls)
	}
	if _, err := c.ListRecords(context.Background(), "Industry", one); !errors.Is(err, model.ErrTableNotFound) {
		t.Errorf("ListRecords(Industry) = %v, want ErrTableNotFound", err)
	}
}
