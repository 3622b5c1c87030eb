package notifier

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/cadre/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleReport() model.RunReport {
	return model.RunReport{
		Name:      "backfill-functions",
		Processed: 8,
		Updated:   6,
		Skipped:   1,
		Errors:    []string{"Staff Engineer: perplexity returned 500"},
		Runtime:   2300 * time.Millisecond,
		Results:   []string{"Staff Engineer → Engineering"},
	}
}

func TestSlackNotifier_SingleReport(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(sampleReport()); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	if got := payload.Blocks[0].Text.Text; got != "⚠️ backfill-functions" {
		t.Errorf("header text = %q", got)
	}
	if got := payload.Blocks[1].Fields[1].Text; got != "*Updated:*\n6" {
		t.Errorf("updated field = %q", got)
	}
	if got := payload.Blocks[3].Fields[0].Text; got != "*Runtime:*\n2.3s" {
		t.Errorf("runtime field = %q", got)
	}
	if !strings.HasPrefix(payload.Text, "backfill-functions: Done! Updated 6 records") {
		t.Errorf("fallback text = %q", payload.Text)
	}
}

func TestSlackNotifier_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(sampleReport()); err == nil {
		t.Error("expected error on 500, got nil")
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := calls.Add(1)
		if c == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(sampleReport()); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestSlackNotifier_RateLimitedTwice(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	if err := n.Notify(sampleReport()); err == nil {
		t.Error("expected error when retry is also rate limited")
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_PayloadFormat(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client(), discardLogger())
	report := model.RunReport{Name: "backfill-dates", Processed: 100, Updated: 90, HasMore: true}
	if err := n.Notify(report); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// No results or errors: header, three field sections, divider.
	if len(payload.Blocks) != 5 {
		t.Fatalf("expected 5 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" {
		t.Errorf("block[0] type = %q, want header", payload.Blocks[0].Type)
	}
	if payload.Blocks[0].Text.Text != "⏳ backfill-dates" {
		t.Errorf("header = %q", payload.Blocks[0].Text.Text)
	}
	for i := 1; i <= 3; i++ {
		if payload.Blocks[i].Type != "section" || len(payload.Blocks[i].Fields) != 2 {
			t.Errorf("block[%d] not a 2-field section", i)
		}
	}
	if got := payload.Blocks[3].Fields[1].Text; got != "*Status:*\nMore remaining" {
		t.Errorf("status field = %q", got)
	}
	if payload.Blocks[4].Type != "divider" {
		t.Errorf("block[4] type = %q, want divider", payload.Blocks[4].Type)
	}
}

func TestBulletList_Truncates(t *testing.T) {
	var items []string
	for i := 0; i < maxListed+3; i++ {
		items = append(items, fmt.Sprintf("item %d", i))
	}
	got := bulletList(items)
	lines := strings.Split(got, "\n")
	if len(lines) != maxListed+1 {
		t.Fatalf("got %d lines, want %d", len(lines), maxListed+1)
	}
	if lines[maxListed] != "• …and 3 more" {
		t.Errorf("last line = %q", lines[maxListed])
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		report model.RunReport
		want   string
	}{
		{"done", model.RunReport{Updated: 4, Runtime: 120 * time.Millisecond}, "Done! Updated 4 records in 120ms."},
		{"more", model.RunReport{Updated: 10, HasMore: true, Runtime: 8 * time.Second}, "Updated 10 records in 8000ms. More remaining, run again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.report); got != tt.want {
				t.Errorf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendTestMessage(t *testing.T) {
	var got model.RunReport
	n := notifierFunc(func(r model.RunReport) error { got = r; return nil })
	if err := SendTestMessage(n); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if got.Name == "" || got.Updated != 1 {
		t.Errorf("unexpected test report %+v", got)
	}
}

type notifierFunc func(model.RunReport) error

func (f notifierFunc) Notify(r model.RunReport) error { return f(r) }
