package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/cadre/internal/model"
)

const (
	greenhouseHost = "boards-api.greenhouse.io"
	leverHost      = "api.lever.co"
	ashbyHost      = "api.ashbyhq.com"
)

// SourceForURL names the ATS serving a public board API URL, or "" when the
// host is not one of the supported boards.
func SourceForURL(boardURL string) string {
	u, err := url.Parse(boardURL)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Hostname()) {
	case greenhouseHost:
		return SourceGreenhouse
	case leverHost:
		return SourceLever
	case ashbyHost:
		return SourceAshby
	}
	return ""
}

// Client talks to the public job-board APIs of Greenhouse, Lever and Ashby.
type Client struct {
	client *http.Client
}

// NewClient creates a board client using the given HTTP client.
func NewClient(client *http.Client) *Client {
	return &Client{client: client}
}

// CountPostings fetches a board API URL and returns how many postings it lists.
// Greenhouse and Ashby wrap postings in {"jobs": [...]}; Lever returns a bare array.
func (c *Client) CountPostings(ctx context.Context, boardURL string) (int, error) {
	source := SourceForURL(boardURL)
	if source == "" {
		return 0, fmt.Errorf("board fetch for %s: unsupported host", boardURL)
	}
	if source == SourceLever && !strings.Contains(boardURL, "mode=json") {
		sep := "?"
		if strings.Contains(boardURL, "?") {
			sep = "&"
		}
		boardURL += sep + "mode=json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%s fetch for %s: %w", source, boardURL, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s fetch for %s: %w", source, boardURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s fetch for %s: unexpected status %d", source, boardURL, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%s fetch for %s: %w", source, boardURL, err)
	}
	body = bytes.TrimSpace(body)

	if len(body) > 0 && body[0] == '[' {
		var postings []json.RawMessage
		if err := json.Unmarshal(body, &postings); err != nil {
			return 0, fmt.Errorf("%s fetch for %s: %w", source, boardURL, err)
		}
		return len(postings), nil
	}

	var wrapped struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return 0, fmt.Errorf("%s fetch for %s: %w", source, boardURL, err)
	}
	return len(wrapped.Jobs), nil
}
