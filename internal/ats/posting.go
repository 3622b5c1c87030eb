package ats

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Source names of the boards a job record can originate from.
const (
	SourceGreenhouse = "greenhouse"
	SourceLever      = "lever"
	SourceAshby      = "ashby"
)

// Posting is the subset of an ATS posting snapshot that the job board reads.
type Posting struct {
	Source      string
	Remote      *bool      // nil when the board has no structured remote flag
	PublishedAt *time.Time // ashby publishedAt, lever createdAt
	Published   string     // publish date as written back to the store
	UpdatedAt   string     // greenhouse updated_at, kept verbatim
}

// rawPosting covers the Greenhouse, Lever and Ashby posting shapes at once.
type rawPosting struct {
	// lever
	WorkplaceType *string         `json:"workplaceType"`
	CreatedAt     json.RawMessage `json:"createdAt"`
	HostedURL     string          `json:"hostedUrl"`

	// ashby
	IsRemote    *bool  `json:"isRemote"`
	PublishedAt string `json:"publishedAt"`
	JobURL      string `json:"jobUrl"`

	// greenhouse
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
}

// ParsePosting decodes the raw posting JSON stored alongside a job record.
// It returns false when raw is empty or not a JSON object.
func ParsePosting(raw string) (Posting, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '{' {
		return Posting{}, false
	}
	var rp rawPosting
	if err := json.Unmarshal([]byte(raw), &rp); err != nil {
		return Posting{}, false
	}

	var p Posting
	switch {
	case rp.PublishedAt != "" || rp.IsRemote != nil || rp.JobURL != "":
		p.Source = SourceAshby
		p.Remote = rp.IsRemote
		p.Published = rp.PublishedAt
		if t, err := time.Parse(time.RFC3339, rp.PublishedAt); err == nil {
			p.PublishedAt = &t
		}
	case rp.WorkplaceType != nil || len(rp.CreatedAt) > 0 || rp.HostedURL != "":
		p.Source = SourceLever
		if rp.WorkplaceType != nil && *rp.WorkplaceType != "" && *rp.WorkplaceType != "unspecified" {
			remote := *rp.WorkplaceType == "remote"
			p.Remote = &remote
		}
		if ms, ok := unixMillis(rp.CreatedAt); ok {
			t := time.UnixMilli(ms).UTC()
			p.PublishedAt = &t
			p.Published = t.Format("2006-01-02T15:04:05.000Z")
		}
	case rp.AbsoluteURL != "" || rp.UpdatedAt != "":
		p.Source = SourceGreenhouse
		p.UpdatedAt = rp.UpdatedAt
	default:
		return Posting{}, false
	}
	return p, true
}

func unixMillis(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	ms, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return ms, true
}
