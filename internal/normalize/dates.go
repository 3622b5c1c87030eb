package normalize

import "time"

// PostedDate applies the posted-date fallback chain: the explicit posted date,
// then the first-seen timestamp, then the record's creation time.
func PostedDate(fields map[string]any, created time.Time) string {
	if d := String(fields, JobDatePosted); d != "" {
		return d
	}
	if d := String(fields, JobFirstSeen); d != "" {
		return d
	}
	if created.IsZero() {
		return ""
	}
	return created.UTC().Format(time.RFC3339)
}
