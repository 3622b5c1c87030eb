package normalize

import (
	"regexp"

	"github.com/amishk599/cadre/internal/model"
)

// recordIDPattern matches Airtable record identifiers ("rec" plus at least
// fourteen alphanumerics).
var recordIDPattern = regexp.MustCompile(`^rec[A-Za-z0-9]{14,}$`)

// IsRecordID reports whether s looks like a record identifier rather than a
// display value.
func IsRecordID(s string) bool {
	return recordIDPattern.MatchString(s)
}

// Names maps record ids of a reference table to display names.
type Names map[string]string

// BuildNames indexes records by id using the first non-empty candidate field
// as the display name. Records without a name are left out.
func BuildNames(records []model.Record, c Candidates) Names {
	names := make(Names, len(records))
	for _, r := range records {
		if name := String(r.Fields, c); name != "" {
			names[r.ID] = name
		}
	}
	return names
}

// Resolve maps linked values to display names. Record ids are looked up and
// dropped when unknown; literal values pass through unchanged.
func (n Names) Resolve(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if !IsRecordID(v) {
			out = append(out, v)
			continue
		}
		if name, ok := n[v]; ok {
			out = append(out, name)
		}
	}
	return out
}

// First resolves values and returns the first display name, or "".
func (n Names) First(values []string) string {
	resolved := n.Resolve(values)
	if len(resolved) == 0 {
		return ""
	}
	return resolved[0]
}
