package filter

import (
	"net/url"
	"strings"
)

// Query parameter names shared by the HTTP API and saved searches.
const (
	ParamSearch    = "search"
	ParamFunctions = "functions"
	ParamIndustry  = "industry"
	ParamLocations = "locations"
	ParamRemote    = "remote"
)

// ParseQuery reads a Spec from URL query values. List parameters are
// comma-separated; empty entries are ignored.
func ParseQuery(v url.Values) Spec {
	return Spec{
		Search:      strings.TrimSpace(v.Get(ParamSearch)),
		Departments: splitList(v.Get(ParamFunctions)),
		Industries:  splitList(v.Get(ParamIndustry)),
		Locations:   splitList(v.Get(ParamLocations)),
		Remote:      ParseRemote(v.Get(ParamRemote)),
	}
}

// Encode is the inverse of ParseQuery. Empty filters are omitted so a zero
// Spec encodes to an empty query.
func (s Spec) Encode() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(s.Search); q != "" {
		v.Set(ParamSearch, q)
	}
	if len(s.Departments) > 0 {
		v.Set(ParamFunctions, strings.Join(s.Departments, ","))
	}
	if len(s.Industries) > 0 {
		v.Set(ParamIndustry, strings.Join(s.Industries, ","))
	}
	if len(s.Locations) > 0 {
		v.Set(ParamLocations, strings.Join(s.Locations, ","))
	}
	if s.Remote != RemoteAny {
		v.Set(ParamRemote, string(s.Remote))
	}
	return v
}

// String renders s as a saved-search query string.
func (s Spec) String() string {
	return s.Encode().Encode()
}

// ParseSaved reads a saved-search query string, with or without a leading "?".
func ParseSaved(raw string) (Spec, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Spec{}, err
	}
	return ParseQuery(v), nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
