package normalize

import "regexp"

var remotePattern = regexp.MustCompile(`(?i)remote|distributed|anywhere|work from home|wfh`)

// IsRemote prefers a structured signal from the originating job board and
// falls back to matching the free-text location.
func IsRemote(structured *bool, location string) bool {
	if structured != nil {
		return *structured
	}
	return remotePattern.MatchString(location)
}
