package classify

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

var urlPattern = regexp.MustCompile(`https?://[^\s'"<>]+`)

// URLFinder asks the model for a company's public job-board API URL.
type URLFinder struct {
	provider LLMProvider
	system   string
	tmpl     *template.Template
}

// NewURLFinder creates a finder using the built-in prompts.
func NewURLFinder(provider LLMProvider) *URLFinder {
	return &URLFinder{provider: provider, system: strings.TrimSpace(atsURLSystemPrompt), tmpl: ATSURLTemplate}
}

// Find returns the URL the model suggests for company, or "" when it does
// not know one.
func (f *URLFinder) Find(ctx context.Context, company string) (string, error) {
	var prompt bytes.Buffer
	if err := f.tmpl.Execute(&prompt, struct{ Company string }{company}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	reply, err := f.provider.Complete(ctx, f.system, strings.TrimSpace(prompt.String()))
	if err != nil {
		return "", err
	}
	return ExtractURL(reply), nil
}

// ExtractURL returns the first http(s) URL in reply. Empty replies, "null",
// and anything mentioning "unknown" yield "".
func ExtractURL(reply string) string {
	reply = strings.TrimSpace(reply)
	if reply == "" || reply == "null" || strings.Contains(strings.ToLower(reply), "unknown") {
		return ""
	}
	return urlPattern.FindString(reply)
}
