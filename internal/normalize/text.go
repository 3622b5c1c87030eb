package normalize

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p, div, br, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, section"

// CleanHTML converts an HTML or HTML-encoded description to plain text with
// collapsed whitespace. Greenhouse double-encodes its markup, so entities are
// unescaped before parsing.
func CleanHTML(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return strings.Join(strings.Fields(content), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html.UnescapeString(content)))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}
	doc.Find("script, style").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}
