package ingest

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// whitespaceRegex collapses runs of whitespace into a single space.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// CleanBody turns an HTML-escaped Reddit/HN body into plain text: strip
// script/style tags, pull text out of the body, collapse whitespace. Plain
// text bodies (the common case for HN comments) pass through untouched
// apart from whitespace collapsing.
func CleanBody(raw string) string {
	if len(raw) == 0 {
		return ""
	}

	if strings.Contains(raw, "<") && strings.Contains(raw, ">") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			doc.Find("script, style").Remove()
			text := doc.Find("body").Text()
			if text != "" {
				return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
			}
		}
	}

	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(raw, " "))
}
