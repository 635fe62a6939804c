package utils

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// RenderText turns user supplied text into safe HTML, keeping paragraph breaks.
func RenderText(input string) template.HTML {
	clean := ugcPolicy.Sanitize(input)
	clean = strings.ReplaceAll(clean, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(clean, "\n", "<br>"))
}

// StripTags removes all markup, used for plain-text excerpts.
func StripTags(input string) string {
	return html.UnescapeString(strictPolicy.Sanitize(input))
}

// Truncate shortens s to at most n words, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}
