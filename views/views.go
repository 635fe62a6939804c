// Package views embeds the HTML templates of the site.
package views

import (
	"embed"
	"html/template"
	"time"
	"unicode"

	"github.com/cppla/blogicum/utils"
)

//go:embed templates
var files embed.FS

// Templates parses every embedded template. Pages are addressed by their
// defined names, e.g. "blog/index.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*/*.html")
}

// Funcs are the helpers available inside templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"linebreaks":    utils.RenderText,
		"striptags":     utils.StripTags,
		"truncatewords": func(n int, s string) string { return utils.Truncate(s, n) },
		"date":          formatDate,
		"datetimeLocal": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02T15:04")
		},
		"cap": func(str string) string {
			if str == "" {
				return ""
			}
			runes := []rune(str)
			runes[0] = unicode.ToUpper(runes[0])
			return string(runes)
		},
		"deref": func(id *uint) uint {
			if id == nil {
				return 0
			}
			return *id
		},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("02 Jan 2006, 15:04")
}
