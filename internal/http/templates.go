package http

import (
	"embed"
	"html/template"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"ago": humanize.Time,
	"plural": func(n int64, word string) string {
		return english.Plural(int(n), word, "")
	},
	"percent": percent,
}

// LoadTemplates parses the embedded page templates. Each page is addressed
// by its file name, e.g. "detail.html".
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

func percent(part, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return part * 100 / total
}
