package utils

import (
	"bytes"
	"html"
	"html/template"
	"log"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Markdown renders admin authored descriptions. Output is sanitised, so it
// is safe to embed in templates.
func Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &buf); err != nil {
		log.Printf("Markdown render: %v", err)
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(ugcPolicy.SanitizeBytes(buf.Bytes()))
}

// StripTags removes all markup from visitor input and returns plain text,
// templates escape it again on output
func StripTags(s string) string {
	return html.UnescapeString(strictPolicy.Sanitize(s))
}
