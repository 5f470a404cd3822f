package web

import (
	"fmt"
	"html/template"
	"time"

	"cozyvile/utils"
)

// FuncMap is shared by the public and the admin templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown": utils.Markdown,
		"truthy":   truthy,
		"display":  display,
		"year":     func() int { return time.Now().Year() },
		"price": func(v float64) string {
			return fmt.Sprintf("%.0f", v)
		},
		"thumb":    thumb,
		"selected": selected,
	}
}

// selected reports whether a multi-select value of a generic row holds v
func selected(values any, v string) bool {
	switch values := values.(type) {
	case []string:
		for _, item := range values {
			if item == v {
				return true
			}
		}
	case []any:
		for _, item := range values {
			if fmt.Sprint(item) == v {
				return true
			}
		}
	}
	return false
}

// thumb finds the first image of a generic row: its own image_url or the
// first of its embedded image links
func thumb(row map[string]any) string {
	if url, ok := row["image_url"].(string); ok && url != "" {
		return url
	}
	for _, v := range row {
		links, ok := v.([]any)
		if !ok || len(links) == 0 {
			continue
		}
		if link, ok := links[0].(map[string]any); ok {
			if url, ok := link["image_url"].(string); ok {
				return url
			}
		}
	}
	return ""
}

// truthy reads a checkbox value of a generic row
func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// display formats a value of a generic row for a list cell or an input
func display(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprint(v)
}
