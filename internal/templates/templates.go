// Package templates embeds the HTML pages and email bodies served by storefront.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html emails/*.html
var FS embed.FS

// Pages parses the top-level page templates for gin's HTML renderer.
func Pages() (*template.Template, error) {
	return template.ParseFS(FS, "*.html")
}
