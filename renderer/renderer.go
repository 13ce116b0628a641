// Package renderer turns dashboards into markdown, SVG charts and HTML pages.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/findash"
)

//go:embed *.md *.html
var templates embed.FS

// DashboardMarkdown renders the whole dashboard to a markdown string.
func DashboardMarkdown(d *findash.Dashboard) string {
	partials := map[string]string{
		"dashboard_title":  "dashboard_title.md",
		"dashboard_kpis":   "dashboard_kpis.md",
		"dashboard_charts": "dashboard_charts.md",
		"dashboard_table":  "dashboard_table.md",
	}
	return renderTemplate("dashboard", "dashboard.md", partials, d)
}

// KPIMarkdown renders the KPI cards to a markdown string.
func KPIMarkdown(k findash.KPIs) string {
	partials := map[string]string{
		"dashboard_kpis": "dashboard_kpis.md",
	}
	return renderTemplate("kpis", "kpis.md", partials, k)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// funcs are available to every template.
var funcs = map[string]any{
	"cell":      Cell,
	"highlight": Highlight,
}
