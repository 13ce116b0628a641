package renderer

import (
	"bytes"
	"html/template"
	"io"

	"github.com/etnz/findash"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var pages = template.Must(template.New("pages").
	Funcs(template.FuncMap{"cell": Cell}).
	ParseFS(templates, "*.html"))

type pageData struct {
	Title     string
	Theme     findash.Theme
	Revision  findash.Revision
	Dashboard *findash.Dashboard
}

// Page writes the dashboard HTML page.
//
// The page subscribes to /api/events and refreshes itself on every new revision.
func Page(w io.Writer, d *findash.Dashboard, rev findash.Revision, theme findash.Theme) error {
	return pages.ExecuteTemplate(w, "page", pageData{
		Title:     d.Title,
		Theme:     theme,
		Revision:  rev,
		Dashboard: d,
	})
}

// TableHTML writes the dashboard table as an HTML fragment.
func TableHTML(w io.Writer, t findash.Table) error {
	return pages.ExecuteTemplate(w, "table", t)
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownHTML converts markdown to HTML.
func MarkdownHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReportPage writes the markdown report of the dashboard as a standalone HTML page.
func ReportPage(w io.Writer, d *findash.Dashboard) error {
	body, err := MarkdownHTML(DashboardMarkdown(d))
	if err != nil {
		return err
	}
	return pages.ExecuteTemplate(w, "report", struct {
		Title string
		Body  template.HTML
	}{d.Title, template.HTML(body)})
}
