// Package templates renders the risk board pages as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/riskboard/internal/core"
)

// PageData is the full risk page.
type PageData struct {
	Title    string
	Subtitle string
	Sections []SectionTab
	Active   SectionTab
	Cards    []CardData
	Table    TableData
}

// SectionTab is one navigation entry.
type SectionTab struct {
	ID     string
	Title  string
	Active bool
}

// CardData is an expandable risk card.
type CardData struct {
	Key     string
	Title   string
	Summary string
	Details []string
	Open    bool
}

// TableData is the comparison table and its controls.
type TableData struct {
	Header       []string
	SortColumn   int // -1 when unsorted
	Search       string
	Filters      []FilterOption
	Rows         []RowData
	ResultsLabel string
	Stats        []StatItem
	Announcement string
	ExportURL    string
}

// FilterOption is one entry of the category filter.
type FilterOption struct {
	Value    string
	Label    string
	Selected bool
}

// RowData is a table row with its highlight spans per cell.
type RowData struct {
	ID       string
	Category string
	Hidden   bool
	Cells    [][]core.Span
}

// StatItem is one counter of the stats panel.
type StatItem struct {
	Label string
	Count int
}

// Page renders the complete HTML document.
func Page(p PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8">`)
		ew.printf(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		ew.printf(`<title>%s</title>`, esc(p.Title))
		ew.printf(`<link rel="stylesheet" href="/static/style.css">`)
		ew.printf(`<script src="/static/table.js" defer></script></head><body>`)
		ew.printf(`<header><h1>%s</h1>`, esc(p.Title))
		if p.Subtitle != "" {
			ew.printf(`<p class="subtitle">%s</p>`, esc(p.Subtitle))
		}
		ew.printf(`</header><nav aria-label="Secciones"><ul>`)
		for _, s := range p.Sections {
			cls := ""
			if s.Active {
				cls = ` class="active" aria-current="page"`
			}
			ew.printf(`<li><a href="/?section=%s"%s>%s</a></li>`,
				templ.EscapeString(s.ID), cls, esc(s.Title))
		}
		ew.printf(`</ul></nav><main id="%s"><h2>%s</h2>`, esc(p.Active.ID), esc(p.Active.Title))
		if ew.err != nil {
			return ew.err
		}

		if len(p.Cards) > 0 {
			if err := Cards(p.Cards).Render(ctx, w); err != nil {
				return err
			}
		} else {
			ew.printf(`<section id="comparison">`)
			if ew.err != nil {
				return ew.err
			}
			if err := Table(p.Table).Render(ctx, w); err != nil {
				return err
			}
			ew.printf(`</section>`)
		}
		ew.printf(`</main></body></html>`)
		return ew.err
	})
}

// Cards renders the risk cards of one section as disclosure widgets.
func Cards(cards []CardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<div class="cards">`)
		for _, c := range cards {
			open := ""
			if c.Open {
				open = " open"
			}
			ew.printf(`<details class="risk-card" id="card-%s"%s><summary><h3>%s</h3><p>%s</p></summary>`,
				esc(c.Key), open, esc(c.Title), esc(c.Summary))
			if len(c.Details) > 0 {
				ew.printf(`<ul>`)
				for _, d := range c.Details {
					ew.printf(`<li>%s</li>`, esc(d))
				}
				ew.printf(`</ul>`)
			}
			ew.printf(`</details>`)
		}
		ew.printf(`</div>`)
		return ew.err
	})
}

// Table renders the comparison table with its filter form, results count
// and stats. It is also served on its own as the partial static/table.js
// swaps in.
func Table(t TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<div id="risk-table">`)
		ew.printf(`<form method="get" action="/" data-partial="/table" data-target="#risk-table">`)
		ew.printf(`<input type="hidden" name="section" value="comparativo">`)
		if t.SortColumn >= 0 {
			ew.printf(`<input type="hidden" name="sort" value="%d">`, t.SortColumn)
		}
		ew.printf(`<select name="filter" aria-label="Filtrar por categoría">`)
		for _, f := range t.Filters {
			sel := ""
			if f.Selected {
				sel = " selected"
			}
			ew.printf(`<option value="%s"%s>%s</option>`, esc(f.Value), sel, esc(f.Label))
		}
		ew.printf(`</select><input type="search" name="q" value="%s" placeholder="Buscar riesgos..." aria-label="Buscar">`,
			esc(t.Search))
		ew.printf(`<button type="submit">Buscar</button>`)
		ew.printf(`<a class="export" href="%s" download>Exportar CSV</a></form>`, esc(t.ExportURL))

		ew.printf(`<p class="results-count">%s</p>`, esc(t.ResultsLabel))
		ew.printf(`<div class="sr-only" aria-live="polite">%s</div>`, esc(t.Announcement))

		ew.printf(`<table class="comparison-table"><thead><tr>`)
		for i, h := range t.Header {
			sorted := ""
			if i == t.SortColumn {
				sorted = ` aria-sort="ascending"`
			}
			ew.printf(`<th%s><a href="%s">%s</a></th>`, sorted, esc(sortURL(t, i)), esc(h))
		}
		ew.printf(`</tr></thead><tbody>`)
		for _, row := range t.Rows {
			hidden := ""
			if row.Hidden {
				hidden = ` hidden class="hidden"`
			}
			ew.printf(`<tr data-id="%s" data-category="%s"%s>`, esc(row.ID), esc(row.Category), hidden)
			for _, cell := range row.Cells {
				ew.printf(`<td>`)
				writeSpans(ew, cell)
				ew.printf(`</td>`)
			}
			ew.printf(`</tr>`)
		}
		ew.printf(`</tbody></table>`)

		ew.printf(`<dl class="stats">`)
		for _, s := range t.Stats {
			ew.printf(`<dt>%s</dt><dd>%d</dd>`, esc(s.Label), s.Count)
		}
		ew.printf(`</dl></div>`)
		return ew.err
	})
}

// ErrorAlert renders an error fragment for HTMX requests.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.printf(`<div class="alert alert-error" role="alert"><p>%s</p>`, esc(message))
		if action != "" {
			ew.printf(`<p class="action">%s</p>`, esc(action))
		}
		ew.printf(`<small>%s</small></div>`, esc(code))
		return ew.err
	})
}

func writeSpans(ew *errWriter, spans []core.Span) {
	for _, s := range spans {
		if s.Matched {
			ew.printf(`<mark class="highlight">%s</mark>`, esc(s.Text))
		} else {
			ew.printf(`%s`, esc(s.Text))
		}
	}
}

func sortURL(t TableData, col int) string {
	v := url.Values{}
	v.Set("section", "comparativo")
	v.Set("sort", strconv.Itoa(col))
	for _, f := range t.Filters {
		if f.Selected && f.Value != string(core.CategoryAll) {
			v.Set("filter", f.Value)
		}
	}
	if t.Search != "" {
		v.Set("q", t.Search)
	}
	return "/?" + v.Encode()
}

func esc(s string) string {
	return templ.EscapeString(s)
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
