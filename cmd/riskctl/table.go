package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/JonMunkholm/riskboard/internal/core"
)

const maxCellWidth = 40

var (
	headerColor = color.New(color.Bold, color.Underline)
	matchColor  = color.New(color.BgYellow, color.FgBlack)
	dimColor    = color.New(color.Faint)
)

// printView writes the visible rows of v as an aligned table. Matched
// spans are colored; column widths are measured in display cells.
func printView(w io.Writer, v *core.View) {
	widths := make([]int, len(v.Header))
	for i, h := range v.Header {
		widths[i] = runewidth.StringWidth(h)
	}
	for i, row := range v.Rows {
		if !v.Visible[i] {
			continue
		}
		for c := range widths {
			widths[c] = max(widths[c], runewidth.StringWidth(row.Cell(c)))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxCellWidth)
	}

	cells := make([]string, len(v.Header))
	for i, h := range v.Header {
		if v.Query.SortColumn != nil && *v.Query.SortColumn == i {
			h += " ^"
		}
		cells[i] = headerColor.Sprint(runewidth.FillRight(runewidth.Truncate(h, widths[i], "…"), widths[i]))
	}
	fmt.Fprintln(w, strings.Join(cells, "  "))

	for i := range v.Rows {
		if !v.Visible[i] {
			continue
		}
		for c := range v.Header {
			cells[c] = colorSpans(v.Spans(i, c), widths[c])
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
	fmt.Fprintln(w, dimColor.Sprint(v.Stats.ResultsLabel()))
}

// colorSpans renders one cell, truncated and padded to width.
func colorSpans(spans []core.Span, width int) string {
	text := core.Join(spans)
	if runewidth.StringWidth(text) > width {
		// Highlighting is dropped on truncated cells; the cut may split a match.
		return runewidth.Truncate(text, width, "…")
	}
	var b strings.Builder
	for _, s := range spans {
		if s.Matched {
			b.WriteString(matchColor.Sprint(s.Text))
		} else {
			b.WriteString(s.Text)
		}
	}
	b.WriteString(strings.Repeat(" ", width-runewidth.StringWidth(text)))
	return b.String()
}
