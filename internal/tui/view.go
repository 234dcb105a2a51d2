package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/JonMunkholm/riskboard/internal/core"
)

const (
	defaultWidth = 100
	minColWidth  = 8
	ellipsis     = "…"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.snap.Catalog.Title))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.inComparison() {
		b.WriteString(m.renderTable())
	} else {
		b.WriteString(m.renderCards())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.snap.Catalog.Sections))
	for i, sec := range m.snap.Catalog.Sections {
		label := sec.Title
		if i < 9 {
			label = string(rune('1'+i)) + " " + label
		}
		if i == m.section {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderCards() string {
	var b strings.Builder
	for i, c := range m.cards() {
		marker := "▸ "
		if m.expanded[c.Key] {
			marker = "▾ "
		}
		style := cardTitleStyle
		if i == m.cardCursor {
			style = cardSelectedStyle
		}
		b.WriteString(style.Render(marker + c.Title))
		if c.Summary != "" {
			b.WriteString("  " + statusStyle.Render(c.Summary))
		}
		b.WriteString("\n")
		if m.expanded[c.Key] {
			for _, d := range c.Details {
				b.WriteString(detailStyle.Render("• "+d) + "\n")
			}
		}
	}
	return b.String()
}

func (m Model) renderTable() string {
	var b strings.Builder

	if m.searching || m.query.Search != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render("Filtro: " + m.snap.Catalog.FilterLabel(m.query.Category)))
	b.WriteString("\n")

	widths := columnWidths(len(m.view.Header), m.width)

	cells := make([]string, len(m.view.Header))
	for i, h := range m.view.Header {
		if m.query.SortColumn != nil && *m.query.SortColumn == i {
			h += " ▲"
		}
		text := runewidth.FillRight(runewidth.Truncate(h, widths[i], ellipsis), widths[i])
		if i == m.column {
			cells[i] = selectedHeader.Render(text)
		} else {
			cells[i] = headerStyle.Render(text)
		}
	}
	b.WriteString(strings.Join(cells, " "))
	b.WriteString("\n")

	visible := 0
	for i := range m.view.Rows {
		if !m.view.Visible[i] {
			continue
		}
		visible++
		if visible <= m.rowOffset {
			continue
		}
		if limit := m.tableRows(); limit > 0 && visible-m.rowOffset > limit {
			break
		}
		for c := range m.view.Header {
			cells[c] = renderSpans(fitSpans(m.view.Spans(i, c), widths[c]), widths[c])
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStatus() string {
	line := m.view.Stats.ResultsLabel()
	if m.status != "" {
		if m.err != nil {
			line += "  " + errorStyle.Render(m.status)
		} else {
			line += "  · " + m.status
		}
	}
	return statusStyle.Render(line)
}

// tableRows is how many data rows fit; 0 means no limit is known yet.
func (m Model) tableRows() int {
	if m.height == 0 {
		return 0
	}
	return max(1, m.height-10)
}

// columnWidths splits the terminal width evenly between columns.
func columnWidths(n, total int) []int {
	if total <= 0 {
		total = defaultWidth
	}
	widths := make([]int, n)
	if n == 0 {
		return widths
	}
	w := max(minColWidth, (total-(n-1))/n)
	for i := range widths {
		widths[i] = w
	}
	return widths
}

// fitSpans truncates spans to width display cells, ending with an ellipsis
// when anything was cut. Wide runes are measured with runewidth.
func fitSpans(spans []core.Span, width int) []core.Span {
	if runewidth.StringWidth(core.Join(spans)) <= width {
		return spans
	}
	limit := width - runewidth.StringWidth(ellipsis)
	out := make([]core.Span, 0, len(spans)+1)
	used := 0
	for _, s := range spans {
		w := runewidth.StringWidth(s.Text)
		if used+w <= limit {
			out = append(out, s)
			used += w
			continue
		}
		if rest := limit - used; rest > 0 {
			out = append(out, core.Span{Text: runewidth.Truncate(s.Text, rest, ""), Matched: s.Matched})
		}
		break
	}
	return append(out, core.Span{Text: ellipsis})
}

// renderSpans styles matched spans and pads the cell to width.
func renderSpans(spans []core.Span, width int) string {
	var b strings.Builder
	used := 0
	for _, s := range spans {
		used += runewidth.StringWidth(s.Text)
		if s.Matched {
			b.WriteString(matchStyle.Render(s.Text))
		} else {
			b.WriteString(s.Text)
		}
	}
	if used < width {
		b.WriteString(strings.Repeat(" ", width-used))
	}
	return b.String()
}
