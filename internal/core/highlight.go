package core

import "strings"

// Highlight splits cellText into alternating plain and matched spans for
// every case-insensitive, non-overlapping occurrence of searchTerm.
//
// The term is literal text; nothing in it is treated as pattern syntax.
// Spans keep the casing of cellText and always join back to it exactly.
// An empty term yields a single plain span holding the whole text.
func Highlight(cellText, searchTerm string) []Span {
	if searchTerm == "" {
		return []Span{{Text: cellText}}
	}

	needle := foldRunes(searchTerm)
	ft := foldText(cellText)

	var spans []Span
	plainStart := 0 // rune index where the pending plain run begins
	for i := 0; ; {
		at := ft.indexFrom(needle, i)
		if at < 0 {
			break
		}
		end := at + len(needle)
		if at > plainStart {
			spans = append(spans, Span{Text: cellText[ft.offsets[plainStart]:ft.offsets[at]]})
		}
		spans = append(spans, Span{Text: cellText[ft.offsets[at]:ft.offsets[end]], Matched: true})
		plainStart, i = end, end
	}

	if plainStart < len(ft.runes) || len(spans) == 0 {
		spans = append(spans, Span{Text: cellText[ft.offsets[plainStart]:]})
	}
	return spans
}

// HighlightRow highlights every cell of a row.
func HighlightRow(row RiskRow, searchTerm string) [][]Span {
	cells := make([][]Span, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = Highlight(cell, searchTerm)
	}
	return cells
}

// Join reconstructs the original text from spans.
func Join(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// HasMatch reports whether any span is matched.
func HasMatch(spans []Span) bool {
	for _, s := range spans {
		if s.Matched {
			return true
		}
	}
	return false
}
