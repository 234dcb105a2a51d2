package core

import (
	"fmt"
	"io"
)

// View is everything a front end needs to render the comparison table for
// one Query. It is rebuilt from the store on every change; nothing in it
// is carried over between queries.
type View struct {
	Query       Query
	Header      []string
	Categories  []Category
	Rows        []RiskRow // Display order (sorted when Query.SortColumn is set)
	Permutation []int     // Permutation[i] is the store index of Rows[i]
	Visible     []bool    // Aligned with Rows
	Stats       Stats

	// Cells holds highlight spans per display row and column. It is only
	// computed for visible rows and only when the query has a search term.
	Cells [][][]Span
}

// Apply runs the engine over the store: sort, then visibility, then stats,
// then highlighting.
func Apply(store *RowStore, q Query) (*View, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil row store", ErrInvalidArgument)
	}

	rows := store.Rows()
	perm := identity(len(rows))

	if q.SortColumn != nil {
		col := *q.SortColumn
		if col < 0 || col >= store.Columns() {
			return nil, fmt.Errorf("%w: sort column %d, table has %d columns",
				ErrInvalidArgument, col, store.Columns())
		}
		p, err := SortPermutation(rows, col)
		if err != nil {
			return nil, err
		}
		perm = p
		sorted := make([]RiskRow, len(rows))
		for i, src := range perm {
			sorted[i] = rows[src]
		}
		rows = sorted
	}

	filter := q.Category
	if filter == "" {
		filter = CategoryAll
	}
	visible := ComputeVisibility(rows, filter, q.Search)

	stats, err := ComputeStats(rows, visible, store.Categories())
	if err != nil {
		return nil, err
	}

	v := &View{
		Query:       Query{Category: filter, Search: q.Search, SortColumn: q.SortColumn},
		Header:      store.Header(),
		Categories:  store.Categories(),
		Rows:        rows,
		Permutation: perm,
		Visible:     visible,
		Stats:       stats,
	}

	if q.Search != "" {
		v.Cells = make([][][]Span, len(rows))
		for i, row := range rows {
			if visible[i] {
				v.Cells[i] = HighlightRow(row, q.Search)
			}
		}
	}

	return v, nil
}

// Spans returns the spans for one cell, falling back to a single plain
// span when no highlighting was computed for it.
func (v *View) Spans(row, col int) []Span {
	if v.Cells != nil && row < len(v.Cells) && v.Cells[row] != nil && col < len(v.Cells[row]) {
		return v.Cells[row][col]
	}
	return []Span{{Text: v.Rows[row].Cell(col)}}
}

// VisibleRows returns the visible rows in display order.
func (v *View) VisibleRows() []RiskRow {
	out := make([]RiskRow, 0, v.Stats.Total)
	for i, row := range v.Rows {
		if v.Visible[i] {
			out = append(out, row)
		}
	}
	return out
}

// ExportCSV serializes every row in display order, hidden rows included,
// matching what the table holds at export time.
func (v *View) ExportCSV() string {
	return ToCSV(v.Header, v.Rows)
}

// WriteCSV streams the same content as ExportCSV to w.
func (v *View) WriteCSV(w io.Writer) error {
	return WriteCSV(w, v.Header, v.Rows)
}

func identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}
