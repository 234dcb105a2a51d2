// Package core provides the risk table engine.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"github.com/google/uuid"
)

// Category tags a row as belonging to one bucket of the closed category set.
type Category string

const (
	// CategoryAll is the filter wildcard; it is never assigned to a row.
	CategoryAll Category = "all"

	CategoryFinancial    Category = "financial"
	CategoryNonFinancial Category = "non-financial"
)

// DefaultCategories is the category set used when a catalogue declares none.
var DefaultCategories = []Category{CategoryFinancial, CategoryNonFinancial}

// RiskRow is one record of the comparison table.
type RiskRow struct {
	ID       uuid.UUID // Stable identifier, derived from the row's source position
	Cells    []string  // One text field per column, in column order
	Category Category  // Assigned at construction, never mutated
}

// Cell returns the text of column i, or "" when i is out of range.
func (r RiskRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Span is a contiguous run of cell text, tagged as plain or matched.
type Span struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// Stats summarizes a visibility vector.
type Stats struct {
	Total       int              `json:"total"`       // Visible rows
	Rows        int              `json:"rows"`        // All rows in the set
	PerCategory map[Category]int `json:"perCategory"` // Visible rows per category
}

// Query is the explicit view state threaded by the caller.
// A nil SortColumn leaves rows in source order.
type Query struct {
	Category   Category
	Search     string
	SortColumn *int
}

// IsFiltered reports whether the query hides anything.
func (q Query) IsFiltered() bool {
	return (q.Category != "" && q.Category != CategoryAll) || q.Search != ""
}

// SortBy returns a pointer suitable for Query.SortColumn.
func SortBy(col int) *int {
	return &col
}
