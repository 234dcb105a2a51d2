package core

import (
	"fmt"
	"slices"
)

// RowStore holds the authoritative, read-only row set for a session.
// It is built once; a catalogue reload produces a new store.
type RowStore struct {
	header     []string
	categories []Category
	rows       []RiskRow
}

// NewRowStore validates and copies the given rows.
// Every row must have len(header) cells and a category from the set.
// An empty categories slice falls back to DefaultCategories.
func NewRowStore(header []string, categories []Category, rows []RiskRow) (*RowStore, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: empty header", ErrInvalidArgument)
	}
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	known := make(map[Category]bool, len(categories))
	for _, c := range categories {
		if c == "" || c == CategoryAll {
			return nil, fmt.Errorf("%w: reserved category %q", ErrInvalidArgument, c)
		}
		if known[c] {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidArgument, c)
		}
		known[c] = true
	}

	stored := make([]RiskRow, len(rows))
	for i, row := range rows {
		if len(row.Cells) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrInvalidArgument, i, len(row.Cells), len(header))
		}
		if !known[row.Category] {
			return nil, fmt.Errorf("%w: row %d has unknown category %q",
				ErrInvalidArgument, i, row.Category)
		}
		stored[i] = RiskRow{
			ID:       row.ID,
			Cells:    slices.Clone(row.Cells),
			Category: row.Category,
		}
	}

	return &RowStore{
		header:     slices.Clone(header),
		categories: slices.Clone(categories),
		rows:       stored,
	}, nil
}

// Header returns a copy of the column names.
func (s *RowStore) Header() []string {
	return slices.Clone(s.header)
}

// Categories returns the closed category set in declaration order.
func (s *RowStore) Categories() []Category {
	return slices.Clone(s.categories)
}

// Rows returns a copy of the rows in source order.
// Cells are shared with the store and must not be modified.
func (s *RowStore) Rows() []RiskRow {
	return slices.Clone(s.rows)
}

// Len returns the number of rows.
func (s *RowStore) Len() int {
	return len(s.rows)
}

// Columns returns the number of columns.
func (s *RowStore) Columns() int {
	return len(s.header)
}

// HasCategory reports whether c belongs to the closed set.
func (s *RowStore) HasCategory(c Category) bool {
	return slices.Contains(s.categories, c)
}
