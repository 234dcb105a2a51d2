package core

import (
	"fmt"
	"sort"
	"strings"
)

// SortRows returns a copy of rows in ascending order of the lowercase text
// of column columnIndex, compared by Unicode code point.
//
// The sort is stable, so sorting twice by the same column yields the same
// order as sorting once. Direction never toggles.
// An out-of-range column is an ErrInvalidArgument; no other column is used instead.
func SortRows(rows []RiskRow, columnIndex int) ([]RiskRow, error) {
	perm, err := SortPermutation(rows, columnIndex)
	if err != nil {
		return nil, err
	}
	sorted := make([]RiskRow, len(perm))
	for i, src := range perm {
		sorted[i] = rows[src]
	}
	return sorted, nil
}

// SortPermutation returns the source index of each row in sorted order.
func SortPermutation(rows []RiskRow, columnIndex int) ([]int, error) {
	if err := checkColumn(rows, columnIndex); err != nil {
		return nil, err
	}

	keys := make([]string, len(rows))
	perm := make([]int, len(rows))
	for i, row := range rows {
		keys[i] = strings.ToLower(row.Cells[columnIndex])
		perm[i] = i
	}

	// Go compares strings bytewise; for valid UTF-8 that is code point order.
	sort.SliceStable(perm, func(a, b int) bool {
		return keys[perm[a]] < keys[perm[b]]
	})
	return perm, nil
}

// checkColumn validates columnIndex against the column count of rows.
// With no rows there is nothing to index, so only a negative index fails.
func checkColumn(rows []RiskRow, columnIndex int) error {
	if columnIndex < 0 {
		return fmt.Errorf("%w: column index %d is negative", ErrInvalidArgument, columnIndex)
	}
	for i, row := range rows {
		if columnIndex >= len(row.Cells) {
			return fmt.Errorf("%w: column index %d out of range for row %d with %d cells",
				ErrInvalidArgument, columnIndex, i, len(row.Cells))
		}
	}
	return nil
}
