package core

// ComputeVisibility returns one flag per row, in input order.
//
// A row is visible when it passes both the category filter and the search:
//   - categoryFilter is "all" or equals the row's category
//   - searchTerm is empty or some cell contains it, ignoring case
//
// Any other category, the empty string included, matches no rows.
func ComputeVisibility(rows []RiskRow, categoryFilter Category, searchTerm string) []bool {
	visible := make([]bool, len(rows))
	for i, row := range rows {
		visible[i] = matchesCategory(row, categoryFilter) && matchesSearch(row, searchTerm)
	}
	return visible
}

func matchesCategory(row RiskRow, filter Category) bool {
	return filter == CategoryAll || row.Category == filter
}

func matchesSearch(row RiskRow, term string) bool {
	if term == "" {
		return true
	}
	for _, cell := range row.Cells {
		if containsFold(cell, term) {
			return true
		}
	}
	return false
}

// CountVisible returns how many entries of visibility are true.
func CountVisible(visibility []bool) int {
	n := 0
	for _, v := range visibility {
		if v {
			n++
		}
	}
	return n
}
