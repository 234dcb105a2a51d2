package core

import "fmt"

// ComputeStats counts visible rows, overall and per category.
// Every category of the closed set appears in PerCategory, zero when none is visible.
// Counts are rebuilt from scratch on every call.
func ComputeStats(rows []RiskRow, visibility []bool, categories []Category) (Stats, error) {
	if len(visibility) != len(rows) {
		return Stats{}, fmt.Errorf("%w: visibility has %d entries for %d rows",
			ErrInvalidArgument, len(visibility), len(rows))
	}

	stats := Stats{
		Rows:        len(rows),
		PerCategory: make(map[Category]int, len(categories)),
	}
	for _, c := range categories {
		stats.PerCategory[c] = 0
	}

	for i, row := range rows {
		if !visibility[i] {
			continue
		}
		stats.Total++
		if _, ok := stats.PerCategory[row.Category]; ok {
			stats.PerCategory[row.Category]++
		}
	}
	return stats, nil
}

// ResultsLabel renders the results counter shown under the table.
func (s Stats) ResultsLabel() string {
	return fmt.Sprintf("Mostrando %d de %d riesgos", s.Total, s.Rows)
}
