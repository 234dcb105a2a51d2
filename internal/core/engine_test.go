package core

import (
	"encoding/csv"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// ============================================================================
// Fixtures
// ============================================================================

func exampleRows() []RiskRow {
	return []RiskRow{
		{Cells: []string{"Credit Risk", "High"}, Category: CategoryFinancial},
		{Cells: []string{"Cyber Risk", "Medium"}, Category: CategoryNonFinancial},
	}
}

func catalogueRows() []RiskRow {
	return []RiskRow{
		{Cells: []string{"Riesgo de mercado", "Alto", "Cobertura"}, Category: CategoryFinancial},
		{Cells: []string{"Riesgo operacional", "Medio", "Controles internos"}, Category: CategoryNonFinancial},
		{Cells: []string{"Riesgo de liquidez", "alto", "Reservas"}, Category: CategoryFinancial},
		{Cells: []string{"Riesgo reputacional", "Bajo", "Comunicación"}, Category: CategoryNonFinancial},
		{Cells: []string{"Riesgo de crédito", "ALTO", "Garantías"}, Category: CategoryFinancial},
	}
}

// ============================================================================
// FilterEngine Tests
// ============================================================================

func TestComputeVisibility(t *testing.T) {
	tests := []struct {
		name   string
		rows   []RiskRow
		filter Category
		search string
		want   []bool
	}{
		{
			name:   "category filter only",
			rows:   exampleRows(),
			filter: CategoryFinancial,
			want:   []bool{true, false},
		},
		{
			name:   "all with case-insensitive search",
			rows:   exampleRows(),
			filter: CategoryAll,
			search: "risk",
			want:   []bool{true, true},
		},
		{
			name:   "empty filter matches nothing",
			rows:   exampleRows(),
			filter: "",
			want:   []bool{false, false},
		},
		{
			name:   "filter and search intersect",
			rows:   exampleRows(),
			filter: CategoryNonFinancial,
			search: "credit",
			want:   []bool{false, false},
		},
		{
			name:   "search matches any cell",
			rows:   exampleRows(),
			filter: CategoryAll,
			search: "MEDIUM",
			want:   []bool{false, true},
		},
		{
			name:   "unknown category matches nothing",
			rows:   exampleRows(),
			filter: "strategic",
			want:   []bool{false, false},
		},
		{
			name:   "search does not span cells",
			rows:   exampleRows(),
			filter: CategoryAll,
			search: "riskhigh",
			want:   []bool{false, false},
		},
		{
			name:   "regex metacharacters are literal",
			rows:   []RiskRow{{Cells: []string{"a.b", "x"}, Category: CategoryFinancial}, {Cells: []string{"axb", "x"}, Category: CategoryFinancial}},
			filter: CategoryAll,
			search: ".",
			want:   []bool{true, false},
		},
		{
			name:   "empty row set",
			rows:   nil,
			filter: CategoryFinancial,
			search: "x",
			want:   []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeVisibility(tt.rows, tt.filter, tt.search)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ComputeVisibility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeVisibility_Deterministic(t *testing.T) {
	rows := catalogueRows()
	first := ComputeVisibility(rows, CategoryFinancial, "alto")
	second := ComputeVisibility(rows, CategoryFinancial, "alto")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ: %v vs %v", first, second)
	}
	if want := []bool{true, false, true, false, true}; !reflect.DeepEqual(first, want) {
		t.Errorf("ComputeVisibility() = %v, want %v", first, want)
	}
}

func TestCountVisible(t *testing.T) {
	if got := CountVisible([]bool{true, false, true}); got != 2 {
		t.Errorf("CountVisible() = %d, want 2", got)
	}
	if got := CountVisible(nil); got != 0 {
		t.Errorf("CountVisible(nil) = %d, want 0", got)
	}
}

// ============================================================================
// Highlighter Tests
// ============================================================================

func TestHighlight(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want []Span
	}{
		{
			name: "empty term restores text",
			text: "Credit Risk",
			term: "",
			want: []Span{{Text: "Credit Risk"}},
		},
		{
			name: "empty text",
			text: "",
			term: "risk",
			want: []Span{{Text: ""}},
		},
		{
			name: "no match",
			text: "Credit Risk",
			term: "cyber",
			want: []Span{{Text: "Credit Risk"}},
		},
		{
			name: "keeps source casing",
			text: "Credit Risk",
			term: "RISK",
			want: []Span{{Text: "Credit "}, {Text: "Risk", Matched: true}},
		},
		{
			name: "global matching",
			text: "risk, Risk, RISK",
			term: "risk",
			want: []Span{
				{Text: "risk", Matched: true},
				{Text: ", "},
				{Text: "Risk", Matched: true},
				{Text: ", "},
				{Text: "RISK", Matched: true},
			},
		},
		{
			name: "whole text matched",
			text: "Alto",
			term: "alto",
			want: []Span{{Text: "Alto", Matched: true}},
		},
		{
			name: "non-overlapping left to right",
			text: "aaa",
			term: "aa",
			want: []Span{{Text: "aa", Matched: true}, {Text: "a"}},
		},
		{
			name: "regex syntax is literal",
			text: "cost (USD) vs cost USD",
			term: "(usd)",
			want: []Span{{Text: "cost "}, {Text: "(USD)", Matched: true}, {Text: " vs cost USD"}},
		},
		{
			name: "dot does not match any rune",
			text: "a.b axb",
			term: ".",
			want: []Span{{Text: "a"}, {Text: ".", Matched: true}, {Text: "b axb"}},
		},
		{
			name: "multibyte text keeps offsets",
			text: "Comunicación CRÉDITO",
			term: "crédito",
			want: []Span{{Text: "Comunicación "}, {Text: "CRÉDITO", Matched: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.term)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Highlight(%q, %q) = %+v, want %+v", tt.text, tt.term, got, tt.want)
			}
			if joined := Join(got); joined != tt.text {
				t.Errorf("Join() = %q, want %q", joined, tt.text)
			}
		})
	}
}

func TestHighlight_RestoreIsIdempotent(t *testing.T) {
	text := `Reputación "marca" & <b>medios</b>`
	for _, term := range []string{"a", "marca", "<b>", "&", `"`, "zzz"} {
		highlighted := Join(Highlight(text, term))
		restored := Highlight(highlighted, "")
		if len(restored) != 1 || restored[0].Matched || restored[0].Text != text {
			t.Errorf("term %q: restore = %+v, want single plain span %q", term, restored, text)
		}
	}
}

func TestHighlight_RepeatedDoesNotCompound(t *testing.T) {
	text := "Riesgo de mercado"
	first := Highlight(text, "riesgo")
	for i := 0; i < 5; i++ {
		again := Highlight(Join(first), "riesgo")
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("iteration %d: spans changed: %+v vs %+v", i, again, first)
		}
	}
}

func TestHighlightRow(t *testing.T) {
	row := exampleRows()[0]
	cells := HighlightRow(row, "h")

	if len(cells) != 2 {
		t.Fatalf("HighlightRow() returned %d cells, want 2", len(cells))
	}
	if HasMatch(cells[0]) {
		t.Errorf("cell 0 %q should not match %q", row.Cells[0], "h")
	}
	want := []Span{{Text: "H", Matched: true}, {Text: "ig"}, {Text: "h", Matched: true}}
	if !reflect.DeepEqual(cells[1], want) {
		t.Errorf("cell 1 = %+v, want %+v", cells[1], want)
	}
}

// ============================================================================
// Sorter Tests
// ============================================================================

func cellColumn(rows []RiskRow, col int) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Cells[col]
	}
	return out
}

func TestSortRows(t *testing.T) {
	tests := []struct {
		name string
		rows []RiskRow
		col  int
		want []string
	}{
		{
			name: "already ordered stays unchanged",
			rows: exampleRows(),
			col:  1,
			want: []string{"High", "Medium"},
		},
		{
			name: "case-insensitive ascending",
			rows: []RiskRow{
				{Cells: []string{"beta"}}, {Cells: []string{"Alpha"}}, {Cells: []string{"gamma"}}, {Cells: []string{"ALPHA2"}},
			},
			col:  0,
			want: []string{"Alpha", "ALPHA2", "beta", "gamma"},
		},
		{
			name: "code point order on lowercase key",
			rows: []RiskRow{{Cells: []string{"é"}}, {Cells: []string{"z"}}, {Cells: []string{"E"}}},
			col:  0,
			want: []string{"E", "z", "é"},
		},
		{
			name: "empty rows",
			rows: nil,
			col:  3,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortRows(tt.rows, tt.col)
			if err != nil {
				t.Fatalf("SortRows() error = %v", err)
			}
			if cells := cellColumn(got, tt.col); !reflect.DeepEqual(cells, tt.want) {
				t.Errorf("SortRows() = %v, want %v", cells, tt.want)
			}
		})
	}
}

func TestSortRows_Stable(t *testing.T) {
	rows := catalogueRows()
	sorted, err := SortRows(rows, 1)
	if err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}

	// "Alto", "alto", "ALTO" compare equal and must keep input order.
	wantFirst := []string{"Riesgo de mercado", "Riesgo de liquidez", "Riesgo de crédito"}
	if got := cellColumn(sorted[:3], 0); !reflect.DeepEqual(got, wantFirst) {
		t.Errorf("tied rows reordered: got %v, want %v", got, wantFirst)
	}
	if got := cellColumn(sorted[3:], 1); !reflect.DeepEqual(got, []string{"Bajo", "Medio"}) {
		t.Errorf("tail = %v, want [Bajo Medio]", got)
	}
}

func TestSortRows_Idempotent(t *testing.T) {
	once, err := SortRows(catalogueRows(), 1)
	if err != nil {
		t.Fatalf("first sort: %v", err)
	}
	twice, err := SortRows(once, 1)
	if err != nil {
		t.Fatalf("second sort: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second sort changed order:\n once = %v\ntwice = %v", cellColumn(once, 0), cellColumn(twice, 0))
	}
}

func TestSortRows_DoesNotMutateInput(t *testing.T) {
	rows := catalogueRows()
	before := cellColumn(rows, 0)
	if _, err := SortRows(rows, 0); err != nil {
		t.Fatalf("SortRows() error = %v", err)
	}
	if after := cellColumn(rows, 0); !reflect.DeepEqual(before, after) {
		t.Errorf("input mutated: %v -> %v", before, after)
	}
}

func TestSortRows_InvalidColumn(t *testing.T) {
	for _, col := range []int{-1, 2, 99} {
		_, err := SortRows(exampleRows(), col)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("SortRows(col=%d) error = %v, want ErrInvalidArgument", col, err)
		}
	}
}

func TestSortPermutation(t *testing.T) {
	perm, err := SortPermutation(catalogueRows(), 1)
	if err != nil {
		t.Fatalf("SortPermutation() error = %v", err)
	}
	if want := []int{0, 2, 4, 3, 1}; !reflect.DeepEqual(perm, want) {
		t.Errorf("SortPermutation() = %v, want %v", perm, want)
	}
}

// ============================================================================
// StatsAggregator Tests
// ============================================================================

func TestComputeStats(t *testing.T) {
	rows := exampleRows()
	visible := ComputeVisibility(rows, CategoryFinancial, "")

	stats, err := ComputeStats(rows, visible, DefaultCategories)
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}

	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1", stats.Total)
	}
	if stats.Rows != 2 {
		t.Errorf("Rows = %d, want 2", stats.Rows)
	}
	want := map[Category]int{CategoryFinancial: 1, CategoryNonFinancial: 0}
	if !reflect.DeepEqual(stats.PerCategory, want) {
		t.Errorf("PerCategory = %v, want %v", stats.PerCategory, want)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats, err := ComputeStats(nil, nil, DefaultCategories)
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	if stats.Total != 0 || stats.Rows != 0 {
		t.Errorf("stats = %+v, want zero counts", stats)
	}
	for _, c := range DefaultCategories {
		if n, ok := stats.PerCategory[c]; !ok || n != 0 {
			t.Errorf("PerCategory[%q] = %d, %v; want 0, true", c, n, ok)
		}
	}
}

func TestComputeStats_LengthMismatch(t *testing.T) {
	_, err := ComputeStats(exampleRows(), []bool{true}, DefaultCategories)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestStats_ResultsLabel(t *testing.T) {
	s := Stats{Total: 3, Rows: 10}
	if got := s.ResultsLabel(); got != "Mostrando 3 de 10 riesgos" {
		t.Errorf("ResultsLabel() = %q", got)
	}
}

// ============================================================================
// CsvExporter Tests
// ============================================================================

func TestToCSV(t *testing.T) {
	header := []string{"Riesgo", "Nivel"}
	rows := []RiskRow{
		{Cells: []string{`He said "hi"`, "Alto"}},
		{Cells: []string{"a,b", ""}},
	}

	got := ToCSV(header, rows)
	want := "\"Riesgo\",\"Nivel\"\n" +
		"\"He said \"\"hi\"\"\",\"Alto\"\n" +
		"\"a,b\",\"\"\n"
	if got != want {
		t.Errorf("ToCSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestToCSV_QuoteEscaping(t *testing.T) {
	got := quoteField(`He said "hi"`)
	if want := `"He said ""hi"""`; got != want {
		t.Errorf("quoteField() = %s, want %s", got, want)
	}
}

func TestToCSV_HeaderOnly(t *testing.T) {
	if got := ToCSV([]string{"A"}, nil); got != "\"A\"\n" {
		t.Errorf("ToCSV() = %q", got)
	}
}

func TestToCSV_RoundTrip(t *testing.T) {
	header := []string{"Riesgo", "Descripción", "Nivel"}
	rows := []RiskRow{
		{Cells: []string{`He said "hi"`, "line one\nline two", "Alto"}},
		{Cells: []string{"comma, inside", `""`, " padded "}},
		{Cells: []string{"Crédito", "", "Bajo"}},
	}

	records, err := csv.NewReader(strings.NewReader(ToCSV(header, rows))).ReadAll()
	if err != nil {
		t.Fatalf("csv parse error = %v", err)
	}

	want := [][]string{header}
	for _, r := range rows {
		want = append(want, r.Cells)
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("round trip = %q, want %q", records, want)
	}
}

// ============================================================================
// RowStore and View Tests
// ============================================================================

func newTestStore(t *testing.T) *RowStore {
	t.Helper()
	store, err := NewRowStore([]string{"Riesgo", "Nivel", "Mitigación"}, DefaultCategories, catalogueRows())
	if err != nil {
		t.Fatalf("NewRowStore() error = %v", err)
	}
	return store
}

func TestNewRowStore_Validation(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		categories []Category
		rows       []RiskRow
	}{
		{"empty header", nil, nil, nil},
		{"ragged row", []string{"a", "b"}, nil, []RiskRow{{Cells: []string{"x"}, Category: CategoryFinancial}}},
		{"unknown category", []string{"a"}, nil, []RiskRow{{Cells: []string{"x"}, Category: "other"}}},
		{"duplicate category", []string{"a"}, []Category{"x", "x"}, nil},
		{"reserved category", []string{"a"}, []Category{CategoryAll}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRowStore(tt.header, tt.categories, tt.rows)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("NewRowStore() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRowStore_CopiesInput(t *testing.T) {
	rows := catalogueRows()
	store, err := NewRowStore([]string{"a", "b", "c"}, nil, rows)
	if err != nil {
		t.Fatalf("NewRowStore() error = %v", err)
	}
	rows[0].Cells[0] = "mutated"

	if got := store.Rows()[0].Cells[0]; got != "Riesgo de mercado" {
		t.Errorf("store row changed through caller slice: %q", got)
	}
	if !reflect.DeepEqual(store.Categories(), DefaultCategories) {
		t.Errorf("Categories() = %v, want defaults", store.Categories())
	}
}

func TestApply(t *testing.T) {
	store := newTestStore(t)

	v, err := Apply(store, Query{Category: CategoryFinancial, Search: "alto", SortColumn: SortBy(0)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	wantOrder := []string{"Riesgo de crédito", "Riesgo de liquidez", "Riesgo de mercado", "Riesgo operacional", "Riesgo reputacional"}
	if got := cellColumn(v.Rows, 0); !reflect.DeepEqual(got, wantOrder) {
		t.Errorf("display order = %v, want %v", got, wantOrder)
	}
	if want := []int{4, 2, 0, 1, 3}; !reflect.DeepEqual(v.Permutation, want) {
		t.Errorf("Permutation = %v, want %v", v.Permutation, want)
	}
	if want := []bool{true, true, true, false, false}; !reflect.DeepEqual(v.Visible, want) {
		t.Errorf("Visible = %v, want %v", v.Visible, want)
	}
	if v.Stats.Total != 3 || v.Stats.PerCategory[CategoryNonFinancial] != 0 {
		t.Errorf("Stats = %+v", v.Stats)
	}

	if v.Cells[3] != nil {
		t.Errorf("hidden row should have no spans, got %+v", v.Cells[3])
	}
	if want := []Span{{Text: "ALTO", Matched: true}}; !reflect.DeepEqual(v.Spans(0, 1), want) {
		t.Errorf("Spans(0,1) = %+v, want %+v", v.Spans(0, 1), want)
	}
	if want := []Span{{Text: "Bajo"}}; !reflect.DeepEqual(v.Spans(4, 1), want) {
		t.Errorf("Spans(4,1) = %+v, want %+v", v.Spans(4, 1), want)
	}
}

func TestApply_NoSearchSkipsHighlight(t *testing.T) {
	v, err := Apply(newTestStore(t), Query{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if v.Cells != nil {
		t.Errorf("Cells should be nil without a search term")
	}
	if v.Query.Category != CategoryAll {
		t.Errorf("Query.Category = %q, want all", v.Query.Category)
	}
	if v.Stats.Total != 5 {
		t.Errorf("Stats.Total = %d, want 5", v.Stats.Total)
	}
}

func TestApply_InvalidSortColumn(t *testing.T) {
	_, err := Apply(newTestStore(t), Query{SortColumn: SortBy(3)})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Apply() error = %v, want ErrInvalidArgument", err)
	}
}

func TestView_ExportIncludesHiddenRowsInDisplayOrder(t *testing.T) {
	v, err := Apply(newTestStore(t), Query{Category: CategoryNonFinancial, SortColumn: SortBy(1)})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(v.ExportCSV())).ReadAll()
	if err != nil {
		t.Fatalf("csv parse: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("exported %d records, want header + 5 rows", len(records))
	}
	got := []string{records[1][1], records[2][1], records[3][1], records[4][1], records[5][1]}
	if want := []string{"Alto", "alto", "ALTO", "Bajo", "Medio"}; !reflect.DeepEqual(got, want) {
		t.Errorf("export order = %v, want %v", got, want)
	}

	if n := len(v.VisibleRows()); n != 2 {
		t.Errorf("VisibleRows() = %d rows, want 2", n)
	}
}

func TestQuery_IsFiltered(t *testing.T) {
	tests := []struct {
		q    Query
		want bool
	}{
		{Query{}, false},
		{Query{Category: CategoryAll}, false},
		{Query{Category: CategoryFinancial}, true},
		{Query{Search: "x"}, true},
	}
	for _, tt := range tests {
		if got := tt.q.IsFiltered(); got != tt.want {
			t.Errorf("%+v.IsFiltered() = %v, want %v", tt.q, got, tt.want)
		}
	}
}
