package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/riskboard/internal/board"
	"github.com/JonMunkholm/riskboard/internal/catalog"
	"github.com/JonMunkholm/riskboard/internal/core"
	"github.com/JonMunkholm/riskboard/internal/logging"
	"github.com/JonMunkholm/riskboard/internal/web/templates"
	"github.com/google/uuid"
)

// comparisonSection is the section that shows the table instead of cards.
const comparisonSection = "comparativo"

// parseQuery reads filter, q and sort from the URL.
func (s *Server) parseQuery(r *http.Request) (core.Query, error) {
	v := r.URL.Query()
	return board.ParseQuery(v.Get("filter"), v.Get("q"), v.Get("sort"), s.cfg.Search.MaxTermLength)
}

// apply parses the request query and runs it against the live catalogue.
func (s *Server) apply(r *http.Request, endpoint string) (*board.Snapshot, *core.View, error) {
	q, err := s.parseQuery(r)
	if err != nil {
		return nil, nil, err
	}
	return s.run(q, endpoint)
}

// run applies q to the live catalogue and records its latency.
func (s *Server) run(q core.Query, endpoint string) (*board.Snapshot, *core.View, error) {
	start := time.Now()
	snap, view, err := s.board.Apply(q)
	if err != nil {
		return nil, nil, err
	}
	s.metrics.ObserveView(endpoint, time.Since(start))
	return snap, view, nil
}

// handlePage renders the full risk page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	section := r.URL.Query().Get("section")
	if section == "" && hasTableParams(r) {
		section = comparisonSection
	}

	snap, view, err := s.apply(r, "page")
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	active := snap.Section(section)
	page := templates.PageData{
		Title:    snap.Catalog.Title,
		Subtitle: snap.Catalog.Subtitle,
		Active:   templates.SectionTab{ID: active.ID, Title: active.Title, Active: true},
		Table:    tableData(snap, view),
	}
	for _, sec := range snap.Catalog.Sections {
		page.Sections = append(page.Sections, templates.SectionTab{
			ID:     sec.ID,
			Title:  sec.Title,
			Active: sec.ID == active.ID,
		})
	}
	if active.Category != "" {
		open := r.URL.Query()["open"]
		for _, card := range snap.Catalog.CardsFor(active.Category) {
			page.Cards = append(page.Cards, templates.CardData{
				Key:     card.Key,
				Title:   card.Title,
				Summary: card.Summary,
				Details: card.Details,
				Open:    contains(open, card.Key),
			})
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Page(page).Render(r.Context(), w)
}

// handleTable renders the table partial for HTMX swaps.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snap, view, err := s.apply(r, "table")
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Table(tableData(snap, view)).Render(r.Context(), w)
}

// CatalogResponse is the JSON shape of GET /api/catalog.
type CatalogResponse struct {
	Title      string                 `json:"title"`
	Header     []string               `json:"header"`
	Categories []catalog.CategoryInfo `json:"categories"`
	Sections   []catalog.Section      `json:"sections"`
	Cards      []catalog.Card         `json:"cards"`
	Rows       int                    `json:"rows"`
	Source     string                 `json:"source"`
	LoadedAt   time.Time              `json:"loadedAt"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := s.board.Current()
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, CatalogResponse{
		Title:      snap.Catalog.Title,
		Header:     snap.Store.Header(),
		Categories: snap.Catalog.Categories,
		Sections:   snap.Catalog.Sections,
		Cards:      snap.Catalog.Cards,
		Rows:       snap.Store.Len(),
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt,
	})
}

// StatsResponse is the JSON shape of the stats panel.
type StatsResponse struct {
	Total        int                   `json:"total"`
	Rows         int                   `json:"rows"`
	PerCategory  map[core.Category]int `json:"perCategory"`
	ResultsLabel string                `json:"resultsLabel"`
}

// RowResponse is one display row of GET /api/view.
type RowResponse struct {
	ID       uuid.UUID     `json:"id"`
	Category core.Category `json:"category"`
	Visible  bool          `json:"visible"`
	Cells    [][]core.Span `json:"cells"`
}

// ViewResponse is the JSON shape of GET /api/view.
type ViewResponse struct {
	Header       []string      `json:"header"`
	Permutation  []int         `json:"permutation"`
	Visibility   []bool        `json:"visibility"`
	Rows         []RowResponse `json:"rows"`
	Stats        StatsResponse `json:"stats"`
	Announcement string        `json:"announcement,omitempty"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	snap, view, err := s.apply(r, "api_view")
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	resp := ViewResponse{
		Header:       view.Header,
		Permutation:  view.Permutation,
		Visibility:   view.Visible,
		Stats:        statsResponse(view.Stats),
		Announcement: board.Announce(snap.Catalog, view.Query),
	}
	for i, row := range view.Rows {
		cells := make([][]core.Span, len(row.Cells))
		for c := range row.Cells {
			cells[c] = view.Spans(i, c)
		}
		resp.Rows = append(resp.Rows, RowResponse{
			ID:       row.ID,
			Category: row.Category,
			Visible:  view.Visible[i],
			Cells:    cells,
		})
	}
	writeJSON(w, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	_, view, err := s.apply(r, "api_stats")
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, statsResponse(view.Stats))
}

// HighlightResponse is the JSON shape of GET /api/highlight.
type HighlightResponse struct {
	Spans   []core.Span `json:"spans"`
	Matched bool        `json:"matched"`
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	spans := core.Highlight(catalog.NormalizeText(r.URL.Query().Get("text")), q.Search)
	writeJSON(w, HighlightResponse{Spans: spans, Matched: core.HasMatch(spans)})
}

// handleExport streams every row in the current sort order as CSV.
// Filter and search do not narrow the export.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q, err := board.ParseQuery("", "", r.URL.Query().Get("sort"), s.cfg.Search.MaxTermLength)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	snap, view, err := s.run(q, "export")
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if err := s.exports.acquire(r.Context()); err != nil {
		s.metrics.IncRateLimited()
		s.respondError(w, r, err, statusFor(err))
		return
	}
	defer s.exports.release()

	exportID := uuid.New()
	logger := logging.WithFields(r.Context(), "export_id", exportID, "rows", len(view.Rows))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, s.cfg.Export.Filename))
	if err := view.WriteCSV(w); err != nil {
		// Headers are gone; all we can do is log.
		logger.Error("export failed", "error", err, "code", core.MapError(err).Code)
		return
	}
	s.metrics.IncExport()
	logger.Info("export served", "source", snap.Source)
}

// HealthResponse is the JSON shape of GET /healthz.
type HealthResponse struct {
	Status   string    `json:"status"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loadedAt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.board.Current()
	if err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, HealthResponse{
		Status:   "ok",
		Source:   snap.Source,
		Rows:     snap.Store.Len(),
		LoadedAt: snap.LoadedAt,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(r.Context()); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.handleHealth(w, r)
}

func tableData(snap *board.Snapshot, view *core.View) templates.TableData {
	t := templates.TableData{
		Header:       view.Header,
		SortColumn:   -1,
		Search:       view.Query.Search,
		ResultsLabel: view.Stats.ResultsLabel(),
		Announcement: board.Announce(snap.Catalog, view.Query),
		ExportURL:    "/api/export.csv",
	}
	if view.Query.SortColumn != nil {
		t.SortColumn = *view.Query.SortColumn
		t.ExportURL = fmt.Sprintf("/api/export.csv?sort=%d", t.SortColumn)
	}

	selected := view.Query.Category
	if selected == "" {
		selected = core.CategoryAll
	}
	t.Filters = append(t.Filters, templates.FilterOption{
		Value:    string(core.CategoryAll),
		Label:    snap.Catalog.FilterLabel(core.CategoryAll),
		Selected: selected == core.CategoryAll,
	})
	for _, key := range snap.Catalog.CategoryKeys() {
		t.Filters = append(t.Filters, templates.FilterOption{
			Value:    string(key),
			Label:    snap.Catalog.FilterLabel(key),
			Selected: selected == key,
		})
	}

	for i, row := range view.Rows {
		cells := make([][]core.Span, len(row.Cells))
		for c := range row.Cells {
			cells[c] = view.Spans(i, c)
		}
		t.Rows = append(t.Rows, templates.RowData{
			ID:       row.ID.String(),
			Category: string(row.Category),
			Hidden:   !view.Visible[i],
			Cells:    cells,
		})
	}

	t.Stats = append(t.Stats, templates.StatItem{Label: "Total", Count: view.Stats.Total})
	for _, key := range snap.Catalog.CategoryKeys() {
		t.Stats = append(t.Stats, templates.StatItem{
			Label: snap.Catalog.Label(key),
			Count: view.Stats.PerCategory[key],
		})
	}
	return t
}

func statsResponse(st core.Stats) StatsResponse {
	return StatsResponse{
		Total:        st.Total,
		Rows:        st.Rows,
		PerCategory:  st.PerCategory,
		ResultsLabel: st.ResultsLabel(),
	}
}

func hasTableParams(r *http.Request) bool {
	v := r.URL.Query()
	return v.Has("filter") || v.Has("q") || v.Has("sort")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
