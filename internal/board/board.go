// Package board holds the live risk catalogue shared by the front ends and
// the request parsing and announcement text they have in common.
package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/riskboard/internal/catalog"
	"github.com/JonMunkholm/riskboard/internal/config"
	"github.com/JonMunkholm/riskboard/internal/core"
)

// ErrNotLoaded is returned before the first catalogue has been set.
var ErrNotLoaded = fmt.Errorf("%w: no catalog loaded", catalog.ErrUnavailable)

// Snapshot is an immutable catalogue together with its row store.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Store    *core.RowStore
	Source   string
	LoadedAt time.Time
}

// Board publishes snapshots to concurrent readers. Readers never see a
// partially replaced catalogue.
type Board struct {
	current atomic.Pointer[Snapshot]
	source  string
}

// New creates an empty board for catalogues read from source.
func New(source string) *Board {
	return &Board{source: source}
}

// Set validates c, builds its row store and publishes it.
// On error the previous snapshot stays current.
func (b *Board) Set(c *catalog.Catalog) (*Snapshot, error) {
	store, err := c.Store()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		Catalog:  c,
		Store:    store,
		Source:   b.source,
		LoadedAt: time.Now(),
	}
	b.current.Store(snap)
	return snap, nil
}

// Current returns the published snapshot.
func (b *Board) Current() (*Snapshot, error) {
	snap := b.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Apply runs q against the current snapshot.
func (b *Board) Apply(q core.Query) (*Snapshot, *core.View, error) {
	snap, err := b.Current()
	if err != nil {
		return nil, nil, err
	}
	view, err := core.Apply(snap.Store, q)
	if err != nil {
		return nil, nil, err
	}
	return snap, view, nil
}

// Section returns the section named by id, falling back to the first one.
func (s *Snapshot) Section(id string) catalog.Section {
	if sec, ok := s.Catalog.Section(id); ok {
		return sec
	}
	if len(s.Catalog.Sections) > 0 {
		return s.Catalog.Sections[0]
	}
	return catalog.Section{ID: "comparativo", Title: s.Catalog.Title}
}

// ParseQuery builds a query from raw request values. An empty filter means
// all categories and an empty sort means catalogue order. The search term is
// NFC-normalized and must not exceed maxTerm runes (0 disables the limit).
func ParseQuery(filter, search, sort string, maxTerm int) (core.Query, error) {
	q := core.Query{Category: core.CategoryAll}

	if f := strings.TrimSpace(filter); f != "" {
		q.Category = core.Category(f)
	}

	search = catalog.NormalizeText(search)
	if maxTerm > 0 && utf8.RuneCountInString(search) > maxTerm {
		return core.Query{}, fmt.Errorf("%w: %d characters, limit is %d",
			core.ErrSearchTooLong, utf8.RuneCountInString(search), maxTerm)
	}
	q.Search = search

	if s := strings.TrimSpace(sort); s != "" {
		col, err := strconv.Atoi(s)
		if err != nil {
			return core.Query{}, fmt.Errorf("%w: sort %q is not a column index",
				core.ErrInvalidArgument, s)
		}
		q.SortColumn = core.SortBy(col)
	}

	return q, nil
}

// IsClientError reports whether err was caused by the request.
func IsClientError(err error) bool {
	return errors.Is(err, core.ErrInvalidArgument) || errors.Is(err, core.ErrSearchTooLong)
}

// AnnounceFilter is the status message after selecting a category filter.
func AnnounceFilter(c *catalog.Catalog, category core.Category) string {
	return "Filtro aplicado: " + c.FilterLabel(category)
}

// AnnounceSearch is the status message after a search. Empty terms
// announce nothing.
func AnnounceSearch(term string) string {
	if term == "" {
		return ""
	}
	return "Búsqueda realizada: " + term
}

// AnnounceSection is the status message after switching sections.
func AnnounceSection(sec catalog.Section) string {
	return "Navegando a sección: " + sec.Title
}

// AnnounceCard is the status message after expanding or collapsing a card.
func AnnounceCard(title string, expanded bool) string {
	if expanded {
		return "Tarjeta " + title + " expandida"
	}
	return "Tarjeta " + title + " contraída"
}

// AnnounceSort is the status message after sorting by a column.
func AnnounceSort(header []string, col int) string {
	if col < 0 || col >= len(header) {
		return ""
	}
	return "Tabla ordenada por: " + header[col]
}

// Announce picks the message for a query the way the page reports it:
// search first, then filter.
func Announce(c *catalog.Catalog, q core.Query) string {
	if msg := AnnounceSearch(q.Search); msg != "" {
		return msg
	}
	if q.Category != "" && q.Category != core.CategoryAll {
		return AnnounceFilter(c, q.Category)
	}
	return ""
}

// SourceOptions maps the catalogue and database settings to catalog.Open options.
func SourceOptions(cfg *config.Config) catalog.Options {
	return catalog.Options{
		Source:         cfg.Catalog.Source,
		CategoryColumn: cfg.Catalog.CategoryColumn,
		Pool: catalog.PoolOptions{
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		},
	}
}
