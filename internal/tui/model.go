// Package tui is the terminal front end of the risk board: section tabs,
// expandable risk cards and the searchable comparison table.
package tui

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/riskboard/internal/board"
	"github.com/JonMunkholm/riskboard/internal/catalog"
	"github.com/JonMunkholm/riskboard/internal/core"
)

// Options configures a Model.
type Options struct {
	Board      *board.Board
	Debounce   time.Duration
	MaxTerm    int
	ExportPath string
}

// ReloadedMsg tells the model the board has a new catalogue.
type ReloadedMsg struct{}

// searchDebounceMsg fires after the debounce delay. Only the message whose
// id matches the latest keystroke runs the search.
type searchDebounceMsg struct {
	id uint64
}

type exportDoneMsg struct {
	path string
	rows int
	err  error
}

// Model is the bubbletea model of the risk browser.
type Model struct {
	opts Options
	keys keyMap
	help help.Model

	snap *board.Snapshot
	view *core.View

	section    int
	cardCursor int
	expanded   map[string]bool

	query      core.Query
	column     int
	rowOffset  int
	search     textinput.Model
	searching  bool
	debounceID uint64

	status string
	err    error

	width, height int
}

// New creates a model over the board's current catalogue.
func New(opts Options) (Model, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = core.DefaultDebounce
	}
	if opts.ExportPath == "" {
		opts.ExportPath = core.ExportFilename
	}

	ti := textinput.New()
	ti.Placeholder = "Buscar riesgos..."
	ti.Prompt = "/ "
	if opts.MaxTerm > 0 {
		ti.CharLimit = opts.MaxTerm
	}

	m := Model{
		opts:     opts,
		keys:     defaultKeyMap(),
		help:     help.New(),
		expanded: make(map[string]bool),
		query:    core.Query{Category: core.CategoryAll},
		search:   ti,
	}

	snap, err := opts.Board.Current()
	if err != nil {
		return Model{}, err
	}
	m.snap = snap
	if err := m.apply(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case searchDebounceMsg:
		if msg.id != m.debounceID {
			return m, nil
		}
		m.runSearch()
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = core.FormatUserError(msg.err)
		} else {
			m.err = nil
			m.status = fmt.Sprintf("Exportadas %d filas a %s", msg.rows, msg.path)
		}
		return m, nil

	case ReloadedMsg:
		m.reload()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.EndSearch):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.SubmitTerm):
		m.debounceID++
		m.searching = false
		m.search.Blur()
		m.runSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.debounceID++
	id := m.debounceID
	tick := tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{id: id}
	})
	return m, tea.Batch(cmd, tick)
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Section1):
		m.selectSection(0)
	case key.Matches(msg, m.keys.Section2):
		m.selectSection(1)
	case key.Matches(msg, m.keys.Section3):
		m.selectSection(2)
	case key.Matches(msg, m.keys.NextTab):
		m.selectSection((m.section + 1) % max(1, len(m.snap.Catalog.Sections)))
	case key.Matches(msg, m.keys.Collapse):
		m.expanded = make(map[string]bool)
		m.status = "Todas las tarjetas contraídas"
	default:
		if m.inComparison() {
			return m.updateTable(msg)
		}
		m.updateCards(msg)
	}
	return m, nil
}

func (m *Model) updateCards(msg tea.KeyMsg) {
	cards := m.cards()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cardCursor > 0 {
			m.cardCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cardCursor < len(cards)-1 {
			m.cardCursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cardCursor < len(cards) {
			c := cards[m.cardCursor]
			m.expanded[c.Key] = !m.expanded[c.Key]
			m.status = board.AnnounceCard(c.Title, m.expanded[c.Key])
		}
	case key.Matches(msg, m.keys.ExpandAll):
		for _, c := range m.snap.Catalog.Cards {
			m.expanded[c.Key] = true
		}
		m.status = "Todas las tarjetas expandidas"
	}
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Filter):
		m.query.Category = m.nextCategory()
		m.rowOffset = 0
		if err := m.apply(); err == nil {
			m.status = board.AnnounceFilter(m.snap.Catalog, m.query.Category)
		}
	case key.Matches(msg, m.keys.ColLeft):
		if m.column > 0 {
			m.column--
		}
	case key.Matches(msg, m.keys.ColRight):
		if m.column < m.snap.Store.Columns()-1 {
			m.column++
		}
	case key.Matches(msg, m.keys.Sort):
		m.query.SortColumn = core.SortBy(m.column)
		if err := m.apply(); err == nil {
			m.status = board.AnnounceSort(m.snap.Store.Header(), m.column)
		}
	case key.Matches(msg, m.keys.Up):
		if m.rowOffset > 0 {
			m.rowOffset--
		}
	case key.Matches(msg, m.keys.Down):
		if m.rowOffset < m.view.Stats.Total-1 {
			m.rowOffset++
		}
	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(m.view, m.opts.ExportPath)
	}
	return m, nil
}

// runSearch applies the text input's current value as the search term.
func (m *Model) runSearch() {
	term := catalog.NormalizeText(m.search.Value())
	if m.opts.MaxTerm > 0 && utf8.RuneCountInString(term) > m.opts.MaxTerm {
		m.err = fmt.Errorf("%w: limit is %d", core.ErrSearchTooLong, m.opts.MaxTerm)
		m.status = core.FormatUserError(m.err)
		return
	}
	m.query.Search = term
	m.rowOffset = 0
	if err := m.apply(); err == nil {
		m.status = board.AnnounceSearch(term)
	}
}

// apply recomputes the view. On error the previous view stays.
func (m *Model) apply() error {
	view, err := core.Apply(m.snap.Store, m.query)
	if err != nil {
		m.err = err
		m.status = core.FormatUserError(err)
		return err
	}
	m.view = view
	m.err = nil
	return nil
}

// reload picks up a new catalogue, dropping query parts it no longer supports.
func (m *Model) reload() {
	snap, err := m.opts.Board.Current()
	if err != nil {
		m.err = err
		return
	}
	m.snap = snap
	if m.query.SortColumn != nil && *m.query.SortColumn >= snap.Store.Columns() {
		m.query.SortColumn = nil
	}
	if m.column >= snap.Store.Columns() {
		m.column = 0
	}
	if m.section >= len(snap.Catalog.Sections) {
		m.section = 0
	}
	m.cardCursor = 0
	if err := m.apply(); err == nil {
		m.status = "Catálogo recargado"
	}
}

func (m *Model) selectSection(i int) {
	if i < 0 || i >= len(m.snap.Catalog.Sections) {
		return
	}
	m.section = i
	m.cardCursor = 0
	m.status = board.AnnounceSection(m.snap.Catalog.Sections[i])
}

func (m Model) currentSection() catalog.Section {
	if m.section < len(m.snap.Catalog.Sections) {
		return m.snap.Catalog.Sections[m.section]
	}
	return catalog.Section{}
}

// inComparison reports whether the table is showing. Sections without a
// category are the comparison view.
func (m Model) inComparison() bool {
	return m.currentSection().Category == ""
}

func (m Model) cards() []catalog.Card {
	return m.snap.Catalog.CardsFor(m.currentSection().Category)
}

// nextCategory cycles all → each category in order → all.
func (m Model) nextCategory() core.Category {
	keys := m.snap.Catalog.CategoryKeys()
	if m.query.Category == "" || m.query.Category == core.CategoryAll {
		if len(keys) == 0 {
			return core.CategoryAll
		}
		return keys[0]
	}
	for i, k := range keys {
		if k == m.query.Category && i+1 < len(keys) {
			return keys[i+1]
		}
	}
	return core.CategoryAll
}

func exportCmd(view *core.View, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{path: path, err: fmt.Errorf("write csv: %w", err)}
		}
		werr := view.WriteCSV(f)
		cerr := f.Close()
		if werr == nil && cerr != nil {
			werr = fmt.Errorf("flush csv: %w", cerr)
		}
		return exportDoneMsg{path: path, rows: len(view.Rows), err: werr}
	}
}

// Run starts the full-screen program. The returned program lets callers
// push ReloadedMsg from other goroutines before or while it runs.
func Run(m Model) (*tea.Program, func() error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	return p, func() error {
		_, err := p.Run()
		return err
	}
}
