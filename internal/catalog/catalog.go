// Package catalog loads the risk catalogue: page metadata, risk cards and
// the comparison table that feeds the engine's row store.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/JonMunkholm/riskboard/internal/core"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidCatalog wraps every catalogue validation failure.
var ErrInvalidCatalog = errors.New("invalid catalog")

// ErrUnavailable wraps failures to read a catalogue source.
var ErrUnavailable = errors.New("catalog unavailable")

// rowNamespace seeds deterministic row IDs.
var rowNamespace = uuid.MustParse("6f1c7f9e-2b0c-4c1e-9a53-7d1f1b6a2c40")

// Catalog is the full content of the risk page.
type Catalog struct {
	Title      string         `yaml:"title" json:"title"`
	Subtitle   string         `yaml:"subtitle" json:"subtitle,omitempty"`
	Categories []CategoryInfo `yaml:"categories" json:"categories"`
	Sections   []Section      `yaml:"sections" json:"sections"`
	Cards      []Card         `yaml:"cards" json:"cards,omitempty"`
	Table      Table          `yaml:"table" json:"table"`
}

// CategoryInfo describes one bucket of the closed category set.
type CategoryInfo struct {
	Key         core.Category `yaml:"key" json:"key"`
	Label       string        `yaml:"label" json:"label"`
	FilterLabel string        `yaml:"filter_label" json:"filterLabel,omitempty"`
}

// Section is a navigable part of the page. The comparison section has no category.
type Section struct {
	ID       string        `yaml:"id" json:"id"`
	Title    string        `yaml:"title" json:"title"`
	Category core.Category `yaml:"category" json:"category,omitempty"`
}

// Card is an expandable risk summary shown in its category's section.
type Card struct {
	Key      string        `yaml:"key" json:"key"`
	Title    string        `yaml:"title" json:"title"`
	Category core.Category `yaml:"category" json:"category"`
	Summary  string        `yaml:"summary" json:"summary"`
	Details  []string      `yaml:"details" json:"details,omitempty"`
}

// Table is the comparison table.
type Table struct {
	Header []string   `yaml:"header" json:"header"`
	Rows   []TableRow `yaml:"rows" json:"rows"`
}

// TableRow is one comparison table row as stored in a source.
type TableRow struct {
	Category core.Category `yaml:"category" json:"category"`
	Cells    []string      `yaml:"cells" json:"cells"`
}

// CategoryKeys returns the closed category set in declaration order.
func (c *Catalog) CategoryKeys() []core.Category {
	keys := make([]core.Category, len(c.Categories))
	for i, info := range c.Categories {
		keys[i] = info.Key
	}
	return keys
}

// Label returns the display label of a category, or its key.
func (c *Catalog) Label(key core.Category) string {
	for _, info := range c.Categories {
		if info.Key == key && info.Label != "" {
			return info.Label
		}
	}
	return string(key)
}

// FilterLabel returns the announcement text for a filter selection.
func (c *Catalog) FilterLabel(key core.Category) string {
	if key == "" || key == core.CategoryAll {
		return "Todos los riesgos"
	}
	for _, info := range c.Categories {
		if info.Key == key {
			if info.FilterLabel != "" {
				return info.FilterLabel
			}
			return c.Label(key)
		}
	}
	return string(key)
}

// Section returns the section with the given ID.
func (c *Catalog) Section(id string) (Section, bool) {
	for _, s := range c.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// CardsFor returns the cards of one category in catalogue order.
func (c *Catalog) CardsFor(category core.Category) []Card {
	var out []Card
	for _, card := range c.Cards {
		if card.Category == category {
			out = append(out, card)
		}
	}
	return out
}

// Validate checks structural consistency. Missing categories default to
// the engine's financial/non-financial pair.
func (c *Catalog) Validate() error {
	if len(c.Categories) == 0 {
		for _, key := range core.DefaultCategories {
			c.Categories = append(c.Categories, CategoryInfo{Key: key, Label: string(key)})
		}
	}

	known := make(map[core.Category]bool, len(c.Categories))
	for i, info := range c.Categories {
		if info.Key == "" || info.Key == core.CategoryAll {
			return fmt.Errorf("%w: category %d has reserved key %q", ErrInvalidCatalog, i, info.Key)
		}
		if known[info.Key] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, info.Key)
		}
		known[info.Key] = true
	}

	sections := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if s.ID == "" {
			return fmt.Errorf("%w: section %q has no id", ErrInvalidCatalog, s.Title)
		}
		if sections[s.ID] {
			return fmt.Errorf("%w: duplicate section %q", ErrInvalidCatalog, s.ID)
		}
		sections[s.ID] = true
		if s.Category != "" && !known[s.Category] {
			return fmt.Errorf("%w: section %q has unknown category %q", ErrInvalidCatalog, s.ID, s.Category)
		}
	}

	for _, card := range c.Cards {
		if !known[card.Category] {
			return fmt.Errorf("%w: card %q has unknown category %q", ErrInvalidCatalog, card.Key, card.Category)
		}
	}

	if len(c.Table.Header) == 0 {
		return fmt.Errorf("%w: table has no header", ErrInvalidCatalog)
	}
	for i, row := range c.Table.Rows {
		if len(row.Cells) != len(c.Table.Header) {
			return fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrInvalidCatalog, i, len(row.Cells), len(c.Table.Header))
		}
		if !known[row.Category] {
			return fmt.Errorf("%w: row %d has unknown category %q", ErrInvalidCatalog, i, row.Category)
		}
	}
	return nil
}

// Normalize rewrites all text to Unicode NFC so that composed and
// decomposed accents compare equal during search.
func (c *Catalog) Normalize() {
	c.Title = NormalizeText(c.Title)
	c.Subtitle = NormalizeText(c.Subtitle)
	for i := range c.Categories {
		c.Categories[i].Label = NormalizeText(c.Categories[i].Label)
		c.Categories[i].FilterLabel = NormalizeText(c.Categories[i].FilterLabel)
	}
	for i := range c.Sections {
		c.Sections[i].Title = NormalizeText(c.Sections[i].Title)
	}
	for i := range c.Cards {
		card := &c.Cards[i]
		card.Title = NormalizeText(card.Title)
		card.Summary = NormalizeText(card.Summary)
		for j := range card.Details {
			card.Details[j] = NormalizeText(card.Details[j])
		}
	}
	for i := range c.Table.Header {
		c.Table.Header[i] = NormalizeText(c.Table.Header[i])
	}
	for i := range c.Table.Rows {
		cells := c.Table.Rows[i].Cells
		for j := range cells {
			cells[j] = NormalizeText(cells[j])
		}
	}
}

// NormalizeText returns s in Unicode NFC. Search terms should go through
// it too so they match normalized catalogue text.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// Store builds the engine's row store from the comparison table.
func (c *Catalog) Store() (*core.RowStore, error) {
	rows := make([]core.RiskRow, len(c.Table.Rows))
	for i, r := range c.Table.Rows {
		rows[i] = core.RiskRow{
			ID:       RowID(i, r.Cells),
			Cells:    r.Cells,
			Category: r.Category,
		}
	}
	store, err := core.NewRowStore(c.Table.Header, c.CategoryKeys(), rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return store, nil
}

// RowID derives a stable ID from a row's position and leading cell, so
// the same catalogue always yields the same IDs.
func RowID(position int, cells []string) uuid.UUID {
	name := strconv.Itoa(position)
	if len(cells) > 0 {
		name += ":" + cells[0]
	}
	return uuid.NewSHA1(rowNamespace, []byte(name))
}

// finish validates and normalizes a freshly loaded catalogue.
func finish(c *Catalog) (*Catalog, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Normalize()
	return c, nil
}

// withBase fills page metadata a table-only source cannot provide.
func withBase(c *Catalog, base *Catalog) *Catalog {
	if base == nil {
		return c
	}
	if c.Title == "" {
		c.Title = base.Title
		c.Subtitle = base.Subtitle
	}
	if len(c.Sections) == 0 {
		c.Sections = append([]Section(nil), base.Sections...)
	}
	if len(c.Cards) == 0 {
		c.Cards = make([]Card, len(base.Cards))
		for i, card := range base.Cards {
			card.Details = slices.Clone(card.Details)
			c.Cards[i] = card
		}
	}
	if len(c.Categories) == 0 {
		c.Categories = append([]CategoryInfo(nil), base.Categories...)
	}
	return c
}
