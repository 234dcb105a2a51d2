package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonMunkholm/riskboard/internal/core"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Source loads a catalogue.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
	// Name identifies the source in logs.
	Name() string
}

// Default returns the embedded catalogue.
func Default() (*Catalog, error) {
	return Parse(bytes.NewReader(defaultCatalog))
}

// Parse decodes, validates and normalizes a YAML catalogue.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(textReader(r))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidCatalog, err)
	}
	return finish(&c)
}

// EmbeddedSource serves the catalogue compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Load(ctx context.Context) (*Catalog, error) { return Default() }

func (EmbeddedSource) Name() string { return "embedded" }

// FileSource reads a YAML catalogue from disk on every Load.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return c, nil
}

func (s FileSource) Name() string { return "file:" + s.Path }

// DefaultCategoryColumn names the CSV column that carries the category.
const DefaultCategoryColumn = "category"

// CSVSource reads the comparison table from a CSV file. The first record
// is the header; the category column is removed from the cells. Page
// metadata comes from Base.
type CSVSource struct {
	Path           string
	CategoryColumn string
	Base           *Catalog
}

func (s CSVSource) Load(ctx context.Context) (*Catalog, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	c, err := ReadCSV(f, s.CategoryColumn, s.Base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return c, nil
}

func (s CSVSource) Name() string { return "csv:" + s.Path }

// ReadCSV builds a catalogue from CSV. Category values are matched against
// the base catalogue's categories; without a base, the distinct values in
// order of first appearance form the category set.
func ReadCSV(r io.Reader, categoryColumn string, base *Catalog) (*Catalog, error) {
	if categoryColumn == "" {
		categoryColumn = DefaultCategoryColumn
	}

	reader := csv.NewReader(textReader(r))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrInvalidCatalog, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty csv", ErrInvalidCatalog)
	}

	header := records[0]
	catIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), categoryColumn) {
			catIdx = i
			break
		}
	}
	if catIdx < 0 {
		return nil, fmt.Errorf("%w: category column %q not found", ErrInvalidCatalog, categoryColumn)
	}

	c := &Catalog{}
	c.Table.Header = dropIndex(header, catIdx)

	var seen []core.Category
	for line, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, want %d",
				ErrInvalidCatalog, line+2, len(rec), len(header))
		}
		cat := core.Category(strings.TrimSpace(rec[catIdx]))
		if !containsCategory(seen, cat) {
			seen = append(seen, cat)
		}
		c.Table.Rows = append(c.Table.Rows, TableRow{
			Category: cat,
			Cells:    dropIndex(rec, catIdx),
		})
	}

	c = withBase(c, base)
	if base == nil || len(base.Categories) == 0 {
		c.Categories = nil
		for _, cat := range seen {
			c.Categories = append(c.Categories, CategoryInfo{Key: cat, Label: string(cat)})
		}
	}
	return finish(c)
}

func dropIndex(fields []string, idx int) []string {
	out := make([]string, 0, len(fields)-1)
	out = append(out, fields[:idx]...)
	return append(out, fields[idx+1:]...)
}

func containsCategory(cats []core.Category, c core.Category) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}
