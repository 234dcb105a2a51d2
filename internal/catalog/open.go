package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Options selects and configures a catalogue source.
type Options struct {
	// Source is one of:
	//   embedded:               built-in catalogue
	//   file:PATH or PATH.yaml  YAML catalogue
	//   csv:PATH or PATH.csv    CSV table, metadata from the built-in catalogue
	//   postgres://...          PostgreSQL table
	//   sqlite:PATH             SQLite table
	Source         string
	CategoryColumn string
	Pool           PoolOptions
}

// Open resolves opts.Source to a Source. The returned close function
// releases any database handle and is never nil.
func Open(ctx context.Context, opts Options) (Source, func(), error) {
	noop := func() {}
	raw := strings.TrimSpace(opts.Source)

	switch {
	case raw == "" || raw == "embedded:" || raw == "embedded":
		return EmbeddedSource{}, noop, nil

	case strings.HasPrefix(raw, "file:"):
		return FileSource{Path: strings.TrimPrefix(raw, "file:")}, noop, nil

	case strings.HasPrefix(raw, "csv:"), strings.HasSuffix(strings.ToLower(raw), ".csv"):
		base, err := Default()
		if err != nil {
			return nil, noop, err
		}
		return CSVSource{
			Path:           strings.TrimPrefix(raw, "csv:"),
			CategoryColumn: opts.CategoryColumn,
			Base:           base,
		}, noop, nil

	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		base, err := Default()
		if err != nil {
			return nil, noop, err
		}
		src, err := NewPostgresSource(ctx, raw, opts.Pool, base)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil

	case strings.HasPrefix(raw, "sqlite:"):
		base, err := Default()
		if err != nil {
			return nil, noop, err
		}
		src, err := OpenSQLite(ctx, strings.TrimPrefix(raw, "sqlite:"), base)
		if err != nil {
			return nil, noop, err
		}
		return src, func() { src.Close() }, nil

	case hasYAMLExt(raw):
		return FileSource{Path: raw}, noop, nil
	}

	return nil, noop, fmt.Errorf("unsupported catalog source: %q", raw)
}

// WatchPath returns the file a source reads from, if it is file based.
func WatchPath(src Source) (string, bool) {
	switch s := src.(type) {
	case FileSource:
		return s.Path, true
	case CSVSource:
		return s.Path, true
	}
	return "", false
}

func hasYAMLExt(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
