package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/riskboard/internal/core"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS risk_columns (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS risk_categories (
	position     INTEGER PRIMARY KEY,
	key          TEXT NOT NULL UNIQUE,
	label        TEXT NOT NULL,
	filter_label TEXT
);
CREATE TABLE IF NOT EXISTS risk_rows (
	position INTEGER PRIMARY KEY,
	category TEXT NOT NULL,
	cells    TEXT NOT NULL
);`

// SQLiteSource reads the comparison table from a SQLite database with the
// same layout as PostgresSource; cells are stored as a JSON array.
type SQLiteSource struct {
	db   *sql.DB
	path string
	Base *Catalog
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists.
func OpenSQLite(ctx context.Context, path string, base *Catalog) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create schema: %v", ErrUnavailable, err)
	}
	return &SQLiteSource{db: db, path: path, Base: base}, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) Name() string { return "sqlite:" + s.path }

func (s *SQLiteSource) Load(ctx context.Context) (*Catalog, error) {
	c := &Catalog{}

	colRows, err := s.db.QueryContext(ctx, `SELECT name FROM risk_columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query columns: %v", ErrUnavailable, err)
	}
	for colRows.Next() {
		var name string
		if err := colRows.Scan(&name); err != nil {
			colRows.Close()
			return nil, fmt.Errorf("scan column: %w", err)
		}
		c.Table.Header = append(c.Table.Header, name)
	}
	colRows.Close()
	if err := colRows.Err(); err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	catRows, err := s.db.QueryContext(ctx,
		`SELECT key, label, COALESCE(filter_label, '') FROM risk_categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query categories: %v", ErrUnavailable, err)
	}
	for catRows.Next() {
		var info CategoryInfo
		var key string
		if err := catRows.Scan(&key, &info.Label, &info.FilterLabel); err != nil {
			catRows.Close()
			return nil, fmt.Errorf("scan category: %w", err)
		}
		info.Key = core.Category(key)
		c.Categories = append(c.Categories, info)
	}
	catRows.Close()
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT category, cells FROM risk_rows ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query rows: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var category, raw string
		if err := rows.Scan(&category, &raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("%w: row cells: %v", ErrInvalidCatalog, err)
		}
		c.Table.Rows = append(c.Table.Rows, TableRow{Category: core.Category(category), Cells: cells})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return finish(withBase(c, s.Base))
}

// Seed replaces the stored table with the catalogue's in one transaction.
func (s *SQLiteSource) Seed(ctx context.Context, c *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{`DELETE FROM risk_rows`, `DELETE FROM risk_categories`, `DELETE FROM risk_columns`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	for i, name := range c.Table.Header {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO risk_columns (position, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("insert column %d: %w", i, err)
		}
	}
	for i, info := range c.Categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO risk_categories (position, key, label, filter_label) VALUES (?, ?, ?, ?)`,
			i, string(info.Key), info.Label, info.FilterLabel); err != nil {
			return fmt.Errorf("insert category %q: %w", info.Key, err)
		}
	}
	for i, row := range c.Table.Rows {
		cells, err := json.Marshal(row.Cells)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO risk_rows (position, category, cells) VALUES (?, ?, ?)`,
			i, string(row.Category), string(cells)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
