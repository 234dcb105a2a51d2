package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/riskboard/internal/core"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions sizes the PostgreSQL connection pool.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// PostgresSource reads the comparison table from PostgreSQL:
//
//	risk_columns(position int, name text)
//	risk_categories(position int, key text, label text, filter_label text)
//	risk_rows(position int, category text, cells text[])
//
// Page metadata (title, sections, cards) comes from Base.
type PostgresSource struct {
	pool *pgxpool.Pool
	dsn  string
	Base *Catalog
}

// NewPostgresSource opens a pool and verifies the connection.
func NewPostgresSource(ctx context.Context, dsn string, opts PoolOptions, base *Catalog) (*PostgresSource, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}

	return &PostgresSource{pool: pool, dsn: dsn, Base: base}, nil
}

// Close releases the pool.
func (s *PostgresSource) Close() {
	s.pool.Close()
}

func (s *PostgresSource) Name() string {
	poolConfig, err := pgxpool.ParseConfig(s.dsn)
	if err != nil {
		return "postgres"
	}
	return "postgres:" + poolConfig.ConnConfig.Database
}

func (s *PostgresSource) Load(ctx context.Context) (*Catalog, error) {
	c := &Catalog{}

	colRows, err := s.pool.Query(ctx, `SELECT name FROM risk_columns ORDER BY position`)
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

	catRows, err := s.pool.Query(ctx,
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

	rows, err := s.pool.Query(ctx, `SELECT category, cells FROM risk_rows ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: query rows: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var cells []string
		if err := rows.Scan(&category, &cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		c.Table.Rows = append(c.Table.Rows, TableRow{Category: core.Category(category), Cells: cells})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	return finish(withBase(c, s.Base))
}
