package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrTableNotFound is returned when sampling a table that is not in the public schema
var ErrTableNotFound = errors.New("table not found")

// MaxSampleRows caps SampleRows
const MaxSampleRows = 100

// ListTables returns the names of the tables in the public schema
func (db *DB) ListTables(ctx context.Context) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan table names: %w", err)
	}
	return tables, nil
}

// SampleRows returns up to n rows of a table as column-name maps.
// The table must exist in the public schema; its name is quoted as an identifier.
func (db *DB) SampleRows(ctx context.Context, table string, n int) ([]map[string]any, error) {
	tables, err := db.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(tables, table) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT * FROM `+sampleTarget(table)+` LIMIT $1`,
		clampSample(n),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sample %s: %w", table, err)
	}

	sample, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s rows: %w", table, err)
	}
	return sample, nil
}

// sampleTarget quotes a public table name for interpolation into SQL
func sampleTarget(table string) string {
	return pgx.Identifier{"public", table}.Sanitize()
}

func clampSample(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxSampleRows:
		return MaxSampleRows
	default:
		return n
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
