package pgutils

import (
	"context"
	"database/sql"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// NullIfEmpty maps "" to SQL NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}

// TextArray returns ss, or an empty slice when ss is nil, so that
// `<> ALL($n::text[])` never compares against NULL.
func TextArray(ss []string) []string {
	if ss == nil {
		return []string{}
	}

	return ss
}
