package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

// ReadSQL runs a query against an open database handle and converts the
// result set into a table. Column names come from the result set; cell
// values follow the same policy as the CSV source (NULL becomes a missing
// cell, numbers stay numeric, text is parsed with table.Parse).
func ReadSQL(ctx context.Context, db *sql.DB, query string, args ...any) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "query failed")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read result columns")
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid result columns")
	}

	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "scan row")
		}
		vals := make([]table.Value, len(cols))
		for i, cell := range raw {
			vals[i] = sqlValue(cell)
		}
		if err := t.AppendRow(vals...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "append row")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "iterate rows")
	}
	return t, nil
}

// ReadSQLite opens a SQLite database file read-only, runs the query, and
// closes the handle. Convenience wrapper over ReadSQL for the CLI.
func ReadSQLite(ctx context.Context, path, query string) (*table.Table, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open sqlite %s", path)
	}
	defer db.Close()

	t, err := ReadSQL(ctx, db, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// sqlValue maps a database/sql scan result onto the tagged value union.
func sqlValue(cell any) table.Value {
	switch v := cell.(type) {
	case nil:
		return table.NA()
	case int64:
		return table.Number(float64(v))
	case float64:
		return table.Number(v)
	case bool:
		if v {
			return table.Number(1)
		}
		return table.Number(0)
	case []byte:
		return table.Parse(string(v))
	case string:
		return table.Parse(v)
	default:
		return table.String(fmt.Sprint(v))
	}
}
