package source

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strataviz/alluvial/pkg/table"
)

// seedDB creates a SQLite database file with a cohorts table.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cohorts.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE cohorts (id INTEGER, sem1 TEXT, sem2 TEXT, count REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO cohorts VALUES
		(1, 'math', 'cs', 2.5),
		(2, 'bio', NULL, 1.0)`)
	require.NoError(t, err)
	return path
}

func TestReadSQLite(t *testing.T) {
	path := seedDB(t)

	tb, err := ReadSQLite(context.Background(), path, "SELECT id, sem1, sem2, count FROM cohorts ORDER BY id")
	require.NoError(t, err)

	require.Equal(t, 2, tb.NumRows())
	require.Equal(t, []string{"id", "sem1", "sem2", "count"}, tb.Columns())

	require.Equal(t, table.KindNumber, tb.CellAt(0, 0).Kind())
	require.Equal(t, "math", tb.CellAt(0, 1).Text())
	require.Equal(t, "2.5", tb.CellAt(0, 3).Text())
	require.True(t, tb.CellAt(1, 2).IsNA(), "NULL must scan as a missing cell")
}

func TestReadSQLiteBadQuery(t *testing.T) {
	path := seedDB(t)
	_, err := ReadSQLite(context.Background(), path, "SELECT nope FROM missing")
	require.Error(t, err)
}

func TestReadSQLArgs(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "args.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE t (id INTEGER, flag BOOLEAN)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO t VALUES (1, 1), (2, 0), (3, 1)`)
	require.NoError(t, err)

	tb, err := ReadSQL(context.Background(), db, "SELECT id FROM t WHERE flag = ? ORDER BY id", 1)
	require.NoError(t, err)
	require.Equal(t, 2, tb.NumRows())
	require.Equal(t, "3", tb.CellAt(1, 0).Text())
}
