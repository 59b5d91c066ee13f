// Package source loads tabular data into the engine's table model.
//
// Sources are thin adapters: they read named-column data from an external
// format (CSV, SQLite) and hand back a *table.Table, applying one uniform
// cell policy — empty strings and the literal "NA" become missing cells,
// numeric text becomes numbers, everything else stays a string.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

// ReadCSV parses CSV data into a table. The first record is the header and
// supplies the column names; every following record becomes one row.
// Records with a wrong field count are an error, not silently skipped:
// alluvial invariants depend on complete rows.
func ReadCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read CSV header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t, err := table.New(header...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid CSV header")
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read CSV line %d", line)
		}

		vals := make([]table.Value, len(record))
		for i, cell := range record {
			vals[i] = table.Parse(cell)
		}
		if err := t.AppendRow(vals...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "CSV line %d", line)
		}
	}
	return t, nil
}

// ReadCSVFile loads a CSV file from disk.
func ReadCSVFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV serializes a table as CSV: header first, then rows in order.
// Missing cells are written as empty fields, the inverse of ReadCSV.
func WriteCSV(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns()); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	nCols := t.NumCols()
	record := make([]string, nCols)
	for r := 0; r < t.NumRows(); r++ {
		for c := 0; c < nCols; c++ {
			v := t.CellAt(r, c)
			if v.IsNA() {
				record[c] = ""
			} else {
				record[c] = v.Text()
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV row %d: %w", r, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
