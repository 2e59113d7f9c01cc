// Package ixgest reads the dataset, program, project and grant tables that
// feed an evaluation pass.
package ixgest

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/teranos/fundlink/errors"
)

// utf8BOM is stripped from the start of a table, as spreadsheet exports add it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naTokens are cell values read as missing, matching the tokens dataframe
// libraries treat as NaN by default.
var naTokens = map[string]bool{
	"#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true, "-1.#QNAN": true,
	"-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true, "<NA>": true,
	"N/A": true, "NA": true, "NULL": true, "NaN": true, "None": true,
	"n/a": true, "nan": true, "null": true,
}

// Table is a parsed delimited file: a header and rows of cells.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string

	// Absent lists the optional columns the header lacked.
	Absent []string

	index map[string]int
}

// ParseTable parses delimited text. Short rows are padded with missing
// cells and long rows are truncated to the header width.
func ParseTable(path string, r io.Reader, delimiter rune) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	b = bytes.TrimPrefix(b, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.WithHint(
			errors.NewInvalidInputError("%s is empty", path),
			"every input table needs a header row")
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse header of %s", path)
	}

	t := &Table{Path: path, Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(header))
		for i := range row {
			if i < len(rec) && !naTokens[rec[i]] {
				row[i] = rec[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadTable opens and parses the file at path.
func ReadTable(path string, delimiter rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return ParseTable(path, f, delimiter)
}

// Require returns the column positions of names, failing with
// ErrMissingColumn listing every absent column.
func (t *Table) Require(names ...string) ([]int, error) {
	cols := make([]int, len(names))
	var missing []string
	for i, n := range names {
		idx, ok := t.index[n]
		if !ok {
			missing = append(missing, n)
			continue
		}
		cols[i] = idx
	}
	if len(missing) > 0 {
		err := errors.Wrapf(errors.ErrMissingColumn, "%s: %s", t.Path, strings.Join(missing, ", "))
		return nil, errors.WithHintf(err, "header has: %s", strings.Join(t.Header, ", "))
	}
	return cols, nil
}

// Optional returns the column positions of names, -1 for each column the
// header lacks. Absent columns are recorded once in t.Absent.
func (t *Table) Optional(names ...string) []int {
	cols := make([]int, len(names))
	for i, n := range names {
		idx, ok := t.index[n]
		if !ok {
			idx = -1
			if !slices.Contains(t.Absent, n) {
				t.Absent = append(t.Absent, n)
			}
		}
		cols[i] = idx
	}
	return cols
}

// cell returns row[col], or "" for an absent column.
func cell(row []string, col int) string {
	if col < 0 {
		return ""
	}
	return row[col]
}

// isBlank reports whether a record is a single empty field, as produced by
// a trailing empty line.
func isBlank(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}
