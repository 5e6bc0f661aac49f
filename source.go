package lettergen

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// utf8BOM is stripped from the first header cell (spreadsheet exports add it).
const utf8BOM = "\ufeff"

// Source holds the parsed rows of an owner file.
// The header row is kept apart and never yielded as data.
type Source struct {
	header  []string
	rows    []InputRow
	columns ColumnMap
}

// ReadSource parses a comma-separated owner file whose first row is a header.
// The whole input is parsed before returning so that a malformed file fails
// before any row is processed. Header-mapped columns in cols are resolved
// against the header row; a missing header fails with ErrMissingColumn.
// All failures wrap ErrSourceRead.
func ReadSource(r io.Reader, cols ColumnMap) (*Source, error) {
	if err := cols.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRead, err)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // short rows are a per-row failure, not a file failure

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrSourceRead)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	resolved, err := ResolveColumns(header, cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceRead, err)
	}

	var rows []InputRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
		}
		rows = append(rows, InputRow(rec))
	}

	return &Source{header: header, rows: rows, columns: resolved}, nil
}

// ResolveColumns returns a copy of cols where every header-mapped column
// carries the position of its header. Matching ignores case and surrounding
// whitespace. Positional columns are returned unchanged.
func ResolveColumns(header []string, cols ColumnMap) (ColumnMap, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	out := cols
	for f, c := range cols {
		if c.Header == "" {
			continue
		}
		idx, ok := positions[strings.ToLower(strings.TrimSpace(c.Header))]
		if !ok {
			return ColumnMap{}, fmt.Errorf("%w: %s header %q", ErrMissingColumn, Field(f), c.Header)
		}
		out[f] = Column{Index: idx, Header: c.Header, resolved: true}
	}
	return out, nil
}

// Header returns the header row.
func (s *Source) Header() []string { return s.header }

// Columns returns the column mapping resolved against the header.
func (s *Source) Columns() ColumnMap { return s.columns }

// Len returns the number of data rows.
func (s *Source) Len() int { return len(s.rows) }

// Rows yields data rows in file order with their 0-based index.
func (s *Source) Rows() iter.Seq2[int, InputRow] {
	return func(yield func(int, InputRow) bool) {
		for i, row := range s.rows {
			if !yield(i, row) {
				return
			}
		}
	}
}
