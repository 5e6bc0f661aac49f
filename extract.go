package lettergen

import (
	"fmt"
	"strings"
)

// pathReplacer turns an owner name into a safe archive entry segment.
var pathReplacer = strings.NewReplacer(" ", "_", "/", "_")

// Extract reads the five personalization fields of row using cols.
// Values are trimmed and otherwise passed through untouched. A row too short
// for one of the mapped columns fails with an *ExtractionError wrapping
// ErrMissingColumn. Header-mapped columns must be resolved first (see
// ResolveColumns); ReadSource does this for its rows.
func Extract(index int, row InputRow, cols ColumnMap) (OwnerRecord, error) {
	var values [fieldCount]string
	for f, c := range cols {
		if c.Header != "" && !c.resolved {
			return OwnerRecord{}, &ExtractionError{
				Row: index, Field: Field(f), Column: c,
				Err: fmt.Errorf("%w: header %q not resolved", ErrInvalidColumn, c.Header),
			}
		}
		if c.Index < 0 || c.Index >= len(row) {
			return OwnerRecord{}, &ExtractionError{
				Row: index, Field: Field(f), Column: c,
				Err: fmt.Errorf("%w: row has %d columns", ErrMissingColumn, len(row)),
			}
		}
		values[f] = strings.TrimSpace(row[c.Index])
	}

	return OwnerRecord{
		OwnerName:  values[FieldOwnerName],
		Street:     values[FieldStreet],
		City:       values[FieldCity],
		State:      values[FieldState],
		PostalCode: values[FieldPostalCode],
	}, nil
}

// SanitizeName replaces spaces and slashes with underscores.
// Every other character, apostrophes included, is kept.
func SanitizeName(name string) string {
	return pathReplacer.Replace(name)
}

// EntryName returns the archive file name for a record:
// "{sanitized owner name}_{postal code}.pdf".
func EntryName(rec OwnerRecord) string {
	return SanitizeName(rec.OwnerName) + "_" + rec.PostalCode + ".pdf"
}
