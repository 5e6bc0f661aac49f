package lettergen

import (
	"fmt"
	"strings"
)

// Page geometry in PDF points (1 inch = 72 points), US Letter portrait.
const (
	pointsPerInch = 72.0

	PageWidthInches  = 8.5
	PageHeightInches = 11.0
	MarginInches     = 1.0
)

// Letter layout constants in inches.
const (
	logoWidthInches       = 1.5
	logoHeightInches      = 1.5
	signatureWidthInches  = 2.2
	signatureHeightInches = 0.9
	gapAfterLogoInches    = 0.2
	gapAroundSigInches    = 0.1
)

// Body typography in points.
const (
	bodyFontSize = 12.0
	bodyLeading  = 16.0
)

// Engine names.
const (
	EngineFPDF   = "fpdf"
	EngineChrome = "chrome"
)

// isValidEngine checks if engine is a known rendering engine (case-insensitive).
func isValidEngine(engine string) bool {
	switch strings.ToLower(engine) {
	case EngineFPDF, EngineChrome:
		return true
	}
	return false
}

// InputRow is one data line of the owner file, addressed by column position.
type InputRow []string

// Field identifies one of the personalization fields read from a row.
type Field int

// Personalization fields, in the order they appear in OwnerRecord.
const (
	FieldOwnerName Field = iota
	FieldStreet
	FieldCity
	FieldState
	FieldPostalCode
	fieldCount
)

var fieldNames = [fieldCount]string{"owner name", "street", "city", "state", "postal code"}

// String returns the human-readable field name.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Column locates a field in the owner file: by header name when Header is
// set, otherwise by 0-based Index.
type Column struct {
	Index  int
	Header string

	resolved bool // Index was looked up from Header
}

// ColumnMap assigns a column to each personalization field.
type ColumnMap [fieldCount]Column

// DefaultColumns returns the positional layout of county owner exports:
// name in column 7, street/city/state/postal code in columns 16-19.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		FieldOwnerName:  {Index: 7},
		FieldStreet:     {Index: 16},
		FieldCity:       {Index: 17},
		FieldState:      {Index: 18},
		FieldPostalCode: {Index: 19},
	}
}

// Validate checks that positional columns are non-negative.
func (m ColumnMap) Validate() error {
	for f, c := range m {
		if c.Header == "" && c.Index < 0 {
			return fmt.Errorf("%w: %s column index %d", ErrInvalidColumn, Field(f), c.Index)
		}
	}
	return nil
}

// OwnerRecord holds the personalization values extracted from one row.
type OwnerRecord struct {
	OwnerName  string
	Street     string
	City       string
	State      string
	PostalCode string
}

// FullAddress formats the mailing address as "street, city, state postal".
func (r OwnerRecord) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", r.Street, r.City, r.State, r.PostalCode)
}

// Letter is the fixed letter template shared by every document of a batch.
// Body is Markdown; {{.OwnerName}}, {{.FullAddress}} and {{.Date}} are the only
// substitutions available. Closing lines are rendered verbatim after the
// signature image.
type Letter struct {
	Title   string   // PDF metadata title; {{.OwnerName}} allowed
	Date    string   // "" = no date line, "auto", "auto:FORMAT" or literal
	Body    string   // Markdown with placeholders
	Closing []string // sender block lines
}

// Validate checks that the template has content to render.
func (l *Letter) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: nil letter", ErrTemplate)
	}
	if strings.TrimSpace(l.Body) == "" {
		return fmt.Errorf("%w: empty body", ErrTemplate)
	}
	return nil
}
