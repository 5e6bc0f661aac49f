package lettergen

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	// Batch-level (fatal) errors.
	ErrSourceRead   = errors.New("cannot read owner file")
	ErrArchiveWrite = errors.New("archive write failed")

	// Row-level errors; a batch continues past them.
	ErrExtraction = errors.New("field extraction failed")
	ErrRender     = errors.New("letter rendering failed")

	// Column mapping errors.
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidColumn = errors.New("invalid column")

	// Branding image errors.
	ErrEmptyImage       = errors.New("image is empty")
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrInvalidImage     = errors.New("image cannot be decoded")

	// Template and configuration errors.
	ErrTemplate      = errors.New("invalid letter template")
	ErrInvalidEngine = errors.New("invalid rendering engine")
	ErrNilBranding   = errors.New("branding assets are required")

	// Chrome engine errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

// ExtractionError reports a row whose personalization fields could not be read.
type ExtractionError struct {
	Row    int    // 0-based data row index (header excluded)
	Field  Field  // field being read when extraction failed
	Column Column // column the field was mapped to
	Err    error
}

func (e *ExtractionError) Error() string {
	col := fmt.Sprintf("column %d", e.Column.Index)
	if e.Column.Header != "" {
		col = fmt.Sprintf("column %q", e.Column.Header)
	}
	return fmt.Sprintf("row %d: %s (%s): %v", e.Row, e.Field, col, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrExtraction) match any ExtractionError.
func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// RenderError reports a row whose letter could not be rendered.
type RenderError struct {
	Row int
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRender) match any RenderError.
func (e *RenderError) Is(target error) bool { return target == ErrRender }
