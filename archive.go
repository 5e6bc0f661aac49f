package lettergen

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"
)

// archiveWriter appends letters to a ZIP stream in call order.
// Every entry carries the same modification time so equal inputs give equal
// archives.
type archiveWriter struct {
	zw       *zip.Writer
	modified time.Time
	entries  []string
}

func newArchiveWriter(w io.Writer, modified time.Time) *archiveWriter {
	return &archiveWriter{zw: zip.NewWriter(w), modified: modified}
}

// Add writes one deflated entry. Duplicate names are written as given.
func (a *archiveWriter) Add(name string, data []byte) error {
	w, err := a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: a.modified,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArchiveWrite, name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArchiveWrite, name, err)
	}
	a.entries = append(a.entries, name)
	return nil
}

// Entries returns the names written so far, in order.
func (a *archiveWriter) Entries() []string { return a.entries }

// Close writes the central directory. An archive with no entries is still a
// valid, empty ZIP.
func (a *archiveWriter) Close() error {
	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrArchiveWrite, err)
	}
	return nil
}
