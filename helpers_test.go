package lettergen

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

// testImage encodes a small solid image in format.
func testImage(t *testing.T, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(12, 8, color.NRGBA{R: 20, G: 60, B: 200, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

// testBranding returns a valid PNG logo and PNG signature.
func testBranding(t *testing.T) *Branding {
	t.Helper()
	b := NewBranding(testImage(t, imaging.PNG), testImage(t, imaging.PNG))
	if err := b.Validate(); err != nil {
		t.Fatalf("test branding invalid: %v", err)
	}
	return b
}

// ownerRow builds a 20-column row with values at the default positions.
func ownerRow(name, street, city, state, postal string) []string {
	row := make([]string, 20)
	row[7] = name
	row[16], row[17], row[18], row[19] = street, city, state, postal
	return row
}

// csvOf joins rows into CSV text, header first. Cells must not need quoting.
func csvOf(rows ...[]string) string {
	var sb strings.Builder
	for _, r := range rows {
		sb.WriteString(strings.Join(r, ","))
		sb.WriteString("\n")
	}
	return sb.String()
}

// defaultHeader is a 20-column header row.
func defaultHeader() []string {
	h := make([]string, 20)
	for i := range h {
		h[i] = "col" + string(rune('A'+i))
	}
	h[7] = "Owner Name"
	h[16], h[17], h[18], h[19] = "Mail Street", "Mail City", "Mail State", "Mail Zip"
	return h
}

