package lettergen

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/alnah/go-lettergen/internal/pipeline"
)

// bodyFont is a PDF core font, so nothing is embedded and output stays small.
const bodyFont = "Times"

// pdfCreator is written to the document information dictionary.
const pdfCreator = "go-lettergen"

// fpdfRenderer lays letters out with go-pdf/fpdf. Given the same letter,
// creation date and LetterData it produces identical bytes.
type fpdfRenderer struct {
	letter  *letterTemplate
	blocks  pipeline.BlockConverter
	created time.Time
}

func newFPDFRenderer(letter *letterTemplate, created time.Time) *fpdfRenderer {
	return &fpdfRenderer{
		letter:  letter,
		blocks:  pipeline.NewGoldmarkConverter(),
		created: created,
	}
}

// Render draws the logo, optional date, body, signature and closing lines on
// one US Letter page (more if the body overflows).
func (r *fpdfRenderer) Render(ctx context.Context, data LetterData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := data.Branding.Validate(); err != nil {
		return nil, err
	}

	letter, err := r.letter.execute(data)
	if err != nil {
		return nil, err
	}
	blocks, err := r.blocks.ToBlocks(ctx, letter.Body)
	if err != nil {
		return nil, err
	}

	pdf := r.newDocument(letter.Title)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252 for core fonts
	left, _, _, _ := pdf.GetMargins()

	pdf.AddPage()

	drawImage(pdf, "logo", data.Branding.logo, left,
		logoWidthInches*pointsPerInch, logoHeightInches*pointsPerInch)
	pdf.Ln(gapAfterLogoInches * pointsPerInch)

	if letter.Date != "" {
		pdf.SetFont(bodyFont, "", bodyFontSize)
		pdf.Write(bodyLeading, tr(letter.Date))
		paragraphBreak(pdf)
	}

	for _, b := range blocks {
		writeBlock(pdf, tr, b)
		paragraphBreak(pdf)
	}

	pdf.Ln(gapAroundSigInches * pointsPerInch)
	drawImage(pdf, "signature", data.Branding.signature, left,
		signatureWidthInches*pointsPerInch, signatureHeightInches*pointsPerInch)
	pdf.Ln(gapAroundSigInches * pointsPerInch)

	pdf.SetFont(bodyFont, "", bodyFontSize)
	for _, line := range letter.Closing {
		pdf.Write(bodyLeading, tr(line))
		pdf.Ln(bodyLeading)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("laying out letter: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Close is a no-op: fpdf holds no resources between renders.
func (r *fpdfRenderer) Close() error { return nil }

// newDocument creates a US Letter document in points with fixed metadata.
func (r *fpdfRenderer) newDocument(title string) *fpdf.Fpdf {
	margin := MarginInches * pointsPerInch

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size: fpdf.SizeType{
			Wd: PageWidthInches * pointsPerInch,
			Ht: PageHeightInches * pointsPerInch,
		},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreationDate(r.created)
	pdf.SetModificationDate(r.created)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(title, true)
	pdf.SetCreator(pdfCreator, false)
	return pdf
}

// drawImage registers img under name and places it at the cursor, moving the
// cursor below it. Each call reads the image through a fresh reader.
func drawImage(pdf *fpdf.Fpdf, name string, img brandImage, x, w, h float64) {
	opts := fpdf.ImageOptions{ImageType: img.format}
	pdf.RegisterImageOptionsReader(name, opts, img.reader())
	pdf.ImageOptions(name, x, -1, w, h, true, opts, 0, "")
}

// writeBlock writes one paragraph, switching font style per span.
func writeBlock(pdf *fpdf.Fpdf, tr func(string) string, b pipeline.Block) {
	for i, line := range b.Lines {
		if i > 0 {
			pdf.Ln(bodyLeading)
		}
		for _, s := range line {
			pdf.SetFont(bodyFont, fontStyle(s), bodyFontSize)
			pdf.Write(bodyLeading, tr(s.Text))
		}
	}
}

// paragraphBreak ends the current line and leaves one blank line.
func paragraphBreak(pdf *fpdf.Fpdf) {
	pdf.Ln(bodyLeading)
	pdf.Ln(bodyLeading)
}

func fontStyle(s pipeline.Span) string {
	switch {
	case s.Bold && s.Italic:
		return "BI"
	case s.Bold:
		return "B"
	case s.Italic:
		return "I"
	}
	return ""
}

var _ renderer = (*fpdfRenderer)(nil)
