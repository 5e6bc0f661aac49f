package lettergen

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/alnah/go-lettergen/internal/pipeline"
)

// renderer turns one letter into PDF bytes. Implementations must not retain
// data between calls: the output depends only on the LetterData and on the
// letter the renderer was built with.
type renderer interface {
	Render(ctx context.Context, data LetterData) ([]byte, error)
	Close() error
}

// LetterData carries the per-row values of one letter.
type LetterData struct {
	OwnerName   string
	FullAddress string
	Date        string // resolved batch date, "" = no date line
	Branding    *Branding
}

// placeholders are the values a letter template can reference.
type placeholders struct {
	OwnerName   string
	FullAddress string
	Date        string
}

// letterTemplate is a parsed Letter, shared by every render of a batch.
type letterTemplate struct {
	title   *template.Template
	body    *template.Template
	closing []string
}

// composedLetter is a letter with every placeholder substituted.
type composedLetter struct {
	Title   string
	Date    string
	Body    string // Markdown, owner values escaped
	Closing []string
}

// sampleData exercises every placeholder when checking a template.
var sampleData = placeholders{OwnerName: "Owner", FullAddress: "1 Main St, City, ST 00000", Date: "Date"}

// parseLetter parses the title and body templates and executes them once
// against sample data, so a misspelled placeholder fails before any row.
func parseLetter(l *Letter) (*letterTemplate, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	title, err := template.New("title").Option("missingkey=error").Parse(l.Title)
	if err != nil {
		return nil, fmt.Errorf("%w: title: %v", ErrTemplate, err)
	}
	body, err := template.New("body").Option("missingkey=error").Parse(l.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrTemplate, err)
	}

	t := &letterTemplate{
		title:   title,
		body:    body,
		closing: append([]string(nil), l.Closing...),
	}
	if _, err := t.execute(LetterData{
		OwnerName:   sampleData.OwnerName,
		FullAddress: sampleData.FullAddress,
		Date:        sampleData.Date,
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// execute substitutes the row values. Body values are Markdown-escaped; the
// title is plain text and takes them verbatim.
func (t *letterTemplate) execute(data LetterData) (composedLetter, error) {
	var title, body bytes.Buffer

	if err := t.title.Execute(&title, placeholders{
		OwnerName:   data.OwnerName,
		FullAddress: data.FullAddress,
		Date:        data.Date,
	}); err != nil {
		return composedLetter{}, fmt.Errorf("%w: title: %v", ErrTemplate, err)
	}

	if err := t.body.Execute(&body, placeholders{
		OwnerName:   pipeline.EscapeMarkdown(data.OwnerName),
		FullAddress: pipeline.EscapeMarkdown(data.FullAddress),
		Date:        pipeline.EscapeMarkdown(data.Date),
	}); err != nil {
		return composedLetter{}, fmt.Errorf("%w: body: %v", ErrTemplate, err)
	}

	return composedLetter{
		Title:   strings.TrimSpace(title.String()),
		Date:    data.Date,
		Body:    pipeline.NormalizeMarkdown(body.String()),
		Closing: t.closing,
	}, nil
}

// newRenderer builds the engine selected by g.cfg.
func newRenderer(g *Generator, tmpl *letterTemplate) (renderer, error) {
	switch strings.ToLower(g.cfg.engine) {
	case EngineFPDF:
		return newFPDFRenderer(tmpl, g.cfg.created), nil
	case EngineChrome:
		return newChromeRenderer(tmpl, g.assetLoader, g.cfg.timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidEngine, g.cfg.engine)
	}
}
