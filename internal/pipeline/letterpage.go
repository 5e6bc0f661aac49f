package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrPageRender indicates the letter page template failed to execute.
var ErrPageRender = errors.New("letter page rendering failed")

// LetterPageData holds everything the print page shows for one letter.
type LetterPageData struct {
	Title        string
	Date         string
	CSS          string
	LogoURI      string // data: URI of the logo
	SignatureURI string // data: URI of the signature
	BodyHTML     string // trusted output of GoldmarkConverter.ToHTML
	Closing      []string
}

// PageRenderer defines the contract for building a complete letter page.
type PageRenderer interface {
	RenderPage(ctx context.Context, data *LetterPageData) (string, error)
}

// LetterPage renders the letter page template.
type LetterPage struct {
	tmpl *template.Template
}

// letterPageView is the template-facing form of LetterPageData with
// pre-trusted types, so html/template keeps data URIs and body markup.
type letterPageView struct {
	Title        string
	Date         string
	CSS          template.CSS
	LogoURI      template.URL
	SignatureURI template.URL
	Body         template.HTML
	Closing      []string
}

// NewLetterPage creates a LetterPage from template content.
// Returns error if the template cannot be parsed.
func NewLetterPage(tmplContent string) (*LetterPage, error) {
	tmpl, err := template.New("letter").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing letter page template: %w", err)
	}
	return &LetterPage{tmpl: tmpl}, nil
}

// RenderPage executes the page template.
// Only data: URIs are accepted for images; anything else is rejected.
func (p *LetterPage) RenderPage(ctx context.Context, data *LetterPageData) (string, error) {
	if data == nil {
		return "", fmt.Errorf("%w: nil data", ErrPageRender)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	for _, uri := range []string{data.LogoURI, data.SignatureURI} {
		if !strings.HasPrefix(uri, "data:image/") {
			return "", fmt.Errorf("%w: image must be a data URI", ErrPageRender)
		}
	}

	view := letterPageView{
		Title:        data.Title,
		Date:         data.Date,
		CSS:          template.CSS(sanitizeCSS(data.CSS)), // #nosec G203 -- CSS comes from embedded or operator-supplied assets
		LogoURI:      template.URL(data.LogoURI),          // #nosec G203 -- checked data: prefix above
		SignatureURI: template.URL(data.SignatureURI),     // #nosec G203 -- checked data: prefix above
		Body:         template.HTML(data.BodyHTML),        // #nosec G203 -- goldmark output without WithUnsafe
		Closing:      data.Closing,
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageRender, err)
	}
	return buf.String(), nil
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
