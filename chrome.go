package lettergen

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-lettergen/internal/assets"
	"github.com/alnah/go-lettergen/internal/fileutil"
	"github.com/alnah/go-lettergen/internal/pipeline"
	"github.com/alnah/go-lettergen/internal/process"
)

// defaultTimeout bounds one Chrome page load and print.
const defaultTimeout = 30 * time.Second

// pdfRenderer abstracts printing an HTML file so the Chrome engine can be
// tested without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
	Close() error
}

// chromeRenderer builds the letter as an HTML page and prints it with
// headless Chrome. Output is not byte-stable: Chrome stamps its own dates.
type chromeRenderer struct {
	letter *letterTemplate
	html   pipeline.HTMLConverter
	page   pipeline.PageRenderer
	css    string
	pdf    pdfRenderer
}

// newChromeRenderer loads the page template and print style from loader.
// The browser itself starts on the first render.
func newChromeRenderer(letter *letterTemplate, loader assets.AssetLoader, timeout time.Duration) (*chromeRenderer, error) {
	tmpl, err := loader.LoadTemplate(assets.LetterPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading letter page template: %w", err)
	}
	page, err := pipeline.NewLetterPage(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplate, err)
	}
	css, err := loader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return nil, fmt.Errorf("loading letter style: %w", err)
	}

	return &chromeRenderer{
		letter: letter,
		html:   pipeline.NewGoldmarkConverter(),
		page:   page,
		css:    css,
		pdf:    newRodRenderer(timeout),
	}, nil
}

// Render writes the letter page to a temporary file and prints it.
func (c *chromeRenderer) Render(ctx context.Context, data LetterData) ([]byte, error) {
	htmlContent, err := c.buildPage(ctx, data)
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile([]byte(htmlContent), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.pdf.RenderFromFile(ctx, tmpPath)
}

// buildPage returns the complete HTML page for one letter, images inlined as
// data URIs so the page needs no other file.
func (c *chromeRenderer) buildPage(ctx context.Context, data LetterData) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := data.Branding.Validate(); err != nil {
		return "", err
	}

	letter, err := c.letter.execute(data)
	if err != nil {
		return "", err
	}
	body, err := c.html.ToHTML(ctx, letter.Body)
	if err != nil {
		return "", err
	}

	return c.page.RenderPage(ctx, &pipeline.LetterPageData{
		Title:        letter.Title,
		Date:         letter.Date,
		CSS:          c.css,
		LogoURI:      dataURI(data.Branding.logo),
		SignatureURI: dataURI(data.Branding.signature),
		BodyHTML:     body,
		Closing:      letter.Closing,
	})
}

// Close shuts the browser down.
func (c *chromeRenderer) Close() error {
	return c.pdf.Close()
}

func dataURI(img brandImage) string {
	return "data:" + img.mime + ";base64," + base64.StdEncoding.EncodeToString(img.data)
}

// rodRenderer implements pdfRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration

	// launchErr is the first launch failure. Every later render returns it
	// instead of starting another browser.
	launchErr error
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}
	if r.launchErr != nil {
		return r.launchErr
	}
	r.launchErr = r.launch()
	return r.launchErr
}

func (r *rodRenderer) launch() error {

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containers
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	return nil
}

// Close closes the browser and kills its process group, so renderer and GPU
// helper processes do not outlive the batch.
func (r *rodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	if pid := r.launcher.PID(); pid > 0 {
		_ = process.KillProcessGroup(pid) // already gone when Close succeeded
	}
	r.launcher.Cleanup()

	r.browser = nil
	r.launcher = nil
	return err
}

// RenderFromFile opens a local HTML file in headless Chrome and prints it to
// PDF on US Letter paper with 1 inch margins.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	// Context deadline wins over the configured timeout when sooner
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.Context(ctx).Timeout(timeout).PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// printOptions returns the US Letter print settings.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(PageWidthInches),
		PaperHeight:     floatPtr(PageHeightInches),
		MarginTop:       floatPtr(MarginInches),
		MarginBottom:    floatPtr(MarginInches),
		MarginLeft:      floatPtr(MarginInches),
		MarginRight:     floatPtr(MarginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

var (
	_ renderer    = (*chromeRenderer)(nil)
	_ pdfRenderer = (*rodRenderer)(nil)
)
