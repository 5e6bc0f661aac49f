package lettergen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alnah/go-lettergen/internal/assets"
	"github.com/alnah/go-lettergen/internal/dateutil"
)

// defaultDocumentTime stamps PDFs and archive entries unless
// WithCreationDate says otherwise. It is the earliest time a ZIP entry can
// carry, and being fixed it keeps repeated batches byte-identical.
var defaultDocumentTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Stage names the step at which a row failed.
type Stage string

// Row stages that can fail without stopping the batch.
const (
	StageExtract Stage = "extract"
	StageRender  Stage = "render"
)

// Warning records a row that produced no letter.
type Warning struct {
	Row   int // 0-based data row index (header excluded)
	Stage Stage
	Err   error
}

// String formats the warning for logs and HTTP headers.
func (w Warning) String() string {
	return fmt.Sprintf("row %d: %s: %v", w.Row, w.Stage, w.Err)
}

// Result is the outcome of one batch.
type Result struct {
	Archive  []byte    // ZIP bytes, entries in row order
	Entries  []string  // entry names, in archive order
	Rows     int       // data rows read (header excluded)
	Warnings []Warning // failed rows, in row order
}

// Partial reports whether some rows produced no letter.
func (r *Result) Partial() bool { return len(r.Warnings) > 0 }

// Option configures a Generator.
type Option func(*Generator)

// generatorConfig holds internal configuration for Generator.
type generatorConfig struct {
	engine    string
	letter    *Letter
	columns   ColumnMap
	timeout   time.Duration
	created   time.Time
	now       func() time.Time
	assetPath string
	onWarning func(Warning)
}

// WithEngine selects the rendering engine: EngineFPDF (default) or EngineChrome.
func WithEngine(engine string) Option {
	return func(g *Generator) {
		g.cfg.engine = engine
	}
}

// WithLetter sets the letter template. Defaults to DefaultLetter().
func WithLetter(l *Letter) Option {
	return func(g *Generator) {
		g.cfg.letter = l
	}
}

// WithColumns sets the column mapping. Defaults to DefaultColumns().
func WithColumns(cols ColumnMap) Option {
	return func(g *Generator) {
		g.cfg.columns = cols
	}
}

// WithTimeout bounds each Chrome page load and print.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("lettergen: WithTimeout duration must be positive")
	}
	return func(g *Generator) {
		g.cfg.timeout = d
	}
}

// WithCreationDate sets the date stamped into PDFs and archive entries.
func WithCreationDate(t time.Time) Option {
	return func(g *Generator) {
		g.cfg.created = t.UTC()
	}
}

// WithNow sets the clock used to resolve "auto" letter dates.
func WithNow(now func() time.Time) Option {
	return func(g *Generator) {
		g.cfg.now = now
	}
}

// WithAssetPath loads letter page templates and styles from a directory,
// falling back to embedded assets.
func WithAssetPath(path string) Option {
	return func(g *Generator) {
		g.cfg.assetPath = path
	}
}

// WithLogger sets the logger for batch progress and row warnings.
// A nil logger uses slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = l
	}
}

// WithWarningHandler registers a callback invoked for each failed row, in row
// order, while the batch runs.
func WithWarningHandler(fn func(Warning)) Option {
	return func(g *Generator) {
		g.cfg.onWarning = fn
	}
}

// Generator turns owner files into archives of personalized letters.
// Create with NewGenerator, call Generate per batch, and Close when done.
// Batches on one Generator run one at a time; use a GeneratorPool to run
// several concurrently.
type Generator struct {
	cfg         generatorConfig
	logger      *slog.Logger
	assetLoader assets.AssetLoader
	renderer    renderer

	mu sync.Mutex
}

// NewGenerator creates a Generator. The letter template, column mapping and
// date format are checked here, so errors surface before any batch.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		cfg: generatorConfig{
			engine:  EngineFPDF,
			columns: DefaultColumns(),
			timeout: defaultTimeout,
			created: defaultDocumentTime,
			now:     time.Now,
		},
		assetLoader: assets.NewEmbeddedLoader(),
	}

	for _, opt := range opts {
		opt(g)
	}

	g.logger = resolveLogger(g.logger)

	if !isValidEngine(g.cfg.engine) {
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidEngine, g.cfg.engine, EngineFPDF, EngineChrome)
	}
	if err := g.cfg.columns.Validate(); err != nil {
		return nil, err
	}

	if g.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(g.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		g.assetLoader = resolver
	}

	if g.cfg.letter == nil {
		g.cfg.letter = DefaultLetter()
	}
	if _, err := dateutil.Resolve(g.cfg.letter.Date, g.cfg.now()); err != nil {
		return nil, fmt.Errorf("%w: date: %v", ErrTemplate, err)
	}
	tmpl, err := parseLetter(g.cfg.letter)
	if err != nil {
		return nil, err
	}

	// Tests inject a renderer before this point
	if g.renderer == nil {
		g.renderer, err = newRenderer(g, tmpl)
		if err != nil {
			return nil, err
		}
	}

	return g, nil
}

// Engine returns the configured engine name.
func (g *Generator) Engine() string { return strings.ToLower(g.cfg.engine) }

// Generate reads an owner file and returns an archive with one letter per
// usable row. Rows that cannot be extracted or rendered are skipped and
// reported in Result.Warnings; only an unreadable owner file, an archive
// write failure or a cancelled context abort the batch.
//
// Rows are processed one at a time, in file order.
func (g *Generator) Generate(ctx context.Context, csv io.Reader, branding *Branding) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("internal error: %v", r)
		}
	}()

	if branding == nil {
		return nil, ErrNilBranding
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	src, err := ReadSource(csv, g.cfg.columns)
	if err != nil {
		return nil, err
	}

	// One date for the whole batch, so every letter agrees
	date, err := dateutil.Resolve(g.cfg.letter.Date, g.cfg.now())
	if err != nil {
		return nil, fmt.Errorf("%w: date: %v", ErrTemplate, err)
	}

	start := time.Now()
	g.logger.Info("batch started", "rows", src.Len(), "engine", g.Engine())

	var buf bytes.Buffer
	archive := newArchiveWriter(&buf, g.cfg.created)
	res := &Result{Rows: src.Len()}

	for i, row := range src.Rows() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := Extract(i, row, src.Columns())
		if err != nil {
			g.warn(res, Warning{Row: i, Stage: StageExtract, Err: err})
			continue
		}

		pdf, err := g.renderer.Render(ctx, LetterData{
			OwnerName:   rec.OwnerName,
			FullAddress: rec.FullAddress(),
			Date:        date,
			Branding:    branding,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			g.warn(res, Warning{Row: i, Stage: StageRender, Err: &RenderError{Row: i, Err: err}})
			continue
		}

		if err := archive.Add(EntryName(rec), pdf); err != nil {
			return nil, err
		}
	}

	if err := archive.Close(); err != nil {
		return nil, err
	}
	res.Archive = buf.Bytes()
	res.Entries = archive.Entries()

	g.logger.Info("batch finished",
		"rows", res.Rows,
		"entries", len(res.Entries),
		"warnings", len(res.Warnings),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return res, nil
}

// warn records a failed row and reports it to the logger and handler.
func (g *Generator) warn(res *Result, w Warning) {
	res.Warnings = append(res.Warnings, w)
	g.logger.Warn("row skipped", "row", w.Row, "stage", string(w.Stage), "error", w.Err)
	if g.cfg.onWarning != nil {
		g.cfg.onWarning(w)
	}
}

// Close releases renderer resources (the browser for the Chrome engine).
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.renderer == nil {
		return nil
	}
	return g.renderer.Close()
}

func resolveLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
