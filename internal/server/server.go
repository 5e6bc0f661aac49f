// Package server exposes letter generation over HTTP: an upload form, a
// multipart endpoint that answers with the ZIP archive, and a health check.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-lettergen"
	"github.com/alnah/go-lettergen/internal/assets"
)

// Form field names of the upload request.
const (
	FieldLogo      = "logo"
	FieldSignature = "signature"
	FieldOwners    = "owners"
)

// Response headers describing the batch outcome.
const (
	HeaderRows     = "X-Lettergen-Rows"
	HeaderEntries  = "X-Lettergen-Entries"
	HeaderWarnings = "X-Lettergen-Warnings"
	HeaderWarning  = "X-Lettergen-Warning"
)

// Defaults.
const (
	DefaultAddr           = ":8080"
	DefaultArchiveName    = "personalized_letters.zip"
	DefaultMaxUploadBytes = 32 << 20

	// maxWarningHeaders caps per-row warning headers; the count header
	// always carries the total.
	maxWarningHeaders = 50

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// ErrListen is returned by Run when the address cannot be bound.
var ErrListen = errors.New("cannot listen")

// Generator runs one batch. *lettergen.GeneratorPool satisfies it, so
// concurrent uploads run on separate generators.
type Generator interface {
	Generate(ctx context.Context, csv io.Reader, branding *lettergen.Branding) (*lettergen.Result, error)
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. Defaults to DefaultAddr.
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithMaxUploadBytes caps the size of an upload request.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		s.maxUpload = n
	}
}

// WithArchiveName sets the download file name.
func WithArchiveName(name string) Option {
	return func(s *Server) {
		s.archiveName = name
	}
}

// WithLogger sets the request and lifecycle logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithAssetLoader loads the upload form from loader instead of the embedded
// assets.
func WithAssetLoader(loader assets.AssetLoader) Option {
	return func(s *Server) {
		s.loader = loader
	}
}

// Server serves the upload form and turns uploads into letter archives.
type Server struct {
	addr        string
	maxUpload   int64
	archiveName string
	logger      *slog.Logger
	loader      assets.AssetLoader

	gen       Generator
	form      *template.Template
	engine    *gin.Engine
	startTime time.Time
}

// New creates a Server running batches on gen.
func New(gen Generator, opts ...Option) (*Server, error) {
	if gen == nil {
		return nil, errors.New("server: nil generator")
	}

	s := &Server{
		addr:        DefaultAddr,
		maxUpload:   DefaultMaxUploadBytes,
		archiveName: DefaultArchiveName,
		loader:      assets.NewEmbeddedLoader(),
		gen:         gen,
		startTime:   time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUploadBytes
	}

	content, err := s.loader.LoadTemplate(assets.UploadFormTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading upload form: %w", err)
	}
	s.form, err = template.New("upload").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing upload form: %w", err)
	}

	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.MaxMultipartMemory = s.maxUpload

	r.GET("/", s.handleForm)
	r.POST("/letters", s.handleLetters)
	r.GET("/api/health", s.handleHealth)
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully, letting
// in-flight batches finish within the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleForm(c *gin.Context) {
	var buf bytes.Buffer
	err := s.form.Execute(&buf, struct{ Title, Action string }{
		Title:  "Personalized Seller Letters",
		Action: "/letters",
	})
	if err != nil {
		s.logger.Error("rendering upload form", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render form"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleLetters(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	files := make(map[string][]byte, 3)
	for _, field := range []string{FieldLogo, FieldSignature, FieldOwners} {
		data, status, err := readUpload(c, field)
		if err != nil {
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		files[field] = data
	}

	branding := lettergen.NewBranding(files[FieldLogo], files[FieldSignature])
	res, err := s.gen.Generate(c.Request.Context(), bytes.NewReader(files[FieldOwners]), branding)
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("batch failed", "status", status, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h := c.Writer.Header()
	h.Set(HeaderRows, strconv.Itoa(res.Rows))
	h.Set(HeaderEntries, strconv.Itoa(len(res.Entries)))
	h.Set(HeaderWarnings, strconv.Itoa(len(res.Warnings)))
	for i, w := range res.Warnings {
		if i == maxWarningHeaders {
			break
		}
		h.Add(HeaderWarning, headerValue(w.String()))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.archiveName))

	s.logger.Info("letters generated",
		"rows", res.Rows,
		"entries", len(res.Entries),
		"warnings", len(res.Warnings))

	c.Data(http.StatusOK, "application/zip", res.Archive)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

// readUpload returns the content of one multipart file field, or the status
// to answer with.
func readUpload(c *gin.Context, field string) ([]byte, int, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("missing file field %q", field)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("opening %q: %v", field, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("reading %q: %v", field, err)
	}
	return data, http.StatusOK, nil
}

// statusFor maps a batch error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lettergen.ErrSourceRead), errors.Is(err, lettergen.ErrNilBranding):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// headerValue keeps a warning on one header line.
func headerValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
}

var _ Generator = (*lettergen.GeneratorPool)(nil)
