package lettergen

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// withRenderer injects a renderer in place of the configured engine.
func withRenderer(r renderer) Option {
	return func(g *Generator) {
		g.renderer = r
	}
}

// mockRenderer records every letter it is asked to render.
type mockRenderer struct {
	mu       sync.Mutex
	calls    []LetterData
	failFor  map[string]error // owner name -> error
	onRender func()
	closed   bool
}

func (m *mockRenderer) Render(_ context.Context, data LetterData) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, data)
	if m.onRender != nil {
		m.onRender()
	}
	if err := m.failFor[data.OwnerName]; err != nil {
		return nil, err
	}
	return []byte("%PDF " + data.OwnerName), nil
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

func newMockGenerator(t *testing.T, mock *mockRenderer, opts ...Option) *Generator {
	t.Helper()
	gen, err := NewGenerator(append([]Option{withRenderer(mock), WithLogger(discardLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return gen
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("valid rows become entries in row order", func(t *testing.T) {
		t.Parallel()

		mock := &mockRenderer{}
		gen := newMockGenerator(t, mock)

		csv := csvOf(defaultHeader(),
			ownerRow("Jane Doe", "123 Main St", "Springfield", "CA", "94016"),
			ownerRow("O'Brien/Smith", "1 Elm", "Town", "NV", "89501"),
		)
		res, err := gen.Generate(context.Background(), strings.NewReader(csv), testBranding(t))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		want := []string{"Jane_Doe_94016.pdf", "O'Brien_Smith_89501.pdf"}
		if strings.Join(res.Entries, ",") != strings.Join(want, ",") {
			t.Errorf("Entries = %v, want %v", res.Entries, want)
		}
		if res.Rows != 2 || res.Partial() {
			t.Errorf("Rows = %d, Partial = %v", res.Rows, res.Partial())
		}
		if got := mock.calls[0].FullAddress; got != "123 Main St, Springfield, CA 94016" {
			t.Errorf("FullAddress = %q", got)
		}

		files := readArchive(t, res.Archive)
		if string(files["Jane_Doe_94016.pdf"]) != "%PDF Jane Doe" {
			t.Errorf("entry content = %q", files["Jane_Doe_94016.pdf"])
		}
	})

	t.Run("short row is skipped with one warning", func(t *testing.T) {
		t.Parallel()

		mock := &mockRenderer{}
		gen := newMockGenerator(t, mock)

		csv := csvOf(defaultHeader(),
			ownerRow("A", "1 St", "C", "CA", "1"),
			ownerRow("B", "2 St", "C", "CA", "2"),
			[]string{"x", "y", "z", "1", "2", "3", "4", "Short Row", "8", "9"},
			ownerRow("D", "4 St", "C", "CA", "4"),
		)
		res, err := gen.Generate(context.Background(), strings.NewReader(csv), testBranding(t))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		if len(res.Entries) != 3 {
			t.Errorf("entries = %d, want 3", len(res.Entries))
		}
		if len(readArchive(t, res.Archive)) != 3 {
			t.Error("archive should hold exactly 3 entries")
		}
		if len(res.Warnings) != 1 {
			t.Fatalf("warnings = %d, want 1", len(res.Warnings))
		}
		w := res.Warnings[0]
		if w.Row != 2 || w.Stage != StageExtract {
			t.Errorf("warning = %+v, want row 2 at extract", w)
		}
		var extErr *ExtractionError
		if !errors.As(w.Err, &extErr) {
			t.Errorf("warning error type = %T, want *ExtractionError", w.Err)
		}
		if len(mock.calls) != 3 {
			t.Errorf("renderer called %d times, want 3", len(mock.calls))
		}
	})

	t.Run("header only gives an empty archive", func(t *testing.T) {
		t.Parallel()

		gen := newMockGenerator(t, &mockRenderer{})
		res, err := gen.Generate(context.Background(), strings.NewReader(csvOf(defaultHeader())), testBranding(t))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(res.Entries) != 0 || len(res.Warnings) != 0 {
			t.Errorf("entries = %d, warnings = %d, want 0 and 0", len(res.Entries), len(res.Warnings))
		}
		if len(readArchive(t, res.Archive)) != 0 {
			t.Error("archive should be empty")
		}
	})

	t.Run("render failure is a warning", func(t *testing.T) {
		t.Parallel()

		mock := &mockRenderer{failFor: map[string]error{"B": ErrPDFGeneration}}
		gen := newMockGenerator(t, mock)

		csv := csvOf(defaultHeader(), ownerRow("A", "1", "C", "S", "1"), ownerRow("B", "2", "C", "S", "2"))
		res, err := gen.Generate(context.Background(), strings.NewReader(csv), testBranding(t))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(res.Entries) != 1 || len(res.Warnings) != 1 {
			t.Fatalf("entries = %d, warnings = %d", len(res.Entries), len(res.Warnings))
		}
		w := res.Warnings[0]
		if w.Stage != StageRender || !errors.Is(w.Err, ErrRender) || !errors.Is(w.Err, ErrPDFGeneration) {
			t.Errorf("warning = %v", w)
		}
		if !strings.HasPrefix(w.String(), "row 1: render: ") {
			t.Errorf("String() = %q", w.String())
		}
	})

	t.Run("duplicate entry names are kept", func(t *testing.T) {
		t.Parallel()

		gen := newMockGenerator(t, &mockRenderer{})
		row := ownerRow("Jane Doe", "1", "C", "S", "94016")
		res, err := gen.Generate(context.Background(), strings.NewReader(csvOf(defaultHeader(), row, row)), testBranding(t))
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(res.Entries) != 2 {
			t.Errorf("entries = %d, want 2", len(res.Entries))
		}
	})

	t.Run("unreadable owner file aborts", func(t *testing.T) {
		t.Parallel()

		gen := newMockGenerator(t, &mockRenderer{})
		res, err := gen.Generate(context.Background(), strings.NewReader(""), testBranding(t))
		if !errors.Is(err, ErrSourceRead) {
			t.Errorf("Generate() error = %v, want ErrSourceRead", err)
		}
		if res != nil {
			t.Error("result should be nil on a fatal error")
		}
	})

	t.Run("nil branding", func(t *testing.T) {
		t.Parallel()

		gen := newMockGenerator(t, &mockRenderer{})
		_, err := gen.Generate(context.Background(), strings.NewReader(csvOf(defaultHeader())), nil)
		if !errors.Is(err, ErrNilBranding) {
			t.Errorf("Generate() error = %v, want ErrNilBranding", err)
		}
	})
}

func TestGenerator_GenerateCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := &mockRenderer{onRender: cancel}
	gen := newMockGenerator(t, mock)

	csv := csvOf(defaultHeader(), ownerRow("A", "1", "C", "S", "1"), ownerRow("B", "2", "C", "S", "2"))
	_, err := gen.Generate(ctx, strings.NewReader(csv), testBranding(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
	if len(mock.calls) != 1 {
		t.Errorf("renderer called %d times after cancel, want 1", len(mock.calls))
	}
}

func TestGenerator_WarningHandlerAndLogs(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	var got []int
	gen, err := NewGenerator(
		withRenderer(&mockRenderer{}),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithWarningHandler(func(w Warning) { got = append(got, w.Row) }),
	)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	csv := csvOf(defaultHeader(), []string{"short"}, ownerRow("A", "1", "C", "S", "1"), []string{"short"})
	if _, err := gen.Generate(context.Background(), strings.NewReader(csv), testBranding(t)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("handler rows = %v, want [0 2]", got)
	}
	out := logs.String()
	for _, want := range []string{"batch started", "row skipped", "stage=extract", "batch finished", "entries=1", "warnings=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}
}

func TestGenerator_AutoDate(t *testing.T) {
	t.Parallel()

	mock := &mockRenderer{}
	now := func() time.Time { return time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC) }
	gen := newMockGenerator(t, mock,
		WithLetter(&Letter{Body: "Dear {{.OwnerName}}", Date: "auto"}),
		WithNow(now),
	)

	csv := csvOf(defaultHeader(), ownerRow("A", "1", "C", "S", "1"))
	if _, err := gen.Generate(context.Background(), strings.NewReader(csv), testBranding(t)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := mock.calls[0].Date; got != "March 7, 2026" {
		t.Errorf("Date = %q, want %q", got, "March 7, 2026")
	}
}

func TestNewGenerator_Errors(t *testing.T) {
	t.Parallel()

	badCols := DefaultColumns()
	badCols[FieldCity] = Column{Index: -3}

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{name: "unknown engine", opts: []Option{WithEngine("wkhtmltopdf")}, wantErr: ErrInvalidEngine},
		{name: "invalid columns", opts: []Option{WithColumns(badCols)}, wantErr: ErrInvalidColumn},
		{name: "bad placeholder", opts: []Option{WithLetter(&Letter{Body: "{{.Nope}}"})}, wantErr: ErrTemplate},
		{name: "bad date format", opts: []Option{WithLetter(&Letter{Body: "x", Date: "auto:[YYYY"})}, wantErr: ErrTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewGenerator(append(tt.opts, WithLogger(discardLogger()))...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewGenerator() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}

func TestGenerator_Engine(t *testing.T) {
	t.Parallel()

	gen := newMockGenerator(t, &mockRenderer{}, WithEngine("FPDF"))
	if gen.Engine() != EngineFPDF {
		t.Errorf("Engine() = %q, want %q", gen.Engine(), EngineFPDF)
	}
}

func TestGenerator_Close(t *testing.T) {
	t.Parallel()

	mock := &mockRenderer{}
	gen := newMockGenerator(t, mock)
	if err := gen.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.closed {
		t.Error("renderer was not closed")
	}
}

func TestGenerator_FPDFDeterministic(t *testing.T) {
	t.Parallel()

	gen, err := NewGenerator(WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	defer func() { _ = gen.Close() }()

	csv := csvOf(defaultHeader(),
		ownerRow("Jane Doe", "123 Main St", "Springfield", "CA", "94016"),
		ownerRow("José Núñez", "9 Elm St", "Shelbyville", "CA", "94017"),
	)
	branding := testBranding(t)

	first, err := gen.Generate(context.Background(), strings.NewReader(csv), branding)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := gen.Generate(context.Background(), strings.NewReader(csv), branding)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if !bytes.Equal(first.Archive, second.Archive) {
		t.Error("identical batches produced different archives")
	}
	for name, pdf := range readArchive(t, first.Archive) {
		if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
			t.Errorf("%s is not a PDF", name)
		}
	}
}

func TestGenerator_BadBrandingWarnsEveryRow(t *testing.T) {
	t.Parallel()

	gen, err := NewGenerator(WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	csv := csvOf(defaultHeader(), ownerRow("A", "1", "C", "S", "1"), ownerRow("B", "2", "C", "S", "2"))
	res, err := gen.Generate(context.Background(), strings.NewReader(csv), NewBranding(nil, nil))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(res.Entries) != 0 || len(res.Warnings) != 2 {
		t.Errorf("entries = %d, warnings = %d, want 0 and 2", len(res.Entries), len(res.Warnings))
	}
	for _, w := range res.Warnings {
		if !errors.Is(w.Err, ErrEmptyImage) {
			t.Errorf("warning = %v, want ErrEmptyImage", w)
		}
	}
}
