package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	r, err := NewAssetResolver("")
	if err != nil {
		t.Fatalf("NewAssetResolver(\"\") error = %v", err)
	}
	if r.HasCustomLoader() {
		t.Error("empty path should not configure a custom loader")
	}

	r, err = NewAssetResolver(t.TempDir())
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if !r.HasCustomLoader() {
		t.Error("custom loader not configured")
	}

	if _, err := NewAssetResolver("/nonexistent/path/abc123xyz"); !errors.Is(err, ErrInvalidBasePath) {
		t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
	}
}

func TestAssetResolver_Fallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeAsset(t, dir, "letters", DefaultLetterName+".yaml", "body: custom default")
	writeAsset(t, dir, "styles", "extra.css", "p {}")

	r, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	t.Run("custom overrides embedded", func(t *testing.T) {
		t.Parallel()

		got, err := r.LoadLetter(DefaultLetterName)
		if err != nil || got != "body: custom default" {
			t.Errorf("LoadLetter() = %q, %v", got, err)
		}
	})

	t.Run("missing custom falls back to embedded", func(t *testing.T) {
		t.Parallel()

		got, err := r.LoadTemplate(LetterPageTemplate)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if !strings.Contains(got, "{{.Body}}") {
			t.Error("fallback did not return the embedded page template")
		}
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Parallel()

		if _, err := r.LoadStyle("nowhere"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("LoadStyle() error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("invalid name does not fall back", func(t *testing.T) {
		t.Parallel()

		if _, err := r.LoadStyle("a/b"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestAssetResolver_ReadErrorDoesNotFallBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A directory where the style file should be makes the read fail
	if err := os.MkdirAll(filepath.Join(dir, "styles", DefaultStyleName+".css"), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	r, err := NewAssetResolver(dir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}
	if _, err := r.LoadStyle(DefaultStyleName); !errors.Is(err, ErrAssetRead) {
		t.Errorf("LoadStyle() error = %v, want ErrAssetRead", err)
	}
}
