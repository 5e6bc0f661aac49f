package assets

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed letters/* styles/* templates/*
var embedded embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadLetter loads a letter definition from embedded assets by name.
func (e *EmbeddedLoader) LoadLetter(name string) (string, error) {
	return e.load(letterKind, name)
}

// LoadStyle loads a CSS style from embedded assets by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load(styleKind, name)
}

// LoadTemplate loads an HTML template from embedded assets by name.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load(templateKind, name)
}

func (e *EmbeddedLoader) load(kind assetKind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	// embed.FS always uses forward slashes
	content, err := embedded.ReadFile(kind.dir + "/" + name + kind.ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", kind.notFound, name)
	}

	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)

// EmbeddedLetters lists the built-in letter names, sorted.
func EmbeddedLetters() []string {
	entries, err := embedded.ReadDir(letterKind.dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), letterKind.ext); ok {
			names = append(names, name)
		}
	}
	return names
}
