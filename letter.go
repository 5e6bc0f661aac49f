package lettergen

import (
	"fmt"

	"github.com/alnah/go-lettergen/internal/assets"
	"github.com/alnah/go-lettergen/internal/config"
)

// DefaultLetter returns the built-in seller outreach letter.
func DefaultLetter() *Letter {
	l, err := LoadLetter(assets.DefaultLetterName, "")
	if err != nil {
		panic("lettergen: embedded default letter is invalid: " + err.Error())
	}
	return l
}

// LoadLetter loads a letter by name from assetPath, falling back to the
// embedded letters. An empty assetPath uses embedded letters only.
func LoadLetter(name, assetPath string) (*Letter, error) {
	return LetterFromConfig(config.LetterConfig{Name: name}, assetPath)
}

// LetterFromConfig loads the letter named by lc (default when empty) and
// applies the non-empty fields of lc over it.
func LetterFromConfig(lc config.LetterConfig, assetPath string) (*Letter, error) {
	loader, err := assets.NewAssetResolver(assetPath)
	if err != nil {
		return nil, err
	}

	name := lc.Name
	if name == "" {
		name = assets.DefaultLetterName
	}
	raw, err := loader.LoadLetter(name)
	if err != nil {
		return nil, err
	}
	base, err := config.ParseLetter([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: letter %q: %v", ErrTemplate, name, err)
	}

	merged := lc.Merge(*base)
	l := &Letter{
		Title:   merged.Title,
		Date:    merged.Date,
		Body:    merged.Body,
		Closing: merged.Closing,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}
