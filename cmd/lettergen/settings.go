package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alnah/go-lettergen"
	"github.com/alnah/go-lettergen/internal/assets"
	"github.com/alnah/go-lettergen/internal/config"
	"github.com/alnah/go-lettergen/internal/fileutil"
	"github.com/alnah/go-lettergen/internal/hints"
)

// loadSettings resolves the effective config:
// flags > env vars > config file > defaults.
func loadSettings(common commonFlags, render renderFlags, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(configSearchPaths(name)))
			}
			return nil, nil, err
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeRenderFlags(render, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, envCfg, nil
}

// mergeRenderFlags applies explicitly set render flags over cfg.
// A letter given as a file path is resolved later by resolveLetter.
func mergeRenderFlags(f renderFlags, cfg *config.Config) {
	if f.engine != "" {
		cfg.Render.Engine = f.engine
	}
	if f.timeout != "" {
		cfg.Render.Timeout = f.timeout
	}
	if f.letter != "" && !fileutil.IsFilePath(f.letter) {
		cfg.Letter.Name = f.letter
	}
	if f.date != "" {
		cfg.Letter.Date = f.date
	}
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
}

// configSearchPaths lists the user config locations tried for a config name.
func configSearchPaths(name string) []string {
	if fileutil.IsFilePath(name) {
		return nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-lettergen", name+".yaml")}
}

// generatorOptions translates the effective config into Generator options.
func generatorOptions(cfg *config.Config, letterFlag string, env *Environment, logger *slog.Logger) ([]lettergen.Option, error) {
	timeout, err := cfg.Render.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	letter, err := resolveLetter(letterFlag, cfg)
	if err != nil {
		return nil, err
	}

	opts := []lettergen.Option{
		lettergen.WithEngine(cfg.Render.Engine),
		lettergen.WithTimeout(timeout),
		lettergen.WithLetter(letter),
		lettergen.WithColumns(columnsFromConfig(cfg.Columns)),
		lettergen.WithNow(env.Now),
		lettergen.WithLogger(logger),
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, lettergen.WithAssetPath(cfg.Assets.BasePath))
	}
	return opts, nil
}

// resolveLetter loads the letter named in cfg, or the YAML file given with
// --letter, and applies the config's letter overrides over it.
func resolveLetter(letterFlag string, cfg *config.Config) (*lettergen.Letter, error) {
	if letterFlag == "" || !fileutil.IsFilePath(letterFlag) {
		l, err := lettergen.LetterFromConfig(cfg.Letter, cfg.Assets.BasePath)
		if errors.Is(err, assets.ErrLetterNotFound) {
			return nil, fmt.Errorf("%w%s", err, hints.ForLetterNotFound(assets.EmbeddedLetters()))
		}
		return l, err
	}

	data, err := fileutil.ReadFileLimit(letterFlag, int64(config.MaxInputSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	base, err := config.ParseLetter(data)
	if err != nil {
		return nil, fmt.Errorf("letter %s: %w", letterFlag, err)
	}

	merged := cfg.Letter.Merge(*base)
	l := &lettergen.Letter{
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

// columnsFromConfig overlays the configured columns on the default layout.
// Fields() lists the columns in lettergen.Field order.
func columnsFromConfig(cc config.ColumnsConfig) lettergen.ColumnMap {
	cols := lettergen.DefaultColumns()
	for i, f := range cc.Fields() {
		switch {
		case f.Column.Header != "":
			cols[i] = lettergen.Column{Header: f.Column.Header}
		case f.Column.Index != nil:
			cols[i] = lettergen.Column{Index: *f.Column.Index}
		}
	}
	return cols
}

// newLogger returns a text logger on w. Batch progress shows with --verbose;
// minLevel applies otherwise.
func newLogger(w io.Writer, common commonFlags, minLevel slog.Level) *slog.Logger {
	level := minLevel
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
