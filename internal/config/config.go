package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxLetterNameLength  = 64
	MaxTitleLength       = 200
	MaxDateLength        = 50    // "auto:MMMM D, YYYY" or a literal date
	MaxBodyLength        = 20000 // one-page letter body
	MaxClosingLines      = 20
	MaxClosingLineLength = 200
	MaxHeaderLength      = 100
	MaxColumnIndex       = 1000
	MaxArchiveLength     = 4096
	MaxAddrLength        = 255
	MaxUploadMBLimit     = 1024
)

// Defaults applied by DefaultConfig.
const (
	DefaultEngine      = "fpdf"
	DefaultTimeout     = 30 * time.Second
	DefaultArchiveName = "personalized_letters.zip"
	DefaultAddr        = ":8080"
	DefaultMaxUploadMB = 32
	DefaultLetterName  = "default"
)

// Config holds all configuration for a letter batch.
type Config struct {
	Letter  LetterConfig  `yaml:"letter"`
	Columns ColumnsConfig `yaml:"columns"`
	Render  RenderConfig  `yaml:"render"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
	Assets  AssetsConfig  `yaml:"assets"`
}

// LetterConfig selects the letter template and overrides its parts.
// Empty fields keep the value of the named letter asset.
type LetterConfig struct {
	Name    string   `yaml:"name"`    // letter asset name (default: "default")
	Title   string   `yaml:"title"`   // PDF title, {{.OwnerName}} allowed
	Date    string   `yaml:"date"`    // "", "auto", "auto:FORMAT" or literal
	Body    string   `yaml:"body"`    // Markdown body with placeholders
	Closing []string `yaml:"closing"` // sender block lines
}

// ColumnConfig locates one field, by header name or 0-based index.
// Header wins when both are set.
type ColumnConfig struct {
	Index  *int   `yaml:"index"`
	Header string `yaml:"header"`
}

// IsSet reports whether the column overrides the default position.
func (c ColumnConfig) IsSet() bool {
	return c.Index != nil || c.Header != ""
}

// ColumnsConfig maps the personalization fields to owner file columns.
// Unset fields keep their default position.
type ColumnsConfig struct {
	OwnerName  ColumnConfig `yaml:"ownerName"`
	Street     ColumnConfig `yaml:"street"`
	City       ColumnConfig `yaml:"city"`
	State      ColumnConfig `yaml:"state"`
	PostalCode ColumnConfig `yaml:"postalCode"`
}

// RenderConfig defines the PDF engine.
type RenderConfig struct {
	Engine  string `yaml:"engine"`  // "fpdf" (default) or "chrome"
	Timeout string `yaml:"timeout"` // per-letter Chrome timeout, e.g. "30s"
}

// TimeoutDuration parses Timeout, falling back to DefaultTimeout when empty.
func (r RenderConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: render.timeout %q: %v", ErrInvalidValue, r.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: render.timeout must be positive, got %s", ErrInvalidValue, r.Timeout)
	}
	return d, nil
}

// OutputConfig defines where the CLI writes the archive.
type OutputConfig struct {
	Archive string `yaml:"archive"` // archive path (default: personalized_letters.zip)
}

// ServerConfig defines the upload server.
type ServerConfig struct {
	Addr        string `yaml:"addr"`        // listen address (default: ":8080")
	MaxUploadMB int    `yaml:"maxUploadMB"` // multipart body cap (default: 32)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks field lengths and legal values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := c.Letter.Validate(); err != nil {
		return err
	}
	if err := c.Columns.Validate(); err != nil {
		return err
	}

	if c.Render.Engine != "" {
		switch strings.ToLower(c.Render.Engine) {
		case "fpdf", "chrome":
			// valid
		default:
			return fmt.Errorf("%w: render.engine %q (must be fpdf or chrome)", ErrInvalidValue, c.Render.Engine)
		}
	}
	if _, err := c.Render.TimeoutDuration(); err != nil {
		return err
	}

	if err := validateFieldLength("output.archive", c.Output.Archive, MaxArchiveLength); err != nil {
		return err
	}
	if c.Output.Archive != "" && !strings.EqualFold(filepath.Ext(c.Output.Archive), ".zip") {
		return fmt.Errorf("%w: output.archive %q must end in .zip", ErrInvalidValue, c.Output.Archive)
	}

	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.MaxUploadMB < 0 || c.Server.MaxUploadMB > MaxUploadMBLimit {
		return fmt.Errorf("%w: server.maxUploadMB must be between 0 and %d, got %d",
			ErrInvalidValue, MaxUploadMBLimit, c.Server.MaxUploadMB)
	}

	return nil
}

// Validate checks letter field lengths.
func (l *LetterConfig) Validate() error {
	if err := validateFieldLength("letter.name", l.Name, MaxLetterNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("letter.title", l.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("letter.date", l.Date, MaxDateLength); err != nil {
		return err
	}
	if err := validateFieldLength("letter.body", l.Body, MaxBodyLength); err != nil {
		return err
	}
	if len(l.Closing) > MaxClosingLines {
		return fmt.Errorf("%w: letter.closing has %d lines (max %d)", ErrInvalidValue, len(l.Closing), MaxClosingLines)
	}
	for i, line := range l.Closing {
		if err := validateFieldLength(fmt.Sprintf("letter.closing[%d]", i), line, MaxClosingLineLength); err != nil {
			return err
		}
	}
	return nil
}

// NamedColumn pairs a column with its YAML key.
type NamedColumn struct {
	Key    string
	Column ColumnConfig
}

// Fields lists the columns with their YAML keys, in record order.
func (c *ColumnsConfig) Fields() []NamedColumn {
	return []NamedColumn{
		{"ownerName", c.OwnerName},
		{"street", c.Street},
		{"city", c.City},
		{"state", c.State},
		{"postalCode", c.PostalCode},
	}
}

// Validate checks column indexes and header lengths.
func (c *ColumnsConfig) Validate() error {
	for _, f := range c.Fields() {
		if err := validateFieldLength("columns."+f.Key+".header", f.Column.Header, MaxHeaderLength); err != nil {
			return err
		}
		if idx := f.Column.Index; idx != nil && (*idx < 0 || *idx > MaxColumnIndex) {
			return fmt.Errorf("%w: columns.%s.index must be between 0 and %d, got %d",
				ErrInvalidValue, f.Key, MaxColumnIndex, *idx)
		}
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Letter: LetterConfig{Name: DefaultLetterName},
		Render: RenderConfig{Engine: DefaultEngine, Timeout: DefaultTimeout.String()},
		Output: OutputConfig{Archive: DefaultArchiveName},
		Server: ServerConfig{Addr: DefaultAddr, MaxUploadMB: DefaultMaxUploadMB},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decodeStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseLetter decodes a letter asset (same keys as the letter section).
func ParseLetter(data []byte) (*LetterConfig, error) {
	var l LetterConfig
	if err := decodeStrict(data, &l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Merge returns base with every non-empty field of l applied over it.
// Name is not carried: the result describes a concrete letter.
func (l LetterConfig) Merge(base LetterConfig) LetterConfig {
	out := base
	out.Name = ""
	if l.Title != "" {
		out.Title = l.Title
	}
	if l.Date != "" {
		out.Date = l.Date
	}
	if l.Body != "" {
		out.Body = l.Body
	}
	if len(l.Closing) > 0 {
		out.Closing = append([]string(nil), l.Closing...)
	}
	return out
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-lettergen/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-lettergen", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
