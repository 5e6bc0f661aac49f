package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-lettergen/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // LETTERGEN_CONFIG: config file name or path
	Engine     string // LETTERGEN_ENGINE: fpdf or chrome
	Timeout    string // LETTERGEN_TIMEOUT: per-letter Chrome timeout
	Addr       string // LETTERGEN_ADDR: serve listen address
	Output     string // LETTERGEN_OUTPUT: archive path for generate
	Workers    int    // LETTERGEN_WORKERS: concurrent server batches
}

// knownEnvVars lists valid LETTERGEN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"LETTERGEN_CONFIG":    true,
	"LETTERGEN_ENGINE":    true,
	"LETTERGEN_TIMEOUT":   true,
	"LETTERGEN_ADDR":      true,
	"LETTERGEN_OUTPUT":    true,
	"LETTERGEN_WORKERS":   true,
	"LETTERGEN_CONTAINER": true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Timeout is kept as text and checked with the rest of the config; an
// unparsable worker count is ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("LETTERGEN_CONFIG"),
		Engine:     getenv("LETTERGEN_ENGINE"),
		Timeout:    getenv("LETTERGEN_TIMEOUT"),
		Addr:       getenv("LETTERGEN_ADDR"),
		Output:     getenv("LETTERGEN_OUTPUT"),
	}

	if workers := getenv("LETTERGEN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized LETTERGEN_* variables.
// Helps catch typos like LETTERGEN_ENGIN instead of LETTERGEN_ENGINE.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, "LETTERGEN_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values over the loaded config.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeRenderFlags and the command flags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Engine != "" {
		cfg.Render.Engine = env.Engine
	}
	if env.Timeout != "" {
		cfg.Render.Timeout = env.Timeout
	}
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Output != "" {
		cfg.Output.Archive = env.Output
	}
}
