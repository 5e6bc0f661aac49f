package main

// Notes:
// - loadEnvConfig: we read through an injected getenv, so tests run in parallel.
// - warnUnknownEnvVars: we test typo detection and that known vars don't warn.
// - applyEnvConfig: env values override the config file; empty values do not.

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alnah/go-lettergen/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	vars := map[string]string{
		"LETTERGEN_CONFIG":  "/etc/lettergen.yaml",
		"LETTERGEN_ENGINE":  "chrome",
		"LETTERGEN_TIMEOUT": "1m",
		"LETTERGEN_ADDR":    "127.0.0.1:9000",
		"LETTERGEN_OUTPUT":  "/tmp/out.zip",
		"LETTERGEN_WORKERS": "3",
	}
	cfg := loadEnvConfig(func(k string) string { return vars[k] })

	if cfg.ConfigPath != "/etc/lettergen.yaml" {
		t.Errorf("ConfigPath = %q", cfg.ConfigPath)
	}
	if cfg.Engine != "chrome" {
		t.Errorf("Engine = %q", cfg.Engine)
	}
	if cfg.Timeout != "1m" {
		t.Errorf("Timeout = %q", cfg.Timeout)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Output != "/tmp/out.zip" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
}

func TestLoadEnvConfig_InvalidWorkers(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"abc", "-2", "0"} {
		cfg := loadEnvConfig(func(k string) string {
			if k == "LETTERGEN_WORKERS" {
				return v
			}
			return ""
		})
		if cfg.Workers != 0 {
			t.Errorf("LETTERGEN_WORKERS=%q: Workers = %d, want 0", v, cfg.Workers)
		}
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"LETTERGEN_ENGIN=chrome",
		"LETTERGEN_ENGINE=chrome",
		"LETTERGEN_CONTAINER=1",
		"HOME=/root",
		"LETTERGEN_EMPTY=",
	})

	out := buf.String()
	if !strings.Contains(out, "unknown environment variable LETTERGEN_ENGIN ") {
		t.Errorf("missing typo warning: %q", out)
	}
	if !strings.Contains(out, "LETTERGEN_EMPTY") {
		t.Errorf("missing warning for empty unknown var: %q", out)
	}
	if strings.Count(out, "warning:") != 2 {
		t.Errorf("want 2 warnings, got %q", out)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env over config file
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("env overrides file values", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		cfg.Render.Engine = "fpdf"
		applyEnvConfig(&envConfig{Engine: "chrome", Timeout: "5s", Addr: ":9090", Output: "x.zip"}, cfg)

		if cfg.Render.Engine != "chrome" || cfg.Render.Timeout != "5s" {
			t.Errorf("Render = %+v", cfg.Render)
		}
		if cfg.Server.Addr != ":9090" {
			t.Errorf("Addr = %q", cfg.Server.Addr)
		}
		if cfg.Output.Archive != "x.zip" {
			t.Errorf("Archive = %q", cfg.Output.Archive)
		}
	})

	t.Run("empty env keeps file values", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		want := *cfg
		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Render != want.Render || cfg.Server != want.Server || cfg.Output != want.Output {
			t.Errorf("config changed: %+v", cfg)
		}
	})
}
