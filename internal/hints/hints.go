// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-lettergen/internal/fileutil"
)

// maxListedHeaders caps the header names echoed back for a missing column.
const maxListedHeaders = 10

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for Chrome engine launch errors.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "or use --engine fpdf, which needs no browser")

	return formatHints(hints)
}

// ForTimeout returns a hint about raising the per-letter Chrome timeout.
func ForTimeout() string {
	return format("raise --timeout or render.timeout")
}

// ForConfigNotFound suggests --config and the user config location.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-lettergen") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for archive write errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForLetterNotFound lists the letters that can be used instead.
func ForLetterNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForImage describes the accepted branding formats.
func ForImage() string {
	return format("logo must be PNG or JPEG, signature must be PNG")
}

// ForMissingColumn echoes the header row so a misspelled column name is easy
// to spot.
func ForMissingColumn(header []string) string {
	if len(header) == 0 {
		return ""
	}
	listed := header
	suffix := ""
	if len(listed) > maxListedHeaders {
		listed = listed[:maxListedHeaders]
		suffix = fmt.Sprintf(", ... (%d more)", len(header)-maxListedHeaders)
	}
	quoted := make([]string, len(listed))
	for i, h := range listed {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	return format("file headers: " + strings.Join(quoted, ", ") + suffix)
}

// ForPartialBatch points at the per-row warnings after a partial batch.
func ForPartialBatch(failed, total int) string {
	if failed == 0 {
		return ""
	}
	return format(fmt.Sprintf("%d of %d rows produced no letter; see warnings above", failed, total))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
