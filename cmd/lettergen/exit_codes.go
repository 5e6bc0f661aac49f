package main

import (
	"errors"
	"os"

	"github.com/alnah/go-lettergen"
	"github.com/alnah/go-lettergen/internal/assets"
	"github.com/alnah/go-lettergen/internal/config"
	"github.com/alnah/go-lettergen/internal/fileutil"
	"github.com/alnah/go-lettergen/internal/server"
)

// Exit codes for the lettergen CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Archive written, every row produced a letter
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, letter or column mapping
	ExitIO      = 3 // Unreadable input, unwritable archive, address in use
	ExitBrowser = 4 // Chrome engine errors
	ExitPartial = 5 // Archive written, some rows skipped
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4), also when they failed every row
	if errors.Is(err, lettergen.ErrBrowserConnect) ||
		errors.Is(err, lettergen.ErrPageCreate) ||
		errors.Is(err, lettergen.ErrPageLoad) ||
		errors.Is(err, lettergen.ErrPDFGeneration) {
		return ExitBrowser
	}

	if errors.Is(err, ErrPartialBatch) {
		return ExitPartial
	}

	// Usage/config/validation errors (exit 2); a missing header is a mapping
	// problem even though it surfaces while reading the owner file
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, lettergen.ErrTemplate) ||
		errors.Is(err, lettergen.ErrInvalidEngine) ||
		errors.Is(err, lettergen.ErrInvalidColumn) ||
		errors.Is(err, lettergen.ErrMissingColumn) ||
		errors.Is(err, assets.ErrLetterNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteArchive) ||
		errors.Is(err, fileutil.ErrFileTooLarge) ||
		errors.Is(err, lettergen.ErrSourceRead) ||
		errors.Is(err, lettergen.ErrArchiveWrite) ||
		errors.Is(err, server.ErrListen) {
		return ExitIO
	}

	return ExitGeneral
}
