package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-lettergen"
	"github.com/alnah/go-lettergen/internal/fileutil"
	"github.com/alnah/go-lettergen/internal/hints"
)

// Sentinel errors for the generate command.
var (
	ErrUsage        = errors.New("invalid usage")
	ErrNoInput      = errors.New("no owner file specified")
	ErrReadInput    = errors.New("failed to read input file")
	ErrWriteArchive = errors.New("failed to write archive")
	ErrPartialBatch = errors.New("batch incomplete")
)

// Read limits for the generate inputs.
const (
	maxOwnerFileSize = 64 << 20
	maxImageSize     = 16 << 20
)

// archivePermissions is the mode of the written archive.
const archivePermissions = 0o644

// runGenerate reads an owner file and branding images, renders the letters
// and writes the archive. The archive is written even when some rows fail;
// the returned ErrPartialBatch then carries the count.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(positional) == 0 {
		return ErrNoInput
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected one owner file, got %d", ErrUsage, len(positional))
	}
	if flags.logo == "" || flags.signature == "" {
		return fmt.Errorf("%w: --logo and --signature are required", ErrUsage)
	}

	cfg, _, err := loadSettings(flags.common, flags.render, env)
	if err != nil {
		return err
	}
	output := cfg.Output.Archive
	if flags.output != "" {
		output = flags.output
	}

	logger := newLogger(env.Stderr, flags.common, slog.LevelError)
	opts, err := generatorOptions(cfg, flags.render.letter, env, logger)
	if err != nil {
		return err
	}
	if !flags.common.quiet && !flags.common.verbose {
		opts = append(opts, lettergen.WithWarningHandler(func(w lettergen.Warning) {
			fmt.Fprintf(env.Stderr, "warning: %s\n", w)
		}))
	}

	owners, err := readInput(positional[0], maxOwnerFileSize)
	if err != nil {
		return err
	}
	logo, err := readInput(flags.logo, maxImageSize)
	if err != nil {
		return err
	}
	signature, err := readInput(flags.signature, maxImageSize)
	if err != nil {
		return err
	}

	gen, err := lettergen.NewGenerator(opts...)
	if err != nil {
		return err
	}
	defer func() { _ = gen.Close() }()

	start := time.Now()
	res, err := gen.Generate(ctx, bytes.NewReader(owners), lettergen.NewBranding(logo, signature))
	if err != nil {
		if errors.Is(err, lettergen.ErrMissingColumn) {
			return fmt.Errorf("%w%s", err, hints.ForMissingColumn(readHeader(owners)))
		}
		return err
	}

	if err := fileutil.WriteFileAtomic(output, res.Archive, archivePermissions); err != nil {
		return fmt.Errorf("%w: %v%s", ErrWriteArchive, err, hints.ForOutputDirectory())
	}

	if !flags.common.quiet {
		printSummary(env.Stdout, res, output, time.Since(start), flags.common.verbose)
	}

	return batchError(res)
}

// readInput reads a file named on the command line.
func readInput(path string, limit int64) ([]byte, error) {
	data, err := fileutil.ReadFileLimit(path, limit)
	if err != nil {
		if errors.Is(err, fileutil.ErrFileTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return data, nil
}

// readHeader returns the header row of an owner file, or nil.
func readHeader(owners []byte) []string {
	r := csv.NewReader(bytes.NewReader(owners))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil
	}
	return header
}

// printSummary reports what was written.
func printSummary(w io.Writer, res *lettergen.Result, output string, elapsed time.Duration, verbose bool) {
	fmt.Fprintf(w, "Wrote %d letters to %s", len(res.Entries), output)
	if res.Partial() {
		fmt.Fprintf(w, " (%d of %d rows skipped)", len(res.Warnings), res.Rows)
	}
	if verbose {
		fmt.Fprintf(w, " in %s", elapsed.Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}

// batchError returns ErrPartialBatch when rows were skipped. When no row
// produced a letter, the first row's cause is wrapped as well so its exit
// code applies.
func batchError(res *lettergen.Result) error {
	if !res.Partial() {
		return nil
	}

	hint := hints.ForPartialBatch(len(res.Warnings), res.Rows) + causeHint(res.Warnings)
	if len(res.Entries) == 0 {
		return fmt.Errorf("%w: no row produced a letter: %w%s", ErrPartialBatch, res.Warnings[0].Err, hint)
	}
	return fmt.Errorf("%w: %d of %d rows skipped%s", ErrPartialBatch, len(res.Warnings), res.Rows, hint)
}

// causeHint returns one hint for the first row failure that has one.
func causeHint(warnings []lettergen.Warning) string {
	for _, w := range warnings {
		switch {
		case errors.Is(w.Err, lettergen.ErrBrowserConnect):
			return hints.ForBrowserConnect()
		case errors.Is(w.Err, lettergen.ErrPageLoad), errors.Is(w.Err, context.DeadlineExceeded):
			return hints.ForTimeout()
		case errors.Is(w.Err, lettergen.ErrInvalidImage),
			errors.Is(w.Err, lettergen.ErrUnsupportedImage),
			errors.Is(w.Err, lettergen.ErrEmptyImage):
			return hints.ForImage()
		}
	}
	return ""
}
