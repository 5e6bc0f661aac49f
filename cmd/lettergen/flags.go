package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds letter and engine flags shared by generate and serve.
type renderFlags struct {
	engine    string
	timeout   string
	letter    string // name, or path to a letter YAML file
	date      string
	assetPath string
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common    commonFlags
	render    renderFlags
	output    string
	logo      string
	signature string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common      commonFlags
	render      renderFlags
	addr        string
	workers     int
	maxUploadMB int
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show batch progress")
}

// addRenderFlags adds engine and letter flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVarP(&f.engine, "engine", "e", "", "PDF engine: fpdf, chrome")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-letter Chrome timeout (e.g., 30s, 2m)")
	fs.StringVarP(&f.letter, "letter", "l", "", "letter name or YAML file path")
	fs.StringVar(&f.date, "date", "", "letter date: \"auto\", \"auto:FORMAT\", or literal")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string, stderr io.Writer) (*generateFlags, []string, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &generateFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "archive path (default: personalized_letters.zip)")
	fs.StringVar(&f.logo, "logo", "", "logo image (PNG or JPEG)")
	fs.StringVar(&f.signature, "signature", "", "signature image (PNG)")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printGenerateUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default: :8080)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent batches (0 = auto)")
	fs.IntVar(&f.maxUploadMB, "max-upload-mb", 0, "upload size cap in MiB (default: 32)")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
