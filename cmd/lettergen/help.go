package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lettergen <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Build an archive of letters from an owner file")
	fmt.Fprintln(w, "  serve      Run the upload server")
	fmt.Fprintln(w, "  doctor     Check the Chrome engine setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'lettergen help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lettergen generate <owners.csv> --logo <file> --signature <file> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render one letter per owner row and write them to a ZIP archive.")
	fmt.Fprintln(w, "Rows that cannot be used are skipped with a warning.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "      --logo <path>         Logo image (PNG or JPEG), required")
	fmt.Fprintln(w, "      --signature <path>    Signature image (PNG), required")
	fmt.Fprintln(w, "  -o, --output <path>       Archive path (default: personalized_letters.zip)")
	printRenderFlags(w)
	printCommonFlags(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 all rows written, 1 error, 2 usage or config, 3 I/O,")
	fmt.Fprintln(w, "  4 browser, 5 archive written with skipped rows")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lettergen serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve an upload form at / and accept owner files at POST /letters.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default: :8080)")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent batches (0 = auto)")
	fmt.Fprintln(w, "      --max-upload-mb <n>   Upload size cap in MiB (default: 32)")
	printRenderFlags(w)
	printCommonFlags(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lettergen doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that a Chrome/Chromium browser is available for --engine chrome.")
	fmt.Fprintln(w, "The default fpdf engine needs no browser.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

func printRenderFlags(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Letter:")
	fmt.Fprintln(w, "  -e, --engine <s>          PDF engine: fpdf (default), chrome")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-letter Chrome timeout (e.g., 30s)")
	fmt.Fprintln(w, "  -l, --letter <s>          Letter name or YAML file path")
	fmt.Fprintln(w, "      --date <s>            Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom letters, templates and styles")
}

func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show batch progress")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  LETTERGEN_CONFIG, LETTERGEN_ENGINE, LETTERGEN_TIMEOUT,")
	fmt.Fprintln(w, "  LETTERGEN_ADDR, LETTERGEN_OUTPUT, LETTERGEN_WORKERS")
	fmt.Fprintln(w, "  A .env file in the working directory is loaded first.")
}

// runHelp prints help for a command and returns an exit code.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: lettergen version")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: lettergen help [command]")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
