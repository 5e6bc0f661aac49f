package pipeline

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
)

// NormalizeMarkdown prepares template Markdown for parsing.
func NormalizeMarkdown(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// EscapeMarkdown makes a substituted value inert: every ASCII punctuation
// character is backslash-escaped and line breaks collapse to spaces, so owner
// data from a spreadsheet can never open emphasis, links or new blocks.
func EscapeMarkdown(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 8)
	for _, r := range value {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < 0x80 && isASCIIPunct(byte(r)):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') ||
		(c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}
