// Package dateutil resolves the "auto" date values used in letter templates.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when "auto" is specified without a format.
// Letters carry a spelled-out date.
const DefaultDateFormat = "MMMM D, YYYY"

// Presets provides named shortcuts for common date formats.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// token renders one date component.
type token struct {
	name   string
	render func(time.Time) string
}

// tokens are matched longest first.
var tokens = []token{
	{"YYYY", func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) }},
	{"MMMM", func(t time.Time) string { return t.Month().String() }},
	{"MMM", func(t time.Time) string { return t.Month().String()[:3] }},
	{"MM", func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) }},
	{"DD", func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) }},
	{"M", func(t time.Time) string { return strconv.Itoa(int(t.Month())) }},
	{"D", func(t time.Time) string { return strconv.Itoa(t.Day()) }},
}

// part is either a literal or a token renderer.
type part struct {
	literal string
	render  func(time.Time) string
}

// Layout is a compiled date format. Literal text is copied as is, so digits
// and month names in the format never act as layout directives.
type Layout struct {
	parts []part
}

// Compile parses a user-friendly format.
// Tokens: YYYY, MMMM, MMM, MM, M, DD, D. Text in brackets is literal:
// "[Day] D" renders "Day 7".
func Compile(format string) (Layout, error) {
	if format == "" {
		return Layout{}, fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return Layout{}, fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var l Layout
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			l.parts = append(l.parts, part{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return Layout{}, fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			lit.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		tok, ok := matchToken(format[i:])
		if !ok {
			lit.WriteByte(format[i])
			i++
			continue
		}
		flush()
		l.parts = append(l.parts, part{render: tok.render})
		i += len(tok.name)
	}
	flush()

	return l, nil
}

func matchToken(s string) (token, bool) {
	for _, tok := range tokens {
		if strings.HasPrefix(s, tok.name) {
			return tok, true
		}
	}
	return token{}, false
}

// Format renders t with the layout.
func (l Layout) Format(t time.Time) string {
	var sb strings.Builder
	for _, p := range l.parts {
		if p.render != nil {
			sb.WriteString(p.render(t))
		} else {
			sb.WriteString(p.literal)
		}
	}
	return sb.String()
}

// IsAuto reports whether value asks for the current date.
func IsAuto(value string) bool {
	lower := strings.ToLower(value)
	return lower == "auto" || strings.HasPrefix(lower, "auto:")
}

// Resolve expands "auto" and "auto:FORMAT" date values at now:
//   - "auto" uses DefaultDateFormat
//   - "auto:FORMAT" uses FORMAT, or a preset name (iso, european, us, long)
//   - any other value is returned unchanged
func Resolve(value string, now time.Time) (string, error) {
	if !IsAuto(value) {
		if strings.HasPrefix(strings.ToLower(value), "auto") {
			return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
		}
		return value, nil
	}

	format := DefaultDateFormat
	if len(value) > len("auto") {
		format = value[len("auto:"):] // keep case: tokens are upper case
		if format == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		if preset, ok := Presets[strings.ToLower(format)]; ok {
			format = preset
		}
	}

	layout, err := Compile(format)
	if err != nil {
		return "", err
	}
	return layout.Format(now), nil
}
