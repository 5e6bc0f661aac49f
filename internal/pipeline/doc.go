// Package pipeline turns the Markdown letter template into renderable form.
//
// The letter body goes through three stages:
//   - text preprocessing (line ending normalization, placeholder escaping)
//   - Markdown parsing via Goldmark
//   - output for an engine: styled text blocks for the fpdf engine, or an
//     HTML fragment wrapped in a print-ready page for the Chrome engine
//
// Page geometry and PDF output belong to the root lettergen package.
package pipeline
