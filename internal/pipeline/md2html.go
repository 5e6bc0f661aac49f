package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// listBullet prefixes the first line of each list item in text blocks.
const listBullet = "• "

// Span is a run of text sharing one font style.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
}

// Block is one paragraph-level unit of the letter: a list of visual lines,
// each line a sequence of styled spans. Lines come from hard line breaks;
// soft breaks are folded into spaces.
type Block struct {
	Lines [][]Span
}

// PlainText returns the block text without styling, lines joined by "\n".
func (b Block) PlainText() string {
	lines := make([]string, len(b.Lines))
	for i, line := range b.Lines {
		var sb strings.Builder
		for _, s := range line {
			sb.WriteString(s.Text)
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// BlockConverter abstracts Markdown to styled text block conversion.
type BlockConverter interface {
	ToBlocks(ctx context.Context, content string) ([]Block, error)
}

// GoldmarkConverter converts letter Markdown using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter for CommonMark letters.
// Raw HTML in templates is dropped by the renderer.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithRendererOptions(
			html.WithXHTML(), // Self-closing tags
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

// ToBlocks parses Markdown content into styled text blocks.
// Strong emphasis maps to bold, emphasis to italic and headings to bold lines.
func (c *GoldmarkConverter) ToBlocks(ctx context.Context, content string) ([]Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := []byte(content)
	doc := c.md.Parser().Parse(text.NewReader(src))

	w := &blockWalker{src: src}
	w.walkBlocks(doc)
	return w.blocks, nil
}

// blockWalker accumulates blocks while descending the goldmark AST.
type blockWalker struct {
	src    []byte
	blocks []Block
	prefix string // pending list bullet for the next block
}

func (w *blockWalker) walkBlocks(n ast.Node) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch v := child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			w.inlineBlock(v, span{})
		case *ast.Heading:
			w.inlineBlock(v, span{bold: true})
		case *ast.ListItem:
			w.prefix = listBullet
			w.walkBlocks(v)
			w.prefix = ""
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			w.codeBlock(v)
		case *ast.ThematicBreak, *ast.HTMLBlock:
			// nothing to print
		default:
			w.walkBlocks(v)
		}
	}
}

// span is the inherited inline style while walking.
type span struct {
	bold, italic bool
}

func (w *blockWalker) inlineBlock(n ast.Node, style span) {
	b := &Block{Lines: [][]Span{nil}}
	if w.prefix != "" {
		b.add(Span{Text: w.prefix})
		w.prefix = ""
	}
	w.walkInline(n, style, b)
	w.blocks = append(w.blocks, *b)
}

func (w *blockWalker) codeBlock(n ast.Node) {
	b := Block{}
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(w.src)), "\n")
		b.Lines = append(b.Lines, []Span{{Text: line}})
	}
	if len(b.Lines) > 0 {
		w.blocks = append(w.blocks, b)
	}
}

func (w *blockWalker) walkInline(n ast.Node, style span, b *Block) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch v := child.(type) {
		case *ast.Text:
			b.add(Span{Text: inlineText(v.Segment.Value(w.src)), Bold: style.bold, Italic: style.italic})
			switch {
			case v.HardLineBreak():
				b.newLine()
			case v.SoftLineBreak():
				b.add(Span{Text: " ", Bold: style.bold, Italic: style.italic})
			}
		case *ast.String:
			b.add(Span{Text: string(v.Value), Bold: style.bold, Italic: style.italic})
		case *ast.Emphasis:
			inner := style
			if v.Level >= 2 {
				inner.bold = true
			} else {
				inner.italic = true
			}
			w.walkInline(v, inner, b)
		case *ast.AutoLink:
			b.add(Span{Text: string(v.Label(w.src)), Bold: style.bold, Italic: style.italic})
		case *ast.RawHTML:
			// dropped, as in HTML output
		default:
			w.walkInline(v, style, b)
		}
	}
}

// inlineText resolves backslash escapes and character references in one left
// to right pass, the way goldmark's HTML writer does: an escaped "\\&" is a
// literal ampersand and never starts a reference.
func inlineText(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\' && i+1 < len(raw) && util.IsPunct(raw[i+1]):
			b.WriteByte(raw[i+1])
			i++
		case c == '&':
			if ref, n := characterReference(raw[i:]); n > 0 {
				b.Write(ref)
				i += n - 1
				continue
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// maxReferenceLength bounds the "&...;" run tried as a character reference.
const maxReferenceLength = 32

// characterReference decodes the entity or numeric reference at the start of
// s and returns its text and the bytes consumed, or n == 0 when s does not
// start with one.
func characterReference(s []byte) (ref []byte, n int) {
	end := bytes.IndexByte(s, ';')
	if end < 2 || end > maxReferenceLength {
		return nil, 0
	}
	candidate := s[:end+1]
	if bytes.ContainsAny(candidate[1:], "&\\ ") {
		return nil, 0
	}
	resolved := util.ResolveEntityNames(util.ResolveNumericReferences(candidate))
	if bytes.Equal(resolved, candidate) {
		return nil, 0
	}
	return resolved, len(candidate)
}

// add appends a span to the current line, merging with the previous span when
// the style matches.
func (b *Block) add(s Span) {
	if s.Text == "" {
		return
	}
	last := len(b.Lines) - 1
	line := b.Lines[last]
	if n := len(line); n > 0 && line[n-1].Bold == s.Bold && line[n-1].Italic == s.Italic {
		line[n-1].Text += s.Text
		return
	}
	b.Lines[last] = append(line, s)
}

func (b *Block) newLine() {
	b.Lines = append(b.Lines, nil)
}
