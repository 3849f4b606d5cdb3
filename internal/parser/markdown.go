package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/layout"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownBodySize is the rendered body size in points.
const markdownBodySize = 16

// markdownHeadingSizes follow the default browser heading scale.
var markdownHeadingSizes = map[int]float64{1: 32, 2: 24, 3: 18.72, 4: 16, 5: 13.28, 6: 10.72}

// MarkdownParser handles Markdown files using goldmark. Text is sized the way
// a browser renders it by default, on a single page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*layout.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, &OpenError{Filename: filename, Err: err}
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	page := layout.Page{Number: 1}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := extractText(node, src)
			if title == "" {
				continue
			}
			page.Blocks = append(page.Blocks, layout.Block{Lines: []layout.Line{{
				Spans: []layout.Span{{Text: title, Size: markdownHeadingSizes[node.Level], Flags: layout.FlagBold}},
			}}})
		case *ast.ThematicBreak:
			page.Blocks = append(page.Blocks, layout.Block{})
		default:
			t := extractText(n, src)
			if t == "" {
				continue
			}
			var block layout.Block
			for _, l := range strings.Split(t, "\n") {
				block.Lines = append(block.Lines, layout.Line{
					Spans: []layout.Span{{Text: l, Size: markdownBodySize}},
				})
			}
			page.Blocks = append(page.Blocks, block)
		}
	}

	return &layout.Document{Pages: []layout.Page{page}}, nil
}

// extractText gets the text content of a goldmark AST node. Nested blocks
// are separated by newlines.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch {
		case c.Kind() == ast.KindText:
			t := c.(*ast.Text)
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case c.Type() == ast.TypeBlock:
			s := extractText(c, src)
			if s == "" {
				continue
			}
			if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		default:
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
