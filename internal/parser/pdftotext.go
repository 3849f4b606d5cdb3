package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/layout"
	"golang.org/x/net/html"
)

// extractPdftotextLayout runs poppler's pdftotext in bounding-box mode and
// rebuilds the page/block/line/word structure from its XHTML output.
func extractPdftotextLayout(path string) (*layout.Document, error) {
	cmd := exec.Command("pdftotext", "-bbox-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return parseBBoxLayout(bytes.NewReader(out))
}

type bboxWord struct {
	text string
	size float64
}

// parseBBoxLayout parses `pdftotext -bbox-layout` output. A word's font size is
// approximated by its box height; consecutive words of equal height in a line
// are joined into one span.
func parseBBoxLayout(r io.Reader) (*layout.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bbox layout: %w", err)
	}

	doc := &layout.Document{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "page":
				doc.Pages = append(doc.Pages, layout.Page{Number: len(doc.Pages) + 1})
			case "block":
				if len(doc.Pages) > 0 {
					p := &doc.Pages[len(doc.Pages)-1]
					p.Blocks = append(p.Blocks, layout.Block{})
				}
			case "line":
				if b := lastBlock(doc); b != nil {
					b.Lines = append(b.Lines, lineFromWords(lineWords(n)))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return doc, nil
}

func lastBlock(doc *layout.Document) *layout.Block {
	if len(doc.Pages) == 0 {
		return nil
	}
	p := &doc.Pages[len(doc.Pages)-1]
	if len(p.Blocks) == 0 {
		return nil
	}
	return &p.Blocks[len(p.Blocks)-1]
}

func lineWords(line *html.Node) []bboxWord {
	var words []bboxWord
	for c := line.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "word" {
			continue
		}
		yMin := attrFloat(c, "ymin")
		yMax := attrFloat(c, "ymax")
		words = append(words, bboxWord{
			text: textContent(c),
			size: math.Round((yMax-yMin)*100) / 100,
		})
	}
	return words
}

func lineFromWords(words []bboxWord) layout.Line {
	var line layout.Line
	for _, w := range words {
		if n := len(line.Spans); n > 0 && line.Spans[n-1].Size == w.size {
			line.Spans[n-1].Text += " " + w.text
			continue
		}
		line.Spans = append(line.Spans, layout.Span{Text: w.text, Size: w.size})
	}
	return line
}

// attrFloat reads a numeric attribute. The HTML parser lowercases attribute names.
func attrFloat(n *html.Node, key string) float64 {
	for _, a := range n.Attr {
		if a.Key == key {
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err != nil {
				return 0
			}
			return v
		}
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
