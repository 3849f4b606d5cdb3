package parser

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/layout"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*layout.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "pdfoutline-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := p.parsePath(tmpPath)
	if err != nil {
		return nil, &OpenError{Filename: filename, Err: err}
	}
	return doc, nil
}

func (p *PDFParser) ParseFile(path string) (*layout.Document, error) {
	doc, err := p.parsePath(path)
	if err != nil {
		return nil, &OpenError{Filename: path, Err: err}
	}
	return doc, nil
}

func (p *PDFParser) parsePath(path string) (*layout.Document, error) {
	doc, err := extractPDFLayout(path)
	if err != nil && p.FallbackPdftotext {
		var fbErr error
		doc, fbErr = extractPdftotextLayout(path)
		if fbErr != nil {
			return nil, fmt.Errorf("extract pdf layout: %w (pdftotext: %v)", err, fbErr)
		}
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf layout: %w", err)
	}
	return doc, nil
}

func extractPDFLayout(path string) (doc *layout.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc = &layout.Document{}
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := layout.Page{Number: i}
		p := reader.Page(i)
		if !p.V.IsNull() {
			glyphs, err := pageGlyphs(p, i)
			if err != nil {
				return nil, err
			}
			page.Blocks = groupGlyphs(glyphs)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// glyph is a single positioned text fragment as drawn on a page.
type glyph struct {
	font string
	size float64
	x, y float64
	w    float64
	s    string
}

// pageGlyphs reads the drawn text of a page. The pdf library panics on
// malformed content streams, so panics are returned as errors.
func pageGlyphs(p pdflib.Page, num int) (glyphs []glyph, err error) {
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = fmt.Errorf("page %d: %v", num, r)
		}
	}()

	for _, t := range p.Content().Text {
		glyphs = append(glyphs, glyph{
			font: t.Font,
			size: roundSize(t.FontSize),
			x:    t.X,
			y:    t.Y,
			w:    t.W,
			s:    t.S,
		})
	}
	return glyphs, nil
}

// roundSize trims matrix arithmetic noise so glyphs set in the same font
// size compare equal.
func roundSize(v float64) float64 {
	return math.Round(math.Abs(v)*100) / 100
}

const (
	// wordGapRatio is the horizontal gap, relative to font size, read as a space.
	wordGapRatio = 0.25
	// blockGapRatio is the vertical gap, relative to font size, that starts a new block.
	blockGapRatio = 1.5
)

type glyphRow struct {
	y      float64
	size   float64
	glyphs []glyph
}

// groupGlyphs arranges glyphs into blocks of lines of spans: glyphs sharing a
// baseline form a line (top to bottom, left to right), consecutive glyphs with
// the same font and size form a span, and large vertical gaps separate blocks.
func groupGlyphs(glyphs []glyph) []layout.Block {
	if len(glyphs) == 0 {
		return nil
	}

	rowsByKey := make(map[int64]*glyphRow)
	var rows []*glyphRow
	for _, g := range glyphs {
		key := int64(math.Round(g.y))
		row, ok := rowsByKey[key]
		if !ok {
			row = &glyphRow{y: g.y}
			rowsByKey[key] = row
			rows = append(rows, row)
		}
		row.glyphs = append(row.glyphs, g)
		if g.size > row.size {
			row.size = g.size
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	var blocks []layout.Block
	var current layout.Block
	var prev *glyphRow
	for _, row := range rows {
		sort.SliceStable(row.glyphs, func(i, j int) bool { return row.glyphs[i].x < row.glyphs[j].x })
		line := layout.Line{Spans: rowSpans(row.glyphs)}

		if prev != nil && prev.y-row.y > blockGapRatio*math.Max(prev.size, row.size) {
			blocks = append(blocks, current)
			current = layout.Block{}
		}
		current.Lines = append(current.Lines, line)
		prev = row
	}
	if len(current.Lines) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func rowSpans(glyphs []glyph) []layout.Span {
	var spans []layout.Span
	var sb strings.Builder
	var cur glyph
	var end float64

	flush := func() {
		if sb.Len() == 0 {
			return
		}
		spans = append(spans, layout.Span{
			Text:  sb.String(),
			Size:  cur.size,
			Flags: fontFlags(cur.font),
			Font:  cur.font,
		})
		sb.Reset()
	}

	for i, g := range glyphs {
		if i == 0 || g.font != cur.font || g.size != cur.size {
			flush()
			cur = g
		} else if g.x-end > wordGapRatio*g.size && !strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(g.s, " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.s)
		w := g.w
		if w <= 0 {
			w = 0.5 * g.size * float64(len([]rune(g.s)))
		}
		end = g.x + w
	}
	flush()
	return spans
}

var boldMarkers = []string{"bold", "black", "heavy", "semibold", "demi"}

// fontFlags derives style flags from a font's base name, e.g. "ABCDEF+Arial-BoldMT".
func fontFlags(font string) int {
	name := strings.ToLower(font)
	for _, m := range boldMarkers {
		if strings.Contains(name, m) {
			return layout.FlagBold
		}
	}
	return 0
}
