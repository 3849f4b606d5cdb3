package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/layout"
	"github.com/fumiama/go-docx"
)

// defaultDocxSize is Word's default body size in points.
const defaultDocxSize = 11

// docxHeadingSizes are Word's built-in heading sizes in points, by level.
var docxHeadingSizes = map[int]float64{1: 16, 2: 13, 3: 12, 4: 11.5, 5: 11.25, 6: 11.1}

// DOCXParser handles .docx files. Every paragraph becomes a block with a
// single line, every run a span. DOCX has no fixed pagination, so all text is
// reported on page 1.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*layout.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "pdfoutline-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, &OpenError{Filename: filename, Err: fmt.Errorf("parse docx: %w", err)}
	}

	page := layout.Page{Number: 1}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		spans := docxParagraphSpans(para)
		if len(spans) == 0 {
			page.Blocks = append(page.Blocks, layout.Block{})
			continue
		}
		page.Blocks = append(page.Blocks, layout.Block{Lines: []layout.Line{{Spans: spans}}})
	}

	return &layout.Document{Pages: []layout.Page{page}}, nil
}

func docxParagraphSpans(para *docx.Paragraph) []layout.Span {
	level := docxHeadingLevel(para)
	var spans []layout.Span
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var buf strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
		if buf.Len() == 0 {
			continue
		}
		size, flags := docxRunStyle(run, level)
		if n := len(spans); n > 0 && spans[n-1].Size == size && spans[n-1].Flags == flags {
			spans[n-1].Text += buf.String()
			continue
		}
		spans = append(spans, layout.Span{Text: buf.String(), Size: size, Flags: flags})
	}
	return spans
}

// docxRunStyle resolves a run's size in points and its style flags. Runs
// without an explicit size inherit the paragraph's heading size, if any.
func docxRunStyle(run *docx.Run, headingLevel int) (float64, int) {
	size := float64(defaultDocxSize)
	flags := 0
	if s, ok := docxHeadingSizes[headingLevel]; ok {
		size = s
		flags = layout.FlagBold
	}

	props := run.RunProperties
	if props == nil {
		return size, flags
	}
	if props.Size != nil {
		// w:sz is in half-points.
		if half, err := strconv.ParseFloat(props.Size.Val, 64); err == nil && half > 0 {
			size = half / 2
		}
	}
	if props.Bold != nil {
		flags |= layout.FlagBold
	}
	return size, flags
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	if n, ok := strings.CutPrefix(style, "heading"); ok {
		if level, err := strconv.Atoi(n); err == nil && level >= 1 && level <= 6 {
			return level
		}
	}
	return 0
}
