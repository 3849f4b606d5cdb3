package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/pdfoutline/internal/layout"
	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/parser"
)

// Processor turns one document into its outline: parse → collect → build.
// It holds no per-document state and is safe for concurrent use.
type Processor struct {
	parserOpts  parser.Options
	outlineOpts outline.Options
	stats       *Stats
}

func NewProcessor(parserOpts parser.Options, outlineOpts outline.Options, stats *Stats) *Processor {
	return &Processor{
		parserOpts:  parserOpts,
		outlineOpts: outlineOpts,
		stats:       stats,
	}
}

// ProcessFile extracts the outline of the file at path.
func (p *Processor) ProcessFile(path string) (res outline.Result, err error) {
	start := time.Now()
	defer func() { p.stats.Record(time.Since(start), err) }()

	prs, err := parser.ForFile(path, p.parserOpts)
	if err != nil {
		return outline.Result{}, err
	}

	var doc *layout.Document
	if fp, ok := prs.(parser.FileParser); ok {
		doc, err = fp.ParseFile(path)
	} else {
		f, openErr := os.Open(path)
		if openErr != nil {
			return outline.Result{}, &parser.OpenError{Filename: path, Err: openErr}
		}
		defer f.Close()
		doc, err = prs.Parse(f, filepath.Base(path))
	}
	if err != nil {
		return outline.Result{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return outline.Build(outline.Collect(doc), p.outlineOpts), nil
}

// Process extracts the outline of a document read from r. The filename
// selects the parser.
func (p *Processor) Process(r io.Reader, filename string) (res outline.Result, err error) {
	start := time.Now()
	defer func() { p.stats.Record(time.Since(start), err) }()

	prs, err := parser.ForFile(filename, p.parserOpts)
	if err != nil {
		return outline.Result{}, err
	}
	doc, err := prs.Parse(r, filename)
	if err != nil {
		return outline.Result{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return outline.Build(outline.Collect(doc), p.outlineOpts), nil
}

// Stats returns the processor's extraction stats, which may be nil.
func (p *Processor) Stats() *Stats {
	return p.stats
}
