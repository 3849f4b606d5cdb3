package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/layout"
)

// Parser converts raw document bytes into a layout document.
type Parser interface {
	Parse(r io.Reader, filename string) (*layout.Document, error)
}

// FileParser is implemented by parsers that can read a file in place
// instead of copying it from a reader.
type FileParser interface {
	ParseFile(path string) (*layout.Document, error)
}

// ErrUnsupported is returned for file extensions no parser handles.
var ErrUnsupported = errors.New("unsupported file extension")

// OpenError reports a document that could not be opened or decoded.
type OpenError struct {
	Filename string
	Err      error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Filename, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// IsOpenError checks if err was caused by an unreadable document.
func IsOpenError(err error) bool {
	var openErr *OpenError
	return errors.As(err, &openErr)
}

// Options configures parser selection.
type Options struct {
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
