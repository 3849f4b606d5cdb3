package layout

// FlagBold is the style flag bit marking a bold span.
const FlagBold = 1 << 1

// Document is a decoded document navigable as pages → blocks → lines → spans.
type Document struct {
	Pages []Page
}

// Page is one page of a document, in reading order.
type Page struct {
	Number int     // 1-based position in the document
	Blocks []Block // Layout blocks; image or whitespace blocks have no lines
}

// Block is a layout block on a page.
type Block struct {
	Lines []Line
}

// Line is a run of spans sharing a baseline.
type Line struct {
	Spans []Span
}

// Span is a contiguous run of text with uniform font styling.
type Span struct {
	Text  string  // Raw text as extracted (not trimmed)
	Size  float64 // Font size in points
	Flags int     // Style flags; see FlagBold
	Font  string  // Font name, if the source exposes one
}

// HasText reports whether the block carries any line content.
func (b Block) HasText() bool {
	return len(b.Lines) > 0
}
