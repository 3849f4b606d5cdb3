// Package outline derives a title and H1–H3 heading outline from font-size
// statistics of a document's text spans.
package outline

// Level is a heading level label.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// levels is indexed by descending size rank.
var levels = []Level{H1, H2, H3}

// TextSpan is one trimmed, non-empty text run.
type TextSpan struct {
	Text     string
	FontSize float64
	Bold     bool
	Page     int
}

// Entry is one heading in the outline.
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Result is the outline of a single document.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Empty returns the result for a document without text.
func Empty() Result {
	return Result{Title: "", Outline: []Entry{}}
}
