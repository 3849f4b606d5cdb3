package outline

import (
	"strings"

	"github.com/dgallion1/pdfoutline/internal/layout"
)

// Collect flattens a document into text spans in traversal order
// (page, then block, line and span order). Blocks without lines are skipped,
// and spans whose trimmed text is empty are dropped.
func Collect(doc *layout.Document) []TextSpan {
	if doc == nil {
		return nil
	}

	var spans []TextSpan
	for i, page := range doc.Pages {
		pageNum := page.Number
		if pageNum <= 0 {
			pageNum = i + 1
		}
		for _, block := range page.Blocks {
			if !block.HasText() {
				continue
			}
			for _, line := range block.Lines {
				for _, s := range line.Spans {
					text := strings.TrimSpace(s.Text)
					if text == "" {
						continue
					}
					spans = append(spans, TextSpan{
						Text:     text,
						FontSize: s.Size,
						Bold:     s.Flags&layout.FlagBold != 0,
						Page:     pageNum,
					})
				}
			}
		}
	}
	return spans
}
