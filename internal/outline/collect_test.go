package outline

import (
	"reflect"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/layout"
)

func line(spans ...layout.Span) layout.Line {
	return layout.Line{Spans: spans}
}

func TestCollect_NilDocument(t *testing.T) {
	if got := Collect(nil); len(got) != 0 {
		t.Errorf("expected no spans, got %d", len(got))
	}
}

func TestCollect_SkipsLinelessBlocksAndEmptyText(t *testing.T) {
	doc := &layout.Document{Pages: []layout.Page{
		{Number: 1, Blocks: []layout.Block{
			{}, // image block
			{Lines: []layout.Line{line(
				layout.Span{Text: "  Heading  ", Size: 20, Flags: layout.FlagBold},
				layout.Span{Text: "   ", Size: 20},
				layout.Span{Text: "", Size: 9},
			)}},
		}},
		{Number: 2, Blocks: []layout.Block{
			{Lines: []layout.Line{
				line(layout.Span{Text: "body", Size: 10, Flags: 1 | 4}),
				line(layout.Span{Text: "\tmore\n", Size: 10}),
			}},
		}},
	}}

	got := Collect(doc)
	want := []TextSpan{
		{Text: "Heading", FontSize: 20, Bold: true, Page: 1},
		{Text: "body", FontSize: 10, Bold: false, Page: 2},
		{Text: "more", FontSize: 10, Bold: false, Page: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCollect_PageNumbersDefaultToPosition(t *testing.T) {
	doc := &layout.Document{Pages: []layout.Page{
		{},
		{Blocks: []layout.Block{{Lines: []layout.Line{line(layout.Span{Text: "x", Size: 9})}}}},
	}}
	got := Collect(doc)
	if len(got) != 1 {
		t.Fatalf("expected 1 span, got %d", len(got))
	}
	if got[0].Page != 2 {
		t.Errorf("expected page 2, got %d", got[0].Page)
	}
}

func TestCollectAndBuild_NoText(t *testing.T) {
	doc := &layout.Document{Pages: []layout.Page{{Number: 1, Blocks: []layout.Block{{}}}}}
	got := Build(Collect(doc), Options{})
	if got.Title != "" || len(got.Outline) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}
