package outline

import (
	"reflect"
	"strings"
	"testing"
)

func span(text string, size float64, page int) TextSpan {
	return TextSpan{Text: text, FontSize: size, Page: page}
}

func TestBuild_EmptyInput(t *testing.T) {
	got := Build(nil, Options{})
	if got.Title != "" {
		t.Errorf("expected empty title, got %q", got.Title)
	}
	if got.Outline == nil {
		t.Fatal("expected non-nil outline slice")
	}
	if len(got.Outline) != 0 {
		t.Errorf("expected 0 entries, got %d", len(got.Outline))
	}
}

func TestBuild_ThreeSizesWithDuplicate(t *testing.T) {
	spans := []TextSpan{
		span("Intro", 24, 1),
		span("Overview", 18, 1),
		span("Intro", 24, 1),
		span("Details here", 14, 2),
	}

	got := Build(spans, Options{})

	want := Result{
		Title: "Intro",
		Outline: []Entry{
			{Level: H1, Text: "Intro", Page: 1},
			{Level: H2, Text: "Overview", Page: 1},
			{Level: H3, Text: "Details here", Page: 2},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	levels := HeadingLevels(spans, Options{})
	wantLevels := map[float64]Level{24: H1, 18: H2, 14: H3}
	if !reflect.DeepEqual(levels, wantLevels) {
		t.Errorf("expected levels %v, got %v", wantLevels, levels)
	}
}

func TestBuild_SingleSizeAllH1(t *testing.T) {
	spans := []TextSpan{
		span("Alpha", 11, 1),
		span("Beta", 11, 1),
		span("Gamma", 11, 2),
	}
	got := Build(spans, Options{})

	if got.Title != "Alpha" {
		t.Errorf("expected title %q, got %q", "Alpha", got.Title)
	}
	if len(got.Outline) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got.Outline))
	}
	for i, e := range got.Outline {
		if e.Level != H1 {
			t.Errorf("entry[%d]: expected H1, got %s", i, e.Level)
		}
	}
}

func TestBuild_TwoSizesUseH1AndH2(t *testing.T) {
	spans := []TextSpan{
		span("Small", 10, 1),
		span("Big", 20, 1),
		span("Small again", 10, 2),
	}
	got := Build(spans, Options{})

	used := map[Level]bool{}
	for _, e := range got.Outline {
		used[e.Level] = true
	}
	if !used[H1] || !used[H2] || used[H3] {
		t.Errorf("expected only H1 and H2, got %v", used)
	}
	if got.Title != "Big" {
		t.Errorf("expected title %q, got %q", "Big", got.Title)
	}
}

func TestBuild_SizesBeyondThirdExcluded(t *testing.T) {
	spans := []TextSpan{
		span("A", 30, 1),
		span("B", 20, 1),
		span("C", 15, 1),
		span("body text", 10, 1),
		span("footnote", 8, 1),
	}
	got := Build(spans, Options{})

	if len(got.Outline) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(got.Outline), got.Outline)
	}
	for _, e := range got.Outline {
		if e.Text == "body text" || e.Text == "footnote" {
			t.Errorf("unexpected entry for unranked size: %+v", e)
		}
	}
}

func TestBuild_TitleIsFirstLargestSpan(t *testing.T) {
	spans := []TextSpan{
		span("preface", 12, 1),
		span("First Big", 28, 2),
		span("Second Big", 28, 3),
	}
	got := Build(spans, Options{})
	if got.Title != "First Big" {
		t.Errorf("expected title %q, got %q", "First Big", got.Title)
	}
}

func TestBuild_WordLimit(t *testing.T) {
	fifteen := strings.TrimSpace(strings.Repeat("word ", 15))
	sixteen := strings.TrimSpace(strings.Repeat("word ", 16))
	spans := []TextSpan{
		span(fifteen, 12, 1),
		span(sixteen, 12, 1),
	}
	got := Build(spans, Options{})

	if len(got.Outline) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got.Outline))
	}
	if got.Outline[0].Text != fifteen {
		t.Errorf("expected the 15-word span to survive, got %q", got.Outline[0].Text)
	}
	// Title ignores the word limit.
	if got.Title != fifteen {
		t.Errorf("expected title %q, got %q", fifteen, got.Title)
	}
}

func TestBuild_LongTitleStillTitle(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("very ", 20))
	got := Build([]TextSpan{span(long, 30, 1), span("Body", 10, 1)}, Options{})
	if got.Title != long {
		t.Errorf("expected long title, got %q", got.Title)
	}
	for _, e := range got.Outline {
		if e.Text == long {
			t.Error("expected long span to be excluded from outline")
		}
	}
}

func TestBuild_CustomWordLimit(t *testing.T) {
	spans := []TextSpan{span("one two three", 12, 1), span("one two", 12, 1)}
	got := Build(spans, Options{MaxHeadingWords: 2})
	if len(got.Outline) != 1 || got.Outline[0].Text != "one two" {
		t.Errorf("expected only %q, got %+v", "one two", got.Outline)
	}
}

func TestBuild_DedupIsPerPage(t *testing.T) {
	spans := []TextSpan{
		span("Chapter", 20, 1),
		span("Chapter", 20, 2),
		span("Chapter", 20, 2),
	}
	got := Build(spans, Options{})
	want := []Entry{
		{Level: H1, Text: "Chapter", Page: 1},
		{Level: H1, Text: "Chapter", Page: 2},
	}
	if !reflect.DeepEqual(got.Outline, want) {
		t.Errorf("expected %+v, got %+v", want, got.Outline)
	}
}

func TestBuild_DedupKeepsFirstLevel(t *testing.T) {
	// Same text on the same page at two sizes keeps the first occurrence.
	spans := []TextSpan{
		span("Scope", 14, 1),
		span("Scope", 20, 1),
	}
	got := Build(spans, Options{})
	if len(got.Outline) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got.Outline))
	}
	if got.Outline[0].Level != H2 {
		t.Errorf("expected first occurrence level H2, got %s", got.Outline[0].Level)
	}
}

func TestBuild_PreservesSpanOrder(t *testing.T) {
	spans := []TextSpan{
		span("p3 heading", 20, 3),
		span("p1 heading", 20, 1),
		span("p2 heading", 16, 2),
	}
	got := Build(spans, Options{})
	var texts []string
	for _, e := range got.Outline {
		texts = append(texts, e.Text)
	}
	want := []string{"p3 heading", "p1 heading", "p2 heading"}
	if !reflect.DeepEqual(texts, want) {
		t.Errorf("expected order %v, got %v", want, texts)
	}
}

func TestBuild_ExactFloatEquality(t *testing.T) {
	spans := []TextSpan{
		span("A", 12.0, 1),
		span("B", 12.000001, 1),
		span("C", 11.999999, 1),
	}
	levels := HeadingLevels(spans, Options{})
	if len(levels) != 3 {
		t.Fatalf("expected 3 distinct levels, got %d", len(levels))
	}
	if levels[12.000001] != H1 || levels[12.0] != H2 || levels[11.999999] != H3 {
		t.Errorf("unexpected level map: %v", levels)
	}
}

func TestBuild_SizeToleranceMergesNearSizes(t *testing.T) {
	spans := []TextSpan{
		span("Body one", 11.98, 1),
		span("Title", 24.02, 1),
		span("Section", 16, 1),
		span("Title again", 23.97, 2),
		span("Body two", 12.01, 2),
	}
	got := Build(spans, Options{SizeTolerance: 0.1})

	if got.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", got.Title)
	}
	byText := map[string]Level{}
	for _, e := range got.Outline {
		byText[e.Text] = e.Level
	}
	checks := map[string]Level{
		"Title":       H1,
		"Title again": H1,
		"Section":     H2,
		"Body one":    H3,
		"Body two":    H3,
	}
	for text, want := range checks {
		if byText[text] != want {
			t.Errorf("%q: expected %s, got %s", text, want, byText[text])
		}
	}
}

func TestHeadingLevels_Empty(t *testing.T) {
	if got := HeadingLevels(nil, Options{}); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestBuild_Invariants(t *testing.T) {
	spans := []TextSpan{
		span("Report", 26, 1),
		span("Summary", 18, 1),
		span("This paragraph is far too long to be a heading because it keeps going on and on and on", 18, 1),
		span("Summary", 18, 1),
		span("Method", 14, 2),
		span("body", 10, 2),
		span("Results", 18, 3),
		span("Method", 14, 3),
	}
	got := Build(spans, Options{})

	seen := map[[2]any]bool{}
	for _, e := range got.Outline {
		k := [2]any{e.Text, e.Page}
		if seen[k] {
			t.Errorf("duplicate (text, page): %v", k)
		}
		seen[k] = true
		if n := len(strings.Fields(e.Text)); n > DefaultMaxHeadingWords {
			t.Errorf("entry %q has %d words", e.Text, n)
		}
		switch e.Level {
		case H1, H2, H3:
		default:
			t.Errorf("unexpected level %q", e.Level)
		}
	}
}
