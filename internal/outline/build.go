package outline

import (
	"slices"
	"strings"
)

// DefaultMaxHeadingWords is the longest span, in words, still treated as a heading.
const DefaultMaxHeadingWords = 15

// Options tunes the heading heuristic. The zero value uses the defaults.
type Options struct {
	// MaxHeadingWords caps heading length in whitespace-separated words.
	MaxHeadingWords int

	// SizeTolerance merges font sizes within this many points of a larger
	// size before ranking. Zero compares sizes for exact equality.
	SizeTolerance float64
}

func (o *Options) defaults() {
	if o.MaxHeadingWords <= 0 {
		o.MaxHeadingWords = DefaultMaxHeadingWords
	}
	if o.SizeTolerance < 0 {
		o.SizeTolerance = 0
	}
}

// sizeRanking is the descending list of distinct sizes and the mapping from
// every observed size to the distinct size it ranks as.
type sizeRanking struct {
	unique []float64
	canon  map[float64]float64
}

func rankSizes(spans []TextSpan, tolerance float64) sizeRanking {
	canon := make(map[float64]float64)
	var sizes []float64
	for _, s := range spans {
		if _, ok := canon[s.FontSize]; ok {
			continue
		}
		canon[s.FontSize] = s.FontSize
		sizes = append(sizes, s.FontSize)
	}
	slices.SortFunc(sizes, func(a, b float64) int {
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	var unique []float64
	for _, size := range sizes {
		if n := len(unique); n > 0 && unique[n-1]-size <= tolerance {
			canon[size] = unique[n-1]
			continue
		}
		unique = append(unique, size)
	}
	return sizeRanking{unique: unique, canon: canon}
}

func (r sizeRanking) levelMap() map[float64]Level {
	m := make(map[float64]Level, len(levels))
	for i, size := range r.unique {
		if i >= len(levels) {
			break
		}
		m[size] = levels[i]
	}
	return m
}

// HeadingLevels returns the mapping from distinct font size to heading level:
// the largest size is H1, the second H2, the third H3. Smaller sizes are absent.
func HeadingLevels(spans []TextSpan, opts Options) map[float64]Level {
	opts.defaults()
	return rankSizes(spans, opts.SizeTolerance).levelMap()
}

// Build produces the title and outline for one document's spans, which must
// be in document order.
func Build(spans []TextSpan, opts Options) Result {
	if len(spans) == 0 {
		return Empty()
	}
	opts.defaults()

	ranking := rankSizes(spans, opts.SizeTolerance)
	sizeToLevel := ranking.levelMap()
	largest := ranking.unique[0]

	title := ""
	for _, s := range spans {
		if ranking.canon[s.FontSize] == largest {
			title = s.Text
			break
		}
	}

	type key struct {
		text string
		page int
	}
	seen := make(map[key]struct{})
	entries := make([]Entry, 0)
	for _, s := range spans {
		level, ok := sizeToLevel[ranking.canon[s.FontSize]]
		if !ok {
			continue
		}
		if len(strings.Fields(s.Text)) > opts.MaxHeadingWords {
			continue
		}
		k := key{text: s.Text, page: s.Page}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		entries = append(entries, Entry{Level: level, Text: s.Text, Page: s.Page})
	}

	return Result{Title: title, Outline: entries}
}
