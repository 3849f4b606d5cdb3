package outline

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encode writes r as two-space indented JSON. HTML characters are not escaped.
func Encode(w io.Writer, r Result) error {
	if r.Outline == nil {
		r.Outline = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}
	return nil
}

// Decode reads a Result previously written by Encode.
func Decode(rd io.Reader) (Result, error) {
	var r Result
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("decode outline: %w", err)
	}
	if r.Outline == nil {
		r.Outline = []Entry{}
	}
	for i, e := range r.Outline {
		switch e.Level {
		case H1, H2, H3:
		default:
			return Result{}, fmt.Errorf("decode outline: entry %d: unknown level %q", i, e.Level)
		}
	}
	return r, nil
}
