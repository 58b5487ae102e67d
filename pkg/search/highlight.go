package search

import (
	"strings"

	"marknotes-be/pkg/searchindex"
)

// Stitch merges the highlight entries of one hit into a single marked-up
// title. Only an unambiguous result — exactly one entry — is stitched;
// zero or several entries return nil and the caller drops the highlight
// rather than show a guessed or partial one. Span content is emitted
// verbatim, markup is only added around "hit" spans.
func Stitch(highlights [][]searchindex.HighlightSpan) *string {
	if len(highlights) != 1 {
		return nil
	}

	var b strings.Builder
	for _, span := range highlights[0] {
		if span.Type == searchindex.SpanHit {
			b.WriteString("<mark>")
			b.WriteString(span.Value)
			b.WriteString("</mark>")
		} else {
			b.WriteString(span.Value)
		}
	}
	s := b.String()
	return &s
}
