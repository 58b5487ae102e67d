package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts untrusted markdown into HTML that is safe to serve or
// print. Conversion runs in two fixed stages: markdown to HTML, then the
// sanitizer strips script-capable markup. The sanitizer is always last.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	return &Renderer{
		// Linkify turns bare URLs into anchors, Typographer applies smart
		// quotes and similar substitutions. WithUnsafe lets raw HTML pass
		// through to the sanitizer, which makes the final call.
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Typographer),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// ToHTML renders markdown to sanitized HTML. Empty input yields an empty
// string. Output is deterministic for identical input.
func (r *Renderer) ToHTML(markdown string) (string, error) {
	if markdown == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}
