// Package render turns note bodies into HTML.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var engine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// HTML renders a normalized note body. Raw HTML in the body is omitted.
func HTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := engine.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
