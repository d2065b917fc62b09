// Package markdown converts generated biography text into HTML using
// goldmark. Providers frequently return light Markdown (bold names,
// bullet lists), so the API offers a rendered variant alongside the raw
// text. Raw HTML in the source is dropped, never passed through: the
// input comes from an LLM and is not trusted.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks
		extension.Typographer, // smart quotes and dashes
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(), // single newlines become <br>, matching how bios are written
	),
)

// ToHTML converts Markdown source into HTML with raw HTML omitted.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
