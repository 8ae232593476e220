package parser

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"codexrag/internal/document"
)

// MarkdownParser renders Markdown to HTML with goldmark, so markdown files
// share the HTML normalization path.
type MarkdownParser struct{}

var mdTitleRe = regexp.MustCompile(`(?m)^#\s+(.+)$`)

func (p *MarkdownParser) Parse(r io.Reader, filename string) (document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return document.Document{}, fmt.Errorf("read markdown: %w", err)
	}

	var buf bytes.Buffer
	if err := goldmark.New().Convert(src, &buf); err != nil {
		return document.Document{}, fmt.Errorf("render markdown: %w", err)
	}

	title := titleFromFilename(filename)
	if m := mdTitleRe.FindSubmatch(src); m != nil {
		title = strings.TrimSpace(string(m[1]))
	}

	return document.Document{
		Title:       title,
		ContentHTML: buf.String(),
	}, nil
}
