package parser

import (
	"fmt"
	"html"
	"io"
	"strings"

	"codexrag/internal/document"
)

// TextParser handles plain text files. Blank-line-separated blocks become
// paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return document.Document{}, fmt.Errorf("read text: %w", err)
	}

	var buf strings.Builder
	for _, block := range strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		buf.WriteString("<p>")
		buf.WriteString(html.EscapeString(block))
		buf.WriteString("</p>\n")
	}

	return document.Document{
		Title:       titleFromFilename(filename),
		ContentHTML: buf.String(),
	}, nil
}
