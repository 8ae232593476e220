package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"codexrag/internal/document"
)

// HTMLParser handles HTML files. The content passes through unchanged; the
// normalizer downstream does the structural work.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return document.Document{}, fmt.Errorf("read html: %w", err)
	}

	title := titleFromFilename(filename)
	if doc, err := html.Parse(strings.NewReader(string(src))); err == nil {
		if t := findTitle(doc); t != "" {
			title = t
		}
	}

	return document.Document{
		Title:       title,
		ContentHTML: string(src),
	}, nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textOf(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}
