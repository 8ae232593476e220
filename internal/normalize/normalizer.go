// Package normalize converts WordPress documentation HTML into flat,
// marker-annotated plain text: headings become "#" lines, list items get
// bullet or number prefixes, code keeps backticks, links keep their URLs.
// The output is the input contract of the chunker package.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// noteKeywords mark WordPress note/warning container blocks.
var noteKeywords = []string{"note:", "warning:", "important:", "tip:"}

// noteClasses are the container classes WordPress uses for callout boxes.
var noteClasses = map[string]bool{
	"wp-block-group":  true,
	"wp-block-column": true,
}

// Clean converts HTML content to plain text while preserving structure.
// It never fails: malformed input degrades to a regex tag strip, and
// empty input returns an empty string.
func Clean(htmlContent string) string {
	if strings.TrimSpace(htmlContent) == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return fallbackClean(htmlContent)
	}

	// Fixed-order transform pipeline. Order matters: each step assumes the
	// previous ones already flattened their elements to plain text nodes.
	removeSubtrees(doc, "script", "style")
	collapseNoteBlocks(doc)
	convertHeadings(doc)
	convertLists(doc)
	convertCode(doc)
	convertLinks(doc)
	convertParagraphs(doc)
	convertLineBreaks(doc)

	return normalizeWhitespace(textContent(doc))
}

// removeSubtrees drops the named elements and everything inside them.
func removeSubtrees(root *html.Node, tags ...string) {
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[t] = true
	}
	for _, n := range findAll(root, func(n *html.Node) bool { return drop[n.Data] }) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// collapseNoteBlocks replaces WordPress callout containers with their plain
// text wrapped in newlines. Runs before heading conversion so headings nested
// inside a note are not double-marked.
func collapseNoteBlocks(root *html.Node) {
	blocks := findAll(root, func(n *html.Node) bool {
		if n.Data != "div" || !hasNoteClass(n) {
			return false
		}
		text := strings.ToLower(textContent(n))
		for _, kw := range noteKeywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
		return false
	})
	for _, n := range blocks {
		if text := strings.TrimSpace(textContent(n)); text != "" {
			replaceWithText(n, "\n"+text+"\n")
		} else if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

func convertHeadings(root *html.Node) {
	for _, n := range findAll(root, func(n *html.Node) bool { return headingLevel(n.Data) > 0 }) {
		level := headingLevel(n.Data)
		text := strings.TrimSpace(textContent(n))
		if text == "" {
			n.Parent.RemoveChild(n)
			continue
		}
		replaceWithText(n, "\n"+strings.Repeat("#", level)+" "+text+"\n")
	}
}

// convertLists flattens <ul> items to "• text" lines and <ol> items to
// "N. text" lines, then unwraps the list containers.
func convertLists(root *html.Node) {
	for _, ul := range findAll(root, func(n *html.Node) bool { return n.Data == "ul" }) {
		for _, li := range findAll(ul, func(n *html.Node) bool { return n.Data == "li" }) {
			if text := strings.TrimSpace(textContent(li)); text != "" {
				replaceWithText(li, "• "+text+"\n")
			}
		}
		unwrap(ul)
	}

	for _, ol := range findAll(root, func(n *html.Node) bool { return n.Data == "ol" }) {
		idx := 1
		for _, li := range findAll(ol, func(n *html.Node) bool { return n.Data == "li" }) {
			if text := strings.TrimSpace(textContent(li)); text != "" {
				replaceWithText(li, fmt.Sprintf("%d. %s\n", idx, text))
			}
			idx++
		}
		unwrap(ol)
	}
}

func convertCode(root *html.Node) {
	for _, n := range findAll(root, func(n *html.Node) bool { return n.Data == "code" || n.Data == "pre" }) {
		if text := strings.TrimSpace(textContent(n)); text != "" {
			replaceWithText(n, "`"+text+"`")
		} else if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

func convertLinks(root *html.Node) {
	for _, n := range findAll(root, func(n *html.Node) bool { return n.Data == "a" }) {
		text := strings.TrimSpace(textContent(n))
		href := attrValue(n, "href")
		switch {
		case text != "" && href != "":
			replaceWithText(n, text+" ("+href+")")
		case text != "":
			replaceWithText(n, text)
		default:
			n.Parent.RemoveChild(n)
		}
	}
}

func convertParagraphs(root *html.Node) {
	for _, n := range findAll(root, func(n *html.Node) bool { return n.Data == "p" }) {
		if text := strings.TrimSpace(textContent(n)); text != "" {
			replaceWithText(n, text+"\n\n")
		} else if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

func convertLineBreaks(root *html.Node) {
	for _, n := range findAll(root, func(n *html.Node) bool { return n.Data == "br" }) {
		replaceWithText(n, "\n")
	}
}

// normalizeWhitespace strips every line, collapses runs of blank lines to
// one, and trims the result.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		} else if len(cleaned) > 0 && cleaned[len(cleaned)-1] != "" {
			cleaned = append(cleaned, "")
		}
	}
	result := strings.Join(cleaned, "\n")
	result = multiNewlineRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

var (
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	tagRe          = regexp.MustCompile(`<[^>]+>`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// fallbackClean strips tags with a regex when the parser gives up.
// Degraded fidelity, but a result is always returned.
func fallbackClean(htmlContent string) string {
	text := tagRe.ReplaceAllString(htmlContent, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

// findAll collects element nodes matching the predicate in document order.
// Collect-then-mutate keeps the transforms safe against tree edits.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

func textContent(n *html.Node) string {
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
	return buf.String()
}

// replaceWithText swaps an element node for a plain text node.
func replaceWithText(n *html.Node, text string) {
	if n.Parent == nil {
		return
	}
	n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
	n.Parent.RemoveChild(n)
}

// unwrap lifts a node's children into its parent and removes the node.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// hasNoteClass reports whether any of the element's classes is a WordPress
// callout container class.
func hasNoteClass(n *html.Node) bool {
	for _, class := range strings.Fields(attrValue(n, "class")) {
		if noteClasses[class] {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
