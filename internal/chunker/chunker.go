// Package chunker splits normalized documentation text into bounded-size,
// semantically coherent chunks for embedding. Heading lines are the primary
// split points, with paragraph and sentence fallbacks for oversized
// sections. Code spans are extracted before any splitting and restored
// afterwards, so a code block can never be cut in half.
package chunker

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

const (
	// MinChunkChars is the floor below which a chunk carries too little
	// standalone meaning for retrieval and is dropped.
	MinChunkChars = 50

	// MaxChunkChars is a soft ceiling. Restored code blocks can push a
	// chunk over it; such chunks are kept and logged.
	MaxChunkChars = 2000
)

// Chunker is a pure splitter with an optional log sink. The zero value and
// a nil logger are both usable.
type Chunker struct {
	log *slog.Logger
}

// New returns a Chunker. log may be nil.
func New(log *slog.Logger) *Chunker {
	return &Chunker{log: log}
}

// codeSpan is an extracted code fragment parked in a side table while the
// surrounding text is split.
type codeSpan struct {
	placeholder string
	content     string
	kind        string // "multiline" or "inline"
}

// section is a heading-delimited region of the input. Sections form a flat
// ordered list disambiguated by level; nesting is not materialized.
type section struct {
	level   int // 0 = preamble, 1-6 = heading depth
	title   string
	content string // includes the heading marker line
}

// Chunk splits text into ordered chunks. It is a total function: any input,
// including the empty string, yields a result without error.
func (c *Chunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	stripped, spans := extractCodeSpans(text)
	sections := parseSections(stripped)

	var chunks []string
	for _, s := range sections {
		chunks = append(chunks, chunkSection(s)...)
	}

	chunks = restoreCodeSpans(chunks, spans)
	return c.validate(chunks)
}

// codeSpanRe matches triple-backtick blocks first, then inline single-backtick
// spans. Combined into one pattern so multiline matches win at each position.
var codeSpanRe = regexp.MustCompile("```([^`]*?)```|`([^`\n]+)`")

// extractCodeSpans replaces every code span with a unique placeholder and
// records the original text. Placeholders are plain words, so no later
// splitting step can fracture a code span.
func extractCodeSpans(text string) (string, []codeSpan) {
	var spans []codeSpan
	replaced := codeSpanRe.ReplaceAllStringFunc(text, func(m string) string {
		var span codeSpan
		if strings.HasPrefix(m, "```") {
			span = codeSpan{
				placeholder: fmt.Sprintf("__CODE_BLOCK_%d__", len(spans)),
				content:     m,
				kind:        "multiline",
			}
		} else {
			span = codeSpan{
				placeholder: fmt.Sprintf("__INLINE_CODE_%d__", len(spans)),
				content:     m,
				kind:        "inline",
			}
		}
		spans = append(spans, span)
		return span.placeholder
	})
	return replaced, spans
}

var headingRe = regexp.MustCompile(`^(#+)\s+(.*)`)

// parseSections scans line by line and groups content under the most recent
// heading. Content before the first heading becomes a synthetic level-0
// "Introduction" section. Blank lines are kept inside section content.
func parseSections(text string) []section {
	var sections []section
	var current *section

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if m := headingRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &section{
				level:   len(m[1]),
				title:   strings.TrimSpace(m[2]),
				content: line + "\n",
			}
			continue
		}

		switch {
		case current != nil:
			current.content += line + "\n"
		case len(sections) > 0 && sections[len(sections)-1].level == 0:
			sections[len(sections)-1].content += line + "\n"
		default:
			sections = append(sections, section{
				level:   0,
				title:   "Introduction",
				content: line + "\n",
			})
		}
	}

	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

// sizeCeilings returns the whole-section ceiling and the fallback ceiling
// used when splitting, per heading level. Values balance embedding context
// limits against retrieval granularity.
func sizeCeilings(level int) (whole, fallback int) {
	switch level {
	case 0:
		return 1500, 1500
	case 1:
		return 2000, 2000
	case 2:
		return 2000, 1500
	case 3:
		return 1500, 1200
	default:
		return 1000, 800
	}
}

// chunkSection emits the section verbatim when it fits its level's ceiling,
// otherwise splits it at paragraph boundaries.
func chunkSection(s section) []string {
	content := strings.TrimSpace(s.content)
	if content == "" {
		return nil
	}
	whole, fallback := sizeCeilings(s.level)
	if len(content) <= whole {
		return []string{content}
	}
	return chunkByParagraphs(content, fallback)
}

// chunkByParagraphs greedily packs double-newline-separated paragraphs into
// chunks up to maxSize. Any paragraph chunk still over the limit is split
// again at sentence boundaries.
func chunkByParagraphs(text string, maxSize int) []string {
	var chunks []string
	var current string

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current != "" && len(current)+len(para)+2 > maxSize {
			chunks = append(chunks, current)
			current = para
		} else if current != "" {
			current += "\n\n" + para
		} else {
			current = para
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	var final []string
	for _, chunk := range chunks {
		if len(chunk) > maxSize {
			final = append(final, chunkBySentences(chunk, maxSize)...)
		} else {
			final = append(final, chunk)
		}
	}
	return final
}

// chunkBySentences is the last-resort splitter for paragraphs that exceed
// the ceiling on their own. Text with no sentence punctuation has no split
// point and stays one oversized chunk; validate logs it and keeps it rather
// than cutting mid-word.
func chunkBySentences(text string, maxSize int) []string {
	var chunks []string
	var current string

	for _, sentence := range splitSentences(text) {
		if current != "" && len(current)+len(sentence)+1 > maxSize {
			chunks = append(chunks, current)
			current = sentence
		} else if current != "" {
			current += " " + sentence
		} else {
			current = sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentences cuts at '.', '!' or '?' followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && isSpace(text[i+1]) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// restoreCodeSpans substitutes the original code text back for every
// placeholder. A span appears whole in exactly one chunk because it was
// absent from the text during all splitting.
func restoreCodeSpans(chunks []string, spans []codeSpan) []string {
	if len(spans) == 0 {
		return chunks
	}
	restored := make([]string, len(chunks))
	for i, chunk := range chunks {
		for _, span := range spans {
			chunk = strings.ReplaceAll(chunk, span.placeholder, span.content)
		}
		restored[i] = chunk
	}
	return restored
}

// validate drops chunks under the size floor and flags (but keeps) chunks
// over the soft ceiling. Order is preserved.
func (c *Chunker) validate(chunks []string) []string {
	kept := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if len(chunk) < MinChunkChars {
			if c.log != nil && chunk != "" {
				c.log.Debug("dropping undersized chunk", "chars", len(chunk))
			}
			continue
		}
		if len(chunk) > MaxChunkChars && c.log != nil {
			c.log.Warn("chunk exceeds recommended size", "chars", len(chunk))
		}
		kept = append(kept, chunk)
	}
	return kept
}
