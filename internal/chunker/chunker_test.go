package chunker

import (
	"strings"
	"testing"
)

func TestChunk_EmptyInput(t *testing.T) {
	c := New(nil)
	for _, input := range []string{"", "   ", "\n\n"} {
		if got := c.Chunk(input); len(got) != 0 {
			t.Errorf("Chunk(%q) = %d chunks, want 0", input, len(got))
		}
	}
}

func TestChunk_SmallSectionFitsOneChunk(t *testing.T) {
	text := "## Hooks\n" + strings.Repeat("Actions let you run code at specific points. ", 10)
	chunks := New(nil).Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[0], "## Hooks") {
		t.Errorf("chunk should start with its heading, got %q", chunks[0][:40])
	}
}

func TestChunk_DropsUndersizedChunks(t *testing.T) {
	chunks := New(nil).Chunk("## Hi\nok")
	if len(chunks) != 0 {
		t.Errorf("expected tiny section to be dropped, got %d chunks", len(chunks))
	}
}

func TestChunk_PreambleBeforeFirstHeading(t *testing.T) {
	preamble := strings.Repeat("This page explains the plugin API basics. ", 4)
	text := preamble + "\n## Details\n" + strings.Repeat("More about the plugin API internals. ", 4)
	chunks := New(nil).Chunk(text)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks (preamble + section), got %d", len(chunks))
	}
	if strings.Contains(chunks[0], "#") {
		t.Errorf("preamble chunk should carry no heading marker: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], "## Details") {
		t.Errorf("section chunk should start with its heading: %q", chunks[1])
	}
}

func TestChunk_SplitsOversizedSectionAtParagraphs(t *testing.T) {
	para := strings.Repeat("WordPress filters modify data before it is used. ", 8) // ~390 chars
	text := "## Filters\n" + strings.Repeat(para+"\n\n", 8)                        // well over the level-2 ceiling
	chunks := New(nil).Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected oversized section to split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1500 {
			t.Errorf("chunk %d has %d chars, above the level-2 fallback ceiling", i, len(chunk))
		}
	}
}

func TestChunk_SentenceFallbackForGiantParagraph(t *testing.T) {
	// One paragraph with no blank lines, far over any ceiling.
	sentence := "The loop renders each post in the main query with full template support. "
	text := "## The Loop\n" + strings.Repeat(sentence, 40)
	chunks := New(nil).Chunk(text)

	if len(chunks) < 2 {
		t.Fatalf("expected sentence-level split, got %d chunks", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 1500 {
			t.Errorf("chunk %d has %d chars, above the fallback ceiling", i, len(chunk))
		}
	}
}

func TestChunk_CodeBlockNeverSplit(t *testing.T) {
	code := "```\nfunction my_hook() {\n    add_action( 'init', 'my_cb' );\n}\n```"
	filler := strings.Repeat("Register callbacks during initialization. ", 8)
	text := "## Setup\n" + filler + "\n\n" + code + "\n\n" + strings.Repeat(filler+"\n\n", 10)
	chunks := New(nil).Chunk(text)

	joined := strings.Join(chunks, "\x00")
	if strings.Count(joined, code) != 1 {
		t.Fatalf("code block should appear intact exactly once, chunks:\n%s", strings.Join(chunks, "\n---\n"))
	}
	for i, chunk := range chunks {
		open := strings.Count(chunk, "```")
		if open%2 != 0 {
			t.Errorf("chunk %d has unbalanced code fences", i)
		}
	}
}

func TestChunk_InlineCodeRestored(t *testing.T) {
	text := "## Usage\nCall `wp_insert_post()` to create content programmatically in any plugin."
	chunks := New(nil).Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "`wp_insert_post()`") {
		t.Errorf("inline code not restored: %q", chunks[0])
	}
	if strings.Contains(chunks[0], "__INLINE_CODE_") {
		t.Errorf("placeholder leaked into output: %q", chunks[0])
	}
}

func TestChunk_UnbrokenRunKeptWhole(t *testing.T) {
	// No sentence punctuation means no split point: the run stays one
	// oversized chunk instead of being cut mid-word.
	text := "## Blob\n" + strings.Repeat("x", 2100)
	chunks := New(nil).Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0]) < 2100 {
		t.Errorf("run was truncated to %d chars", len(chunks[0]))
	}
}

func TestChunk_Idempotent(t *testing.T) {
	filler := strings.Repeat("Hooks let plugins change core behavior without edits. ", 6)
	text := "Intro before any heading with enough words to keep the preamble chunk.\n" +
		"## Setup\n" + filler + "\n\n```\nadd_action( 'init', 'cb' );\n```\n\n" + strings.Repeat(filler+"\n\n", 8) +
		"## Usage\nCall `wp_insert_post()` with the post array to create content programmatically."

	c := New(nil)
	first := c.Chunk(text)
	second := c.Chunk(text)

	if len(first) == 0 {
		t.Fatal("expected chunks")
	}
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs:\n%q\nvs\n%q", i, first[i], second[i])
		}
	}
}

func TestChunk_PreservesSectionOrder(t *testing.T) {
	filler := strings.Repeat("Some explanatory sentence about the topic at hand. ", 3)
	text := "# First\n" + filler + "\n## Second\n" + filler + "\n### Third\n" + filler
	chunks := New(nil).Chunk(text)

	joined := strings.Join(chunks, "\n")
	first := strings.Index(joined, "# First")
	second := strings.Index(joined, "## Second")
	third := strings.Index(joined, "### Third")
	if first == -1 || second == -1 || third == -1 {
		t.Fatalf("missing a section heading:\n%s", joined)
	}
	if !(first < second && second < third) {
		t.Errorf("section order not preserved: %d, %d, %d", first, second, third)
	}
}

func TestChunk_HeadingInsideCodeBlockIgnored(t *testing.T) {
	code := "```\n# not a heading, just a comment\necho done\n```"
	text := "## Shell\nRun the following script to finish the installation process.\n\n" + code
	chunks := New(nil).Chunk(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], "# not a heading") {
		t.Errorf("code content lost: %q", chunks[0])
	}
}

func TestExtractCodeSpans(t *testing.T) {
	text := "before ```multi\nline``` middle `inline` after"
	stripped, spans := extractCodeSpans(text)

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].kind != "multiline" || spans[1].kind != "inline" {
		t.Errorf("span kinds = %q, %q", spans[0].kind, spans[1].kind)
	}
	if strings.Contains(stripped, "`") {
		t.Errorf("backticks remain after extraction: %q", stripped)
	}
	if !strings.Contains(stripped, "__CODE_BLOCK_0__") || !strings.Contains(stripped, "__INLINE_CODE_1__") {
		t.Errorf("unexpected placeholders: %q", stripped)
	}
}

func TestParseSections_BlankLinesKept(t *testing.T) {
	text := "## Title\nfirst paragraph\n\nsecond paragraph"
	sections := parseSections(text)

	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if !strings.Contains(sections[0].content, "\n\n") {
		t.Errorf("blank line between paragraphs lost: %q", sections[0].content)
	}
	if sections[0].level != 2 || sections[0].title != "Title" {
		t.Errorf("section = level %d title %q", sections[0].level, sections[0].title)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two! Three? Done")
	want := []string{"One.", "Two!", "Three?", "Done"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
}
