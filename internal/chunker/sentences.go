package chunker

import (
	"regexp"
	"strings"
)

// Sentence unit segmentation. A unit boundary is a paragraph break, a
// bullet or numbered list marker at the start of a line, or sentence-terminal
// punctuation followed by whitespace and a capital letter or digit. Units are
// the atomic, non-splittable building blocks of chunks, so ambiguous
// boundaries (abbreviations, decimals) err toward under-splitting.

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n+`)
	listMarker     = regexp.MustCompile(`^[ \t]*(?:[-•*]|\d+[.)])[ \t]+`)
	// sentenceEnd matches terminal punctuation (with optional closing
	// quote/bracket) followed by whitespace and an upper-case letter or
	// digit. RE2 has no lookahead, so the match end minus one byte is the
	// start of the next unit.
	sentenceEnd = regexp.MustCompile(`[.!?]["')\]]*\s+[A-Z0-9]`)
)

// splitUnits segments normalized document text into ordered sentence units.
// Pathological text with no detectable boundaries comes back as a single
// unit, which the engine emits whole rather than cutting mid-sentence.
func splitUnits(text string) []string {
	var units []string
	for _, para := range paragraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for _, block := range splitListItems(para) {
			// Split the marker off first so "1." is not mistaken for a
			// sentence, then re-attach it to the first sentence.
			marker := listMarker.FindString(block)
			sentences := splitSentences(block[len(marker):])
			if marker != "" && len(sentences) > 0 {
				sentences[0] = strings.TrimRight(marker, " \t") + " " + sentences[0]
			}
			units = append(units, sentences...)
		}
	}
	return units
}

// splitListItems peels bullet and numbered-list lines out of a paragraph so
// each list item becomes its own block. Continuation lines without a marker
// belong to the preceding block.
func splitListItems(para string) []string {
	lines := strings.Split(para, "\n")
	var blocks []string
	var cur strings.Builder
	flush := func() {
		if b := strings.TrimSpace(cur.String()); b != "" {
			blocks = append(blocks, b)
		}
		cur.Reset()
	}
	for _, line := range lines {
		if listMarker.MatchString(line) {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString(" ")
		}
		cur.WriteString(strings.TrimSpace(line))
	}
	flush()
	return blocks
}

// splitSentences splits a block at sentence-terminal boundaries. Internal
// whitespace is collapsed to single spaces first, so original punctuation is
// preserved but line breaks inside a sentence are not.
func splitSentences(block string) []string {
	block = strings.Join(strings.Fields(block), " ")
	if block == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(block, -1) {
		// loc[1] is just past the first letter of the next sentence;
		// the boundary class is ASCII so one byte back is safe.
		cut := loc[1] - 1
		if cut <= start {
			continue
		}
		s := strings.TrimSpace(block[start:cut])
		if s != "" {
			sentences = append(sentences, s)
		}
		start = cut
	}
	if s := strings.TrimSpace(block[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
