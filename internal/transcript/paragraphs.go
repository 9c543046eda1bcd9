package transcript

import (
	"regexp"
	"strings"
)

// DefaultSentencesPerParagraph is the paragraph grouping applied when no
// explicit value is configured.
const DefaultSentencesPerParagraph = 4

// sentenceBoundary matches sentence-final punctuation followed by
// whitespace. There is no abbreviation or decimal handling, so "Dr. Smith"
// splits after "Dr.".
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// SplitParagraphs splits text into display paragraphs of
// sentencesPerParagraph sentences each, keeping the final partial group.
// Sentences within a paragraph are joined with single spaces. Empty input
// yields a single empty paragraph.
func SplitParagraphs(text string, sentencesPerParagraph int) []string {
	if sentencesPerParagraph < 1 {
		sentencesPerParagraph = DefaultSentencesPerParagraph
	}
	sentences := splitSentences(strings.TrimSpace(text))

	var paragraphs []string
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		if (i+1)%sentencesPerParagraph == 0 || i == len(sentences)-1 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}
	return paragraphs
}

// splitSentences cuts text after each sentence boundary, keeping the
// punctuation with its sentence and discarding the boundary whitespace.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[last:loc[0]+1])
		last = loc[1]
	}
	return append(sentences, text[last:])
}
