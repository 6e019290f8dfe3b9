// Package transcript turns raw timestamped word tokens into readable,
// playback-synchronized transcript segments.
package transcript

import (
	"strings"

	"podscribe/internal/models"
)

// minWordsForSentenceBreak is the smallest segment we close early on
// sentence-ending punctuation; shorter runs keep accumulating so stray
// abbreviations don't produce one-word segments.
const minWordsForSentenceBreak = 5

// Segment is a sentence-like slice of the transcript. Start and End come
// straight from the first and last word; small overlaps between adjacent
// segments can occur when the transcription source emits them and are
// preserved as-is.
type Segment struct {
	Text  string
	Start float64
	End   float64
	Words []models.Word
}

// BuildSegments groups words into segments. A segment closes when it has
// at least minWordsForSentenceBreak words and the current word ends a
// sentence, when it reaches targetWords, or at the final word. The input
// order is preserved exactly; every input word lands in exactly one
// output segment.
func BuildSegments(words []models.Word, targetWords int) []Segment {
	if len(words) == 0 {
		return nil
	}
	if targetWords <= 0 {
		targetWords = 15
	}

	var segments []Segment
	var current []models.Word

	for i, w := range words {
		current = append(current, w)

		endOfSentence := len(current) >= minWordsForSentenceBreak && endsSentence(w.Word)
		full := len(current) >= targetWords
		last := i == len(words)-1

		if endOfSentence || full || last {
			segments = append(segments, closeSegment(current))
			current = nil
		}
	}

	return segments
}

func closeSegment(words []models.Word) Segment {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		parts = append(parts, w.Word)
	}
	return Segment{
		Text:  strings.TrimSpace(strings.Join(parts, " ")),
		Start: words[0].Start,
		End:   words[len(words)-1].End,
		Words: append([]models.Word(nil), words...),
	}
}

func endsSentence(word string) bool {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
