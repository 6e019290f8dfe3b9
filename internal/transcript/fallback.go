package transcript

import "strings"

// SentenceFallback splits raw chunk text into sentence segments when the
// speech-to-text service returned no word-level timestamps. Each sentence
// gets an equal slice of the chunk's duration, starting at offset, so the
// transcript stays usable for playback sync even without word timing.
func SentenceFallback(text string, offset, duration float64) []Segment {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	slice := duration / float64(len(sentences))
	segments := make([]Segment, 0, len(sentences))
	for i, s := range sentences {
		segments = append(segments, Segment{
			Text:  s,
			Start: offset + float64(i)*slice,
			End:   offset + float64(i+1)*slice,
		})
	}
	return segments
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
