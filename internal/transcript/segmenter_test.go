package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"podscribe/internal/models"
)

func word(text string, start, end float64) models.Word {
	return models.Word{Word: text, Start: start, End: end}
}

func TestBuildSegmentsEmptyInput(t *testing.T) {
	assert.Empty(t, BuildSegments(nil, 15))
	assert.Empty(t, BuildSegments([]models.Word{}, 15))
}

func TestBuildSegmentsSingleWordClosesAtEnd(t *testing.T) {
	segments := BuildSegments([]models.Word{word("Hi.", 0, 0.5)}, 15)

	assert.Len(t, segments, 1)
	assert.Equal(t, "Hi.", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 0.5, segments[0].End)
	assert.Len(t, segments[0].Words, 1)
}

func TestBuildSegmentsBreaksOnSentenceEnd(t *testing.T) {
	words := []models.Word{
		word("The", 0, 1), word("quick", 1, 2), word("brown", 2, 3),
		word("fox", 3, 4), word("jumps.", 4, 5),
		word("And", 5, 6), word("again", 6, 7),
	}
	segments := BuildSegments(words, 15)

	assert.Len(t, segments, 2)
	assert.Equal(t, "The quick brown fox jumps.", segments[0].Text)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 5.0, segments[0].End)
	assert.Equal(t, "And again", segments[1].Text)
}

func TestBuildSegmentsNoEarlyBreakUnderFiveWords(t *testing.T) {
	// "Dr." ends with a period but the buffer is too short to close.
	words := []models.Word{
		word("Dr.", 0, 1), word("Smith", 1, 2), word("spoke", 2, 3),
	}
	segments := BuildSegments(words, 15)

	assert.Len(t, segments, 1)
	assert.Equal(t, "Dr. Smith spoke", segments[0].Text)
}

func TestBuildSegmentsBreaksAtTargetLength(t *testing.T) {
	var words []models.Word
	for i := 0; i < 35; i++ {
		words = append(words, word("w", float64(i), float64(i+1)))
	}
	segments := BuildSegments(words, 15)

	assert.Len(t, segments, 3)
	assert.Len(t, segments[0].Words, 15)
	assert.Len(t, segments[1].Words, 15)
	assert.Len(t, segments[2].Words, 5)
}

func TestBuildSegmentsPreservesEveryWordInOrder(t *testing.T) {
	words := []models.Word{
		word("One", 0, 1), word("two", 1, 2), word("three.", 2, 3),
		word("Four", 3, 4), word("five", 4, 5), word("six", 5, 6),
		word("seven.", 6, 7), word("eight", 7, 8),
	}
	segments := BuildSegments(words, 4)

	var flattened []models.Word
	for _, seg := range segments {
		flattened = append(flattened, seg.Words...)
	}
	assert.Equal(t, words, flattened)
}

func TestSentenceFallbackSplitsAndSlicesTime(t *testing.T) {
	segments := SentenceFallback("First sentence. Second one! Third?", 10, 30)

	assert.Len(t, segments, 3)
	assert.Equal(t, "First sentence.", segments[0].Text)
	assert.Equal(t, 10.0, segments[0].Start)
	assert.Equal(t, 20.0, segments[0].End)
	assert.Equal(t, 20.0, segments[1].Start)
	assert.Equal(t, 40.0, segments[2].End)
}

func TestSentenceFallbackEmptyText(t *testing.T) {
	assert.Empty(t, SentenceFallback("   ", 0, 10))
}
