package models

// Word is a single transcribed token with its timing in seconds,
// relative to the start of the episode.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptSegment is a sentence-like slice of an episode transcript.
// Segments are written once by the pipeline, ordered by Idx, and only
// ever removed wholesale on reset.
type TranscriptSegment struct {
	ID        int64    `db:"id"`
	EpisodeID int64    `db:"episode_id"`
	Idx       int      `db:"idx"`
	Text      string   `db:"text"`
	StartSec  float64  `db:"start_sec"`
	EndSec    float64  `db:"end_sec"`
	Words     WordList `db:"words"`
}
