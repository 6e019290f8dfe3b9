package models

import (
	"time"

	"github.com/lib/pq"
)

// Theme is one recurring topic identified in an episode.
type Theme struct {
	Theme       string `json:"theme"`
	Description string `json:"description"`
}

// EpisodeAnalysis holds the AI analysis for one episode. At most one
// exists per episode; it is created at pipeline completion and deleted
// on reset.
type EpisodeAnalysis struct {
	ID        int64          `db:"id"`
	EpisodeID int64          `db:"episode_id"`
	Summary   string         `db:"summary"`
	Tags      pq.StringArray `db:"tags"`
	Themes    ThemeList      `db:"themes"`
	Sentiment string         `db:"sentiment"`
	KeyQuotes pq.StringArray `db:"key_quotes"`
	CreatedAt time.Time      `db:"created_at"`
}
