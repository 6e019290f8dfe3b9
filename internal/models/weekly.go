package models

import (
	"time"

	"github.com/lib/pq"
)

// WeeklyAnalysis is a cached cross-episode trend report over a trailing
// time window. Immutable once created.
type WeeklyAnalysis struct {
	ID             int64          `db:"id"`
	WeekStart      time.Time      `db:"week_start"`
	WeekEnd        time.Time      `db:"week_end"`
	Analysis       string         `db:"analysis"`
	TrendingTopics pq.StringArray `db:"trending_topics"`
	EpisodeIDs     Int64List      `db:"episode_ids"`
	CreatedAt      time.Time      `db:"created_at"`
}
