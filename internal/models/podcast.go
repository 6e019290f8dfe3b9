package models

import "time"

// Podcast is a tracked show whose feed is polled for new episodes.
type Podcast struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	FeedURL   string    `db:"feed_url"`
	CreatedAt time.Time `db:"created_at"`
}
