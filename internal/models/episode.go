package models

import "time"

// Episode statuses. An episode moves forward through these in order;
// only an explicit cancel or reset moves it back to pending.
const (
	StatusPending      = "pending"
	StatusDownloading  = "downloading"
	StatusTranscribing = "transcribing"
	StatusAnalyzing    = "analyzing"
	StatusComplete     = "complete"
	StatusError        = "error"
)

// InProgressStatuses are the states a running pipeline instance can hold.
var InProgressStatuses = []string{StatusDownloading, StatusTranscribing, StatusAnalyzing}

// Episode is one podcast audio item tracked through the pipeline.
type Episode struct {
	ID              int64     `db:"id"`
	PodcastID       int64     `db:"podcast_id"`
	GUID            string    `db:"guid"`
	Title           string    `db:"title"`
	AudioURL        string    `db:"audio_url"`
	BlobKey         *string   `db:"blob_key"`
	PublishedAt     time.Time `db:"published_at"`
	DurationSeconds *int      `db:"duration_seconds"`
	Status          string    `db:"status"`
	TaskID          *string   `db:"task_id"`
	ErrorMessage    *string   `db:"error_message"`
	CreatedAt       time.Time `db:"created_at"`
}
