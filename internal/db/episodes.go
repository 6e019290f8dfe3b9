package db

import (
	"context"
	"time"

	"github.com/lib/pq"

	"podscribe/internal/models"
)

func (s *Store) CreateEpisode(ctx context.Context, podcastID int64, guid, title, audioURL string, publishedAt time.Time) (models.Episode, error) {
	e := models.Episode{}
	err := s.db.GetContext(ctx, &e, `
		INSERT INTO episodes (podcast_id, guid, title, audio_url, published_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING *`,
		podcastID, guid, title, audioURL, publishedAt)
	return e, err
}

func (s *Store) GetEpisode(ctx context.Context, id int64) (models.Episode, error) {
	e := models.Episode{}
	err := s.db.GetContext(ctx, &e, "SELECT * FROM episodes WHERE id = $1", id)
	return e, err
}

func (s *Store) GetEpisodeByGUID(ctx context.Context, guid string) (models.Episode, error) {
	e := models.Episode{}
	err := s.db.GetContext(ctx, &e, "SELECT * FROM episodes WHERE guid = $1", guid)
	return e, err
}

func (s *Store) UpdateEpisodeStatus(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE episodes SET status = $1 WHERE id = $2", status, id)
	return err
}

func (s *Store) SetEpisodeBlobKey(ctx context.Context, id int64, key string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE episodes SET blob_key = $1 WHERE id = $2", key, id)
	return err
}

func (s *Store) SetEpisodeDuration(ctx context.Context, id int64, seconds int) error {
	_, err := s.db.ExecContext(ctx, "UPDATE episodes SET duration_seconds = $1 WHERE id = $2", seconds, id)
	return err
}

func (s *Store) SetEpisodeTask(ctx context.Context, id int64, taskID string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE episodes SET task_id = $1 WHERE id = $2", taskID, id)
	return err
}

// MarkEpisodeError records a terminal pipeline failure. The episode
// stays inspectable and can be re-triggered or reset.
func (s *Store) MarkEpisodeError(ctx context.Context, id int64, message string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE episodes SET status = $1, error_message = $2, task_id = NULL WHERE id = $3`,
		models.StatusError, message, id)
	return err
}

func (s *Store) MarkEpisodeComplete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE episodes SET status = $1, error_message = NULL, task_id = NULL WHERE id = $2`,
		models.StatusComplete, id)
	return err
}

// ResetEpisodeState forces an episode back to pending, clearing its
// instance id and error. Derived artifacts are handled separately.
func (s *Store) ResetEpisodeState(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE episodes SET status = $1, task_id = NULL, error_message = NULL WHERE id = $2`,
		models.StatusPending, id)
	return err
}

func (s *Store) ListEpisodesInProgress(ctx context.Context) ([]models.Episode, error) {
	var episodes []models.Episode
	err := s.db.SelectContext(ctx, &episodes,
		"SELECT * FROM episodes WHERE status = ANY($1) ORDER BY id",
		pq.Array(models.InProgressStatuses))
	return episodes, err
}

func (s *Store) ListEpisodesByPodcast(ctx context.Context, podcastID int64, status string) ([]models.Episode, error) {
	var episodes []models.Episode
	err := s.db.SelectContext(ctx, &episodes, `
		SELECT * FROM episodes WHERE podcast_id = $1 AND status = $2
		ORDER BY published_at DESC`, podcastID, status)
	return episodes, err
}

// AnalyzedEpisode is the joined view the weekly aggregator consumes.
type AnalyzedEpisode struct {
	EpisodeID    int64            `db:"episode_id"`
	EpisodeTitle string           `db:"episode_title"`
	PodcastTitle string           `db:"podcast_title"`
	Summary      string           `db:"summary"`
	Tags         pq.StringArray   `db:"tags"`
	Themes       models.ThemeList `db:"themes"`
}

// ListAnalyzedEpisodes returns completed episodes published inside the
// window, each joined to its analysis.
func (s *Store) ListAnalyzedEpisodes(ctx context.Context, from, to time.Time) ([]AnalyzedEpisode, error) {
	var episodes []AnalyzedEpisode
	err := s.db.SelectContext(ctx, &episodes, `
		SELECT e.id AS episode_id, e.title AS episode_title, p.title AS podcast_title,
		       a.summary, a.tags, a.themes
		FROM episodes e
		JOIN podcasts p ON p.id = e.podcast_id
		JOIN episode_analyses a ON a.episode_id = e.id
		WHERE e.status = $1 AND e.published_at >= $2 AND e.published_at <= $3
		ORDER BY e.published_at`,
		models.StatusComplete, from, to)
	return episodes, err
}
