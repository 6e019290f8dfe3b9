package db

import (
	"context"

	"podscribe/internal/models"
)

// InsertAnalysis creates the episode's analysis record. The unique
// constraint on episode_id plus the upsert makes a replayed persist step
// a no-op overwrite rather than an error.
func (s *Store) InsertAnalysis(ctx context.Context, a models.EpisodeAnalysis) (models.EpisodeAnalysis, error) {
	out := models.EpisodeAnalysis{}
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO episode_analyses (episode_id, summary, tags, themes, sentiment, key_quotes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (episode_id) DO UPDATE
		SET summary = EXCLUDED.summary, tags = EXCLUDED.tags, themes = EXCLUDED.themes,
		    sentiment = EXCLUDED.sentiment, key_quotes = EXCLUDED.key_quotes
		RETURNING *`,
		a.EpisodeID, a.Summary, a.Tags, a.Themes, a.Sentiment, a.KeyQuotes)
	return out, err
}

func (s *Store) GetAnalysisByEpisode(ctx context.Context, episodeID int64) (models.EpisodeAnalysis, error) {
	a := models.EpisodeAnalysis{}
	err := s.db.GetContext(ctx, &a, "SELECT * FROM episode_analyses WHERE episode_id = $1", episodeID)
	return a, err
}

func (s *Store) DeleteAnalysis(ctx context.Context, episodeID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM episode_analyses WHERE episode_id = $1", episodeID)
	return err
}
