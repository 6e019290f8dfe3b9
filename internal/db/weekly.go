package db

import (
	"context"

	"podscribe/internal/models"
)

func (s *Store) InsertWeeklyAnalysis(ctx context.Context, w models.WeeklyAnalysis) (models.WeeklyAnalysis, error) {
	out := models.WeeklyAnalysis{}
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO weekly_analyses (week_start, week_end, analysis, trending_topics, episode_ids)
		VALUES ($1, $2, $3, $4, $5) RETURNING *`,
		w.WeekStart, w.WeekEnd, w.Analysis, w.TrendingTopics, w.EpisodeIDs)
	return out, err
}

// LatestWeeklyAnalysis returns the most recently created report, or
// sql.ErrNoRows when none exists yet.
func (s *Store) LatestWeeklyAnalysis(ctx context.Context) (models.WeeklyAnalysis, error) {
	w := models.WeeklyAnalysis{}
	err := s.db.GetContext(ctx, &w,
		"SELECT * FROM weekly_analyses ORDER BY created_at DESC LIMIT 1")
	return w, err
}
