package db

import (
	"context"

	"podscribe/internal/models"
)

func (s *Store) CreatePodcast(ctx context.Context, title, feedURL string) (models.Podcast, error) {
	p := models.Podcast{}
	err := s.db.GetContext(ctx, &p,
		"INSERT INTO podcasts (title, feed_url) VALUES ($1, $2) RETURNING *", title, feedURL)
	return p, err
}

func (s *Store) GetPodcast(ctx context.Context, id int64) (models.Podcast, error) {
	p := models.Podcast{}
	err := s.db.GetContext(ctx, &p, "SELECT * FROM podcasts WHERE id = $1", id)
	return p, err
}

func (s *Store) ListPodcasts(ctx context.Context) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	err := s.db.SelectContext(ctx, &podcasts, "SELECT * FROM podcasts ORDER BY created_at")
	return podcasts, err
}
