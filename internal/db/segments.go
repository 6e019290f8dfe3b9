package db

import (
	"context"

	"podscribe/internal/models"
)

// ReplaceSegments deletes any existing segments for the episode and
// inserts the new set in index order, in one transaction. Re-running the
// persist step is therefore safe.
func (s *Store) ReplaceSegments(ctx context.Context, episodeID int64, segments []models.TranscriptSegment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM transcript_segments WHERE episode_id = $1", episodeID); err != nil {
		return err
	}
	for _, seg := range segments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transcript_segments (episode_id, idx, text, start_sec, end_sec, words)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			episodeID, seg.Idx, seg.Text, seg.StartSec, seg.EndSec, seg.Words)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListSegments(ctx context.Context, episodeID int64) ([]models.TranscriptSegment, error) {
	var segments []models.TranscriptSegment
	err := s.db.SelectContext(ctx, &segments,
		"SELECT * FROM transcript_segments WHERE episode_id = $1 ORDER BY idx", episodeID)
	return segments, err
}

func (s *Store) DeleteSegments(ctx context.Context, episodeID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM transcript_segments WHERE episode_id = $1", episodeID)
	return err
}
