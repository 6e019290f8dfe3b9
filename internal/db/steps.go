package db

import (
	"context"
	"database/sql"
	"errors"
)

// GetStep looks up a memoized step result for a pipeline run.
func (s *Store) GetStep(ctx context.Context, runID, name string) ([]byte, bool, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM pipeline_steps WHERE run_id = $1 AND step_name = $2", runID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// PutStep records a step result. The log is append-only: a concurrent
// duplicate write keeps the first value.
func (s *Store) PutStep(ctx context.Context, runID, name string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pipeline_steps (run_id, step_name, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id, step_name) DO NOTHING`,
		runID, name, value)
	return err
}
