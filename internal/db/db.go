// Package db is the relational record store for podcasts, episodes,
// transcript segments, analyses and pipeline step records.
package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // database driver
)

// Store wraps the database handle. It is constructed once and passed to
// every component that persists state.
type Store struct {
	db *sqlx.DB
}

// New wraps an existing handle; used by tests with sqlmock.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Connect opens and pings a postgres connection.
func Connect(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }
