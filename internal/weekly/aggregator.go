// Package weekly builds the cached cross-episode trend report.
package weekly

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"podscribe/internal/ai"
	"podscribe/internal/config"
	"podscribe/internal/db"
	"podscribe/internal/logger"
	"podscribe/internal/models"
)

// ErrNoEpisodes means the window holds no completed, analyzed episodes.
// It is a user-facing empty state, not a pipeline failure.
var ErrNoEpisodes = errors.New("no completed episodes to analyze this week")

// Store is the slice of the record store the aggregator reads and
// writes.
type Store interface {
	LatestWeeklyAnalysis(ctx context.Context) (models.WeeklyAnalysis, error)
	ListAnalyzedEpisodes(ctx context.Context, from, to time.Time) ([]db.AnalyzedEpisode, error)
	InsertWeeklyAnalysis(ctx context.Context, w models.WeeklyAnalysis) (models.WeeklyAnalysis, error)
}

// Result is a weekly report plus how it was produced.
type Result struct {
	Analysis     models.WeeklyAnalysis
	EpisodeCount int
	FromCache    bool
}

type Aggregator struct {
	store Store
	llm   ai.TextGenerator
	cfg   *config.Config
	log   *logger.Logger

	// now is swapped in tests.
	now func() time.Time
}

func New(store Store, llm ai.TextGenerator, cfg *config.Config, lg *logger.Logger) *Aggregator {
	return &Aggregator{
		store: store,
		llm:   llm,
		cfg:   cfg,
		log:   lg.Module("weekly"),
		now:   time.Now,
	}
}

// Generate returns the trend report for the trailing window. A report
// younger than the cache TTL is returned as-is unless forceRefresh is
// set; otherwise a fresh one is generated and persisted.
func (a *Aggregator) Generate(ctx context.Context, forceRefresh bool) (*Result, error) {
	if !forceRefresh {
		latest, err := a.store.LatestWeeklyAnalysis(ctx)
		switch {
		case err == nil && a.now().Sub(latest.CreatedAt) < a.cfg.WeeklyCacheTTL:
			a.log.WithField("created_at", latest.CreatedAt).Debug("serving cached weekly analysis")
			return &Result{Analysis: latest, EpisodeCount: len(latest.EpisodeIDs), FromCache: true}, nil
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("load cached weekly analysis: %w", err)
		}
	}

	end := a.now()
	start := end.Add(-a.cfg.WeeklyWindow)

	episodes, err := a.store.ListAnalyzedEpisodes(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list analyzed episodes: %w", err)
	}
	if len(episodes) == 0 {
		return nil, ErrNoEpisodes
	}

	reply, err := a.llm.Complete(ctx, weeklySystemPrompt, buildWeeklyPrompt(episodes))
	if err != nil {
		return nil, fmt.Errorf("weekly completion: %w", err)
	}
	body, topics := parseWeeklyReply(reply)

	ids := make(models.Int64List, 0, len(episodes))
	for _, ep := range episodes {
		ids = append(ids, ep.EpisodeID)
	}

	stored, err := a.store.InsertWeeklyAnalysis(ctx, models.WeeklyAnalysis{
		WeekStart:      start,
		WeekEnd:        end,
		Analysis:       body,
		TrendingTopics: topics,
		EpisodeIDs:     ids,
	})
	if err != nil {
		return nil, fmt.Errorf("persist weekly analysis: %w", err)
	}

	a.log.WithField("episodes", len(episodes)).Info("generated weekly analysis")
	return &Result{Analysis: stored, EpisodeCount: len(episodes), FromCache: false}, nil
}
