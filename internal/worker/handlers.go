// Package worker binds asynq task deliveries to the pipeline, the feed
// poller and the weekly aggregator.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"podscribe/internal/control"
	"podscribe/internal/feed"
	"podscribe/internal/logger"
	"podscribe/internal/models"
	"podscribe/internal/weekly"
	"podscribe/pkg/tasks"
)

// EpisodeRunner runs one episode pipeline under a run id.
type EpisodeRunner interface {
	Run(ctx context.Context, episodeID int64, runID string) error
}

// WeeklyGenerator produces the weekly trend report.
type WeeklyGenerator interface {
	Generate(ctx context.Context, forceRefresh bool) (*weekly.Result, error)
}

// FeedSource lists a show's current feed items.
type FeedSource interface {
	FetchItems(ctx context.Context, feedURL string) ([]feed.Item, error)
}

// Store is the slice of the record store the poll handler needs.
type Store interface {
	ListPodcasts(ctx context.Context) ([]models.Podcast, error)
	GetEpisodeByGUID(ctx context.Context, guid string) (models.Episode, error)
	CreateEpisode(ctx context.Context, podcastID int64, guid, title, audioURL string, publishedAt time.Time) (models.Episode, error)
}

type TaskHandler struct {
	store    Store
	pipeline EpisodeRunner
	control  *control.Plane
	weekly   WeeklyGenerator
	feeds    FeedSource
	log      *logger.Logger
}

func NewTaskHandler(store Store, pipeline EpisodeRunner, plane *control.Plane, weeklyGen WeeklyGenerator, feeds FeedSource, lg *logger.Logger) *TaskHandler {
	return &TaskHandler{
		store:    store,
		pipeline: pipeline,
		control:  plane,
		weekly:   weeklyGen,
		feeds:    feeds,
		log:      lg.Module("worker"),
	}
}

// HandleProcessEpisodeTask runs the episode pipeline. The asynq task id
// doubles as the pipeline run id: a redelivery of the same task replays
// the run and the step log skips completed work. Terminal pipeline
// failures are already recorded on the episode, so asynq must not retry
// them again.
func (h *TaskHandler) HandleProcessEpisodeTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.ProcessEpisodeTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	runID, _ := asynq.GetTaskID(ctx)
	h.log.WithField("episode_id", p.EpisodeID).WithField("run_id", runID).Info("processing episode")

	if err := h.pipeline.Run(ctx, p.EpisodeID, runID); err != nil {
		return fmt.Errorf("process episode %d: %v: %w", p.EpisodeID, err, asynq.SkipRetry)
	}
	return nil
}

// HandlePollPodcastsTask checks every tracked show's feed, records
// unseen episodes, and triggers a pipeline for each new one.
func (h *TaskHandler) HandlePollPodcastsTask(ctx context.Context, t *asynq.Task) error {
	podcasts, err := h.store.ListPodcasts(ctx)
	if err != nil {
		return fmt.Errorf("list podcasts: %w", err)
	}

	for _, p := range podcasts {
		items, err := h.feeds.FetchItems(ctx, p.FeedURL)
		if err != nil {
			h.log.WithError(err).WithField("podcast_id", p.ID).Warn("feed fetch failed")
			continue
		}

		for _, item := range items {
			if _, err := h.store.GetEpisodeByGUID(ctx, item.GUID); err == nil {
				continue
			}

			episode, err := h.store.CreateEpisode(ctx, p.ID, item.GUID, item.Title, item.AudioURL, item.PublishedAt)
			if err != nil {
				h.log.WithError(err).WithField("guid", item.GUID).Warn("could not create episode")
				continue
			}

			if _, err := h.control.Trigger(ctx, episode.ID); err != nil && !errors.Is(err, control.ErrAlreadyRunning) {
				h.log.WithError(err).WithField("episode_id", episode.ID).Warn("could not trigger pipeline")
			}
		}
	}
	return nil
}

// HandleWeeklyAnalysisTask refreshes the weekly report on schedule. An
// empty window is a normal outcome, not a task failure.
func (h *TaskHandler) HandleWeeklyAnalysisTask(ctx context.Context, t *asynq.Task) error {
	result, err := h.weekly.Generate(ctx, false)
	if errors.Is(err, weekly.ErrNoEpisodes) {
		h.log.Info("no completed episodes this week, skipping weekly analysis")
		return nil
	}
	if err != nil {
		return fmt.Errorf("generate weekly analysis: %w", err)
	}

	h.log.WithField("episodes", result.EpisodeCount).WithField("from_cache", result.FromCache).Info("weekly analysis ready")
	return nil
}
