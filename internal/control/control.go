// Package control tracks the running pipeline instance per episode and
// exposes the trigger, cancel and reset operations the admin surface
// uses.
package control

import (
	"context"
	"errors"
	"fmt"

	"podscribe/internal/logger"
	"podscribe/internal/models"
	"podscribe/pkg/tasks"
)

// ErrAlreadyRunning rejects a trigger for an episode that already has a
// recorded pipeline instance.
var ErrAlreadyRunning = errors.New("a pipeline instance is already recorded for this episode")

// Store is the slice of the record store the control plane touches.
type Store interface {
	GetEpisode(ctx context.Context, id int64) (models.Episode, error)
	SetEpisodeTask(ctx context.Context, id int64, taskID string) error
	ResetEpisodeState(ctx context.Context, id int64) error
	DeleteSegments(ctx context.Context, episodeID int64) error
	DeleteAnalysis(ctx context.Context, episodeID int64) error
	ListEpisodesInProgress(ctx context.Context) ([]models.Episode, error)
}

// Aborter is the cancellation surface of the job-run primitive.
// Implemented by asynq.Inspector.
type Aborter interface {
	CancelProcessing(taskID string) error
	DeleteTask(queue, taskID string) error
}

type Plane struct {
	store    Store
	enqueuer tasks.TaskEnqueuer
	aborter  Aborter
	log      *logger.Logger
}

func New(store Store, enqueuer tasks.TaskEnqueuer, aborter Aborter, lg *logger.Logger) *Plane {
	return &Plane{store: store, enqueuer: enqueuer, aborter: aborter, log: lg.Module("control")}
}

// Trigger starts a pipeline run for the episode and records its
// instance id. Exactly one instance per episode: a recorded live
// instance rejects the trigger with no state change.
func (p *Plane) Trigger(ctx context.Context, episodeID int64) (string, error) {
	ep, err := p.store.GetEpisode(ctx, episodeID)
	if err != nil {
		return "", fmt.Errorf("load episode %d: %w", episodeID, err)
	}
	if ep.TaskID != nil {
		return "", ErrAlreadyRunning
	}

	task, err := tasks.NewProcessEpisodeTask(ep.ID)
	if err != nil {
		return "", err
	}
	info, err := p.enqueuer.Enqueue(task)
	if err != nil {
		return "", fmt.Errorf("enqueue pipeline task: %w", err)
	}
	if err := p.store.SetEpisodeTask(ctx, ep.ID, info.ID); err != nil {
		return "", fmt.Errorf("record pipeline instance: %w", err)
	}

	p.log.WithField("episode_id", episodeID).WithField("task_id", info.ID).Info("pipeline triggered")
	return info.ID, nil
}

// Cancel best-effort aborts the episode's recorded instance and forces
// the episode back to pending. The abort is not confirmed: an instance
// whose external call is already in flight may still write its step
// output, which the idempotent step design tolerates. Partial artifacts
// (e.g. a downloaded blob) are kept; the download step skips them on the
// next run.
func (p *Plane) Cancel(ctx context.Context, episodeID int64) error {
	ep, err := p.store.GetEpisode(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("load episode %d: %w", episodeID, err)
	}
	p.abort(ep)
	return p.store.ResetEpisodeState(ctx, episodeID)
}

// Reset deletes the episode's segments and analysis and forces it back
// to pending, regardless of current status. Used to force a full
// reprocess.
func (p *Plane) Reset(ctx context.Context, episodeID int64) error {
	ep, err := p.store.GetEpisode(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("load episode %d: %w", episodeID, err)
	}
	p.abort(ep)
	if err := p.store.DeleteSegments(ctx, episodeID); err != nil {
		return fmt.Errorf("delete segments: %w", err)
	}
	if err := p.store.DeleteAnalysis(ctx, episodeID); err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	return p.store.ResetEpisodeState(ctx, episodeID)
}

// CancelAll sweeps every in-progress episode, aborting and resetting
// each, and returns the number processed.
func (p *Plane) CancelAll(ctx context.Context) (int, error) {
	episodes, err := p.store.ListEpisodesInProgress(ctx)
	if err != nil {
		return 0, fmt.Errorf("list in-progress episodes: %w", err)
	}

	count := 0
	for _, ep := range episodes {
		p.abort(ep)
		if err := p.store.ResetEpisodeState(ctx, ep.ID); err != nil {
			p.log.WithError(err).WithField("episode_id", ep.ID).Error("could not reset episode")
			continue
		}
		count++
	}
	return count, nil
}

// abort is best-effort: the instance may have finished, never started,
// or not exist at all, and none of that should block the reset.
func (p *Plane) abort(ep models.Episode) {
	if ep.TaskID == nil {
		return
	}
	if err := p.aborter.CancelProcessing(*ep.TaskID); err != nil {
		p.log.WithError(err).WithField("task_id", *ep.TaskID).Debug("cancel processing failed")
	}
	if err := p.aborter.DeleteTask(tasks.QueueDefault, *ep.TaskID); err != nil {
		p.log.WithError(err).WithField("task_id", *ep.TaskID).Debug("delete task failed")
	}
}
