package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeProcessEpisode = "episode:process"
	TypePollPodcasts   = "podcasts:poll"
	TypeWeeklyAnalysis = "weekly:generate"
)

// QueueDefault is the queue pipeline tasks run on.
const QueueDefault = "default"

type ProcessEpisodeTaskPayload struct {
	EpisodeID int64
}

func NewProcessEpisodeTask(episodeID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessEpisodeTaskPayload{EpisodeID: episodeID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProcessEpisode, payload), nil
}

func NewPollPodcastsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypePollPodcasts, nil), nil
}

func NewWeeklyAnalysisTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeWeeklyAnalysis, nil), nil
}
