package control

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscribe/internal/logger"
	"podscribe/internal/models"
)

type fakeStore struct {
	episodes        map[int64]models.Episode
	inProgress      []models.Episode
	taskIDs         map[int64]string
	resets          []int64
	segmentDeletes  []int64
	analysisDeletes []int64
}

func newFakeStore(episodes ...models.Episode) *fakeStore {
	s := &fakeStore{
		episodes: make(map[int64]models.Episode),
		taskIDs:  make(map[int64]string),
	}
	for _, ep := range episodes {
		s.episodes[ep.ID] = ep
	}
	return s
}

func (s *fakeStore) GetEpisode(ctx context.Context, id int64) (models.Episode, error) {
	return s.episodes[id], nil
}

func (s *fakeStore) SetEpisodeTask(ctx context.Context, id int64, taskID string) error {
	s.taskIDs[id] = taskID
	ep := s.episodes[id]
	ep.TaskID = &taskID
	s.episodes[id] = ep
	return nil
}

func (s *fakeStore) ResetEpisodeState(ctx context.Context, id int64) error {
	s.resets = append(s.resets, id)
	ep := s.episodes[id]
	ep.Status = models.StatusPending
	ep.TaskID = nil
	s.episodes[id] = ep
	return nil
}

func (s *fakeStore) DeleteSegments(ctx context.Context, episodeID int64) error {
	s.segmentDeletes = append(s.segmentDeletes, episodeID)
	return nil
}

func (s *fakeStore) DeleteAnalysis(ctx context.Context, episodeID int64) error {
	s.analysisDeletes = append(s.analysisDeletes, episodeID)
	return nil
}

func (s *fakeStore) ListEpisodesInProgress(ctx context.Context) ([]models.Episode, error) {
	return s.inProgress, nil
}

type fakeEnqueuer struct {
	enqueued []*asynq.Task
	nextID   string
}

func (e *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	e.enqueued = append(e.enqueued, task)
	return &asynq.TaskInfo{ID: e.nextID, Queue: "default"}, nil
}

type fakeAborter struct {
	cancelled []string
	deleted   []string
}

func (a *fakeAborter) CancelProcessing(taskID string) error {
	a.cancelled = append(a.cancelled, taskID)
	return nil
}

func (a *fakeAborter) DeleteTask(queue, taskID string) error {
	a.deleted = append(a.deleted, taskID)
	return nil
}

func taskID(id string) *string { return &id }

func TestTriggerEnqueuesAndRecordsInstance(t *testing.T) {
	store := newFakeStore(models.Episode{ID: 5, Status: models.StatusPending})
	enq := &fakeEnqueuer{nextID: "task-abc"}
	plane := New(store, enq, &fakeAborter{}, logger.New())

	id, err := plane.Trigger(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, "task-abc", id)
	assert.Len(t, enq.enqueued, 1)
	assert.Equal(t, "task-abc", store.taskIDs[5])
}

func TestTriggerRejectsEpisodeWithLiveInstance(t *testing.T) {
	store := newFakeStore(models.Episode{ID: 5, Status: models.StatusTranscribing, TaskID: taskID("task-live")})
	enq := &fakeEnqueuer{nextID: "task-new"}
	plane := New(store, enq, &fakeAborter{}, logger.New())

	_, err := plane.Trigger(context.Background(), 5)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	assert.Empty(t, enq.enqueued, "rejected trigger must not enqueue")
	assert.Empty(t, store.taskIDs)
}

func TestCancelAbortsAndResetsKeepingArtifacts(t *testing.T) {
	store := newFakeStore(models.Episode{ID: 5, Status: models.StatusDownloading, TaskID: taskID("task-live")})
	aborter := &fakeAborter{}
	plane := New(store, &fakeEnqueuer{}, aborter, logger.New())

	require.NoError(t, plane.Cancel(context.Background(), 5))

	assert.Equal(t, []string{"task-live"}, aborter.cancelled)
	assert.Equal(t, []string{"task-live"}, aborter.deleted)
	assert.Equal(t, []int64{5}, store.resets)
	assert.Empty(t, store.segmentDeletes, "cancel keeps transcript artifacts")
	assert.Empty(t, store.analysisDeletes)

	ep := store.episodes[5]
	assert.Equal(t, models.StatusPending, ep.Status)
	assert.Nil(t, ep.TaskID)
}

func TestCancelWithoutInstanceStillResets(t *testing.T) {
	store := newFakeStore(models.Episode{ID: 5, Status: models.StatusError})
	aborter := &fakeAborter{}
	plane := New(store, &fakeEnqueuer{}, aborter, logger.New())

	require.NoError(t, plane.Cancel(context.Background(), 5))

	assert.Empty(t, aborter.cancelled)
	assert.Equal(t, []int64{5}, store.resets)
}

func TestResetDeletesArtifactsFromAnyStatus(t *testing.T) {
	store := newFakeStore(models.Episode{ID: 5, Status: models.StatusError})
	plane := New(store, &fakeEnqueuer{}, &fakeAborter{}, logger.New())

	require.NoError(t, plane.Reset(context.Background(), 5))

	assert.Equal(t, []int64{5}, store.segmentDeletes)
	assert.Equal(t, []int64{5}, store.analysisDeletes)
	assert.Equal(t, []int64{5}, store.resets)
	assert.Equal(t, models.StatusPending, store.episodes[5].Status)
}

func TestCancelAllSweepsEveryInProgressEpisode(t *testing.T) {
	store := newFakeStore(
		models.Episode{ID: 1, Status: models.StatusDownloading, TaskID: taskID("t-1")},
		models.Episode{ID: 2, Status: models.StatusAnalyzing, TaskID: taskID("t-2")},
	)
	store.inProgress = []models.Episode{store.episodes[1], store.episodes[2]}
	aborter := &fakeAborter{}
	plane := New(store, &fakeEnqueuer{}, aborter, logger.New())

	count, err := plane.CancelAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.ElementsMatch(t, []string{"t-1", "t-2"}, aborter.cancelled)
	assert.ElementsMatch(t, []int64{1, 2}, store.resets)
}
