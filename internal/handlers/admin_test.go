package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscribe/internal/config"
	"podscribe/internal/control"
	"podscribe/internal/db"
	"podscribe/internal/logger"
	"podscribe/internal/models"
	"podscribe/internal/weekly"
)

type mockTaskEnqueuer struct {
	enqueuedTasks []*asynq.Task
}

func (m *mockTaskEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.enqueuedTasks = append(m.enqueuedTasks, task)
	return &asynq.TaskInfo{ID: "test-task-id", Queue: "default"}, nil
}

type noopAborter struct{}

func (noopAborter) CancelProcessing(taskID string) error  { return nil }
func (noopAborter) DeleteTask(queue, taskID string) error { return nil }

type staticLLM struct{}

func (staticLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "report body", nil
}

func newTestAdmin(t *testing.T) (*mux.Router, sqlmock.Sqlmock, *mockTaskEnqueuer) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { mockDb.Close() })

	store := db.New(sqlx.NewDb(mockDb, "sqlmock"))
	lg := logger.New()
	enq := &mockTaskEnqueuer{}
	plane := control.New(store, enq, noopAborter{}, lg)
	cfg := &config.Config{WeeklyWindow: 7 * 24 * time.Hour, WeeklyCacheTTL: 24 * time.Hour}
	weeklyAgg := weekly.New(store, staticLLM{}, cfg, lg)

	router := mux.NewRouter()
	NewAdmin(store, plane, weeklyAgg, lg).Register(router)
	return router, mock, enq
}

func episodeRows(ep models.Episode) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "podcast_id", "guid", "title", "audio_url", "blob_key",
		"published_at", "duration_seconds", "status", "task_id", "error_message", "created_at",
	}).AddRow(
		ep.ID, ep.PodcastID, ep.GUID, ep.Title, ep.AudioURL, ep.BlobKey,
		ep.PublishedAt, ep.DurationSeconds, ep.Status, ep.TaskID, ep.ErrorMessage, ep.CreatedAt,
	)
}

func doRequest(router *mux.Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestCreatePodcast(t *testing.T) {
	router, mock, _ := newTestAdmin(t)

	rows := sqlmock.NewRows([]string{"id", "title", "feed_url", "created_at"}).
		AddRow(1, "Test Show", "http://feeds/show", time.Now())
	mock.ExpectQuery(`INSERT INTO podcasts \(title, feed_url\)`).
		WithArgs("Test Show", "http://feeds/show").
		WillReturnRows(rows)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/podcasts",
		strings.NewReader(`{"title":"Test Show","feed_url":"http://feeds/show"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var show models.Podcast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &show))
	assert.Equal(t, int64(1), show.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePodcastRejectsMissingFields(t *testing.T) {
	router, _, _ := newTestAdmin(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/podcasts", strings.NewReader(`{"title":"only"}`))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerEpisodeAccepted(t *testing.T) {
	router, mock, enq := newTestAdmin(t)

	ep := models.Episode{ID: 5, PodcastID: 1, GUID: "g", Status: models.StatusPending, PublishedAt: time.Now(), CreatedAt: time.Now()}
	mock.ExpectQuery(`SELECT \* FROM episodes WHERE id = \$1`).WithArgs(int64(5)).WillReturnRows(episodeRows(ep))
	mock.ExpectExec(`UPDATE episodes SET task_id = \$1 WHERE id = \$2`).
		WithArgs("test-task-id", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doRequest(router, http.MethodPost, "/api/episodes/5/trigger")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Len(t, enq.enqueuedTasks, 1)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test-task-id", body["task_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerEpisodeConflictWhenInstanceRecorded(t *testing.T) {
	router, mock, enq := newTestAdmin(t)

	taskID := "live-task"
	ep := models.Episode{ID: 5, PodcastID: 1, GUID: "g", Status: models.StatusTranscribing, TaskID: &taskID, PublishedAt: time.Now(), CreatedAt: time.Now()}
	mock.ExpectQuery(`SELECT \* FROM episodes WHERE id = \$1`).WithArgs(int64(5)).WillReturnRows(episodeRows(ep))

	rec := doRequest(router, http.MethodPost, "/api/episodes/5/trigger")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, enq.enqueuedTasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerEpisodeNotFound(t *testing.T) {
	router, mock, _ := newTestAdmin(t)

	mock.ExpectQuery(`SELECT \* FROM episodes WHERE id = \$1`).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)

	rec := doRequest(router, http.MethodPost, "/api/episodes/99/trigger")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriggerEpisodeInvalidID(t *testing.T) {
	router, _, _ := newTestAdmin(t)

	rec := doRequest(router, http.MethodPost, "/api/episodes/abc/trigger")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelAllReportsCount(t *testing.T) {
	router, mock, _ := newTestAdmin(t)

	taskID := "t-1"
	ep := models.Episode{ID: 3, PodcastID: 1, GUID: "g", Status: models.StatusDownloading, TaskID: &taskID, PublishedAt: time.Now(), CreatedAt: time.Now()}
	mock.ExpectQuery(`SELECT \* FROM episodes WHERE status = ANY\(\$1\) ORDER BY id`).WillReturnRows(episodeRows(ep))
	mock.ExpectExec(`UPDATE episodes SET status = \$1, task_id = NULL, error_message = NULL WHERE id = \$2`).
		WithArgs(models.StatusPending, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doRequest(router, http.MethodPost, "/api/pipelines/cancel-all")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body["cancelled"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSegments(t *testing.T) {
	router, mock, _ := newTestAdmin(t)

	rows := sqlmock.NewRows([]string{"id", "episode_id", "idx", "text", "start_sec", "end_sec", "words"}).
		AddRow(1, 5, 0, "Hello world.", 0.0, 2.5, []byte(`[{"word":"Hello","start":0,"end":1}]`))
	mock.ExpectQuery(`SELECT \* FROM transcript_segments WHERE episode_id = \$1 ORDER BY idx`).
		WithArgs(int64(5)).WillReturnRows(rows)

	rec := doRequest(router, http.MethodGet, "/api/episodes/5/segments")

	assert.Equal(t, http.StatusOK, rec.Code)
	var segments []models.TranscriptSegment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &segments))
	require.Len(t, segments, 1)
	assert.Equal(t, "Hello world.", segments[0].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnalysisNotFound(t *testing.T) {
	router, mock, _ := newTestAdmin(t)

	mock.ExpectQuery(`SELECT \* FROM episode_analyses WHERE episode_id = \$1`).
		WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)

	rec := doRequest(router, http.MethodGet, "/api/episodes/5/analysis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetWeeklyEmptyWindow(t *testing.T) {
	router, mock, _ := newTestAdmin(t)

	mock.ExpectQuery(`SELECT \* FROM weekly_analyses ORDER BY created_at DESC LIMIT 1`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`SELECT e\.id AS episode_id`).
		WillReturnRows(sqlmock.NewRows([]string{"episode_id", "episode_title", "podcast_title", "summary", "tags", "themes"}))

	rec := doRequest(router, http.MethodGet, "/api/weekly")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["empty"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
