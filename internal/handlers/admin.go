// Package handlers exposes the admin surface: pipeline control, report
// and transcript reads, and the analyzed-episode RSS feed.
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"podscribe/internal/control"
	"podscribe/internal/db"
	"podscribe/internal/logger"
	"podscribe/internal/weekly"
)

type Admin struct {
	store  *db.Store
	plane  *control.Plane
	weekly *weekly.Aggregator
	log    *logger.Logger
}

func NewAdmin(store *db.Store, plane *control.Plane, weeklyAgg *weekly.Aggregator, lg *logger.Logger) *Admin {
	return &Admin{store: store, plane: plane, weekly: weeklyAgg, log: lg.Module("admin")}
}

// Register mounts the admin routes on the router.
func (a *Admin) Register(r *mux.Router) {
	r.HandleFunc("/api/podcasts", a.createPodcast).Methods(http.MethodPost)
	r.HandleFunc("/api/episodes/{id}/trigger", a.triggerEpisode).Methods(http.MethodPost)
	r.HandleFunc("/api/episodes/{id}/cancel", a.cancelEpisode).Methods(http.MethodPost)
	r.HandleFunc("/api/episodes/{id}/reset", a.resetEpisode).Methods(http.MethodPost)
	r.HandleFunc("/api/episodes/{id}/segments", a.getSegments).Methods(http.MethodGet)
	r.HandleFunc("/api/episodes/{id}/analysis", a.getAnalysis).Methods(http.MethodGet)
	r.HandleFunc("/api/pipelines/cancel-all", a.cancelAll).Methods(http.MethodPost)
	r.HandleFunc("/api/weekly", a.getWeekly).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/podcasts/{id}/rss", a.podcastRSS).Methods(http.MethodGet)
}

func episodeID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *Admin) createPodcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		FeedURL string `json:"feed_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.FeedURL == "" {
		writeError(w, http.StatusBadRequest, "title and feed_url are required")
		return
	}

	show, err := a.store.CreatePodcast(r.Context(), req.Title, req.FeedURL)
	if err != nil {
		a.log.WithError(err).Error("create podcast failed")
		writeError(w, http.StatusInternalServerError, "could not create podcast")
		return
	}
	writeJSON(w, http.StatusCreated, show)
}

func (a *Admin) triggerEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := episodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}

	taskID, err := a.plane.Trigger(r.Context(), id)
	switch {
	case errors.Is(err, control.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "episode not found")
	case err != nil:
		a.log.WithError(err).Error("trigger failed")
		writeError(w, http.StatusInternalServerError, "could not trigger pipeline")
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
	}
}

func (a *Admin) cancelEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := episodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}
	if err := a.plane.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "episode not found")
			return
		}
		a.log.WithError(err).Error("cancel failed")
		writeError(w, http.StatusInternalServerError, "could not cancel pipeline")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
}

func (a *Admin) resetEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := episodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}
	if err := a.plane.Reset(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "episode not found")
			return
		}
		a.log.WithError(err).Error("reset failed")
		writeError(w, http.StatusInternalServerError, "could not reset episode")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
}

func (a *Admin) cancelAll(w http.ResponseWriter, r *http.Request) {
	count, err := a.plane.CancelAll(r.Context())
	if err != nil {
		a.log.WithError(err).Error("cancel-all failed")
		writeError(w, http.StatusInternalServerError, "could not cancel pipelines")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cancelled": count})
}

func (a *Admin) getSegments(w http.ResponseWriter, r *http.Request) {
	id, err := episodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}
	segments, err := a.store.ListSegments(r.Context(), id)
	if err != nil {
		a.log.WithError(err).Error("list segments failed")
		writeError(w, http.StatusInternalServerError, "could not load segments")
		return
	}
	writeJSON(w, http.StatusOK, segments)
}

func (a *Admin) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := episodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid episode id")
		return
	}
	analysis, err := a.store.GetAnalysisByEpisode(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "analysis not found")
			return
		}
		a.log.WithError(err).Error("get analysis failed")
		writeError(w, http.StatusInternalServerError, "could not load analysis")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (a *Admin) getWeekly(w http.ResponseWriter, r *http.Request) {
	force := r.Method == http.MethodPost && r.URL.Query().Get("refresh") == "1"

	result, err := a.weekly.Generate(r.Context(), force)
	if errors.Is(err, weekly.ErrNoEpisodes) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"empty":   true,
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		a.log.WithError(err).Error("weekly generation failed")
		writeError(w, http.StatusInternalServerError, "could not generate weekly analysis")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analysis":          result.Analysis,
		"episodes_analyzed": result.EpisodeCount,
		"from_cache":        result.FromCache,
	})
}
