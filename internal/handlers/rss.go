package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"podscribe/internal/feed"
	"podscribe/internal/models"
)

// podcastRSS serves the analyzed-episode feed for one show.
func (a *Admin) podcastRSS(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid podcast id")
		return
	}

	show, err := a.store.GetPodcast(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "podcast not found")
			return
		}
		a.log.WithError(err).Error("get podcast failed")
		writeError(w, http.StatusInternalServerError, "could not load podcast")
		return
	}

	episodes, err := a.store.ListEpisodesByPodcast(r.Context(), id, models.StatusComplete)
	if err != nil {
		a.log.WithError(err).Error("list episodes failed")
		writeError(w, http.StatusInternalServerError, "could not load episodes")
		return
	}

	analyses := make(map[int64]models.EpisodeAnalysis, len(episodes))
	for _, ep := range episodes {
		if analysis, err := a.store.GetAnalysisByEpisode(r.Context(), ep.ID); err == nil {
			analyses[ep.ID] = analysis
		}
	}

	rss, err := feed.GenerateRSS(&show, episodes, analyses, r)
	if err != nil {
		a.log.WithError(err).Error("rss generation failed")
		writeError(w, http.StatusInternalServerError, "could not generate feed")
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(rss))
}
