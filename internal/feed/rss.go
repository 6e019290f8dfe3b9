package feed

import (
	"fmt"
	"net/http"
	"os"

	"github.com/eduncan911/podcast"

	"podscribe/internal/models"
)

func getBaseURL(r *http.Request) string {
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		return baseURL
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// GenerateRSS renders the analyzed-episode feed for one show: completed
// episodes with their AI summaries as item descriptions.
func GenerateRSS(show *models.Podcast, episodes []models.Episode, analyses map[int64]models.EpisodeAnalysis, r *http.Request) (string, error) {
	baseURL := getBaseURL(r)

	p := podcast.New(
		show.Title,
		fmt.Sprintf("%s/podcasts/%d/rss", baseURL, show.ID),
		fmt.Sprintf("Transcribed and analyzed episodes of %s.", show.Title),
		&show.CreatedAt, nil,
	)

	for _, episode := range episodes {
		pubDate := episode.PublishedAt
		item := podcast.Item{
			Title:       episode.Title,
			Description: episode.Title,
			PubDate:     &pubDate,
		}
		if a, ok := analyses[episode.ID]; ok && a.Summary != "" {
			item.Description = a.Summary
		}
		if episode.BlobKey != nil {
			item.AddEnclosure(fmt.Sprintf("%s/audio/%s", baseURL, *episode.BlobKey), podcast.MP3, 0)
		}
		if _, err := p.AddItem(item); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}
