package weekly

import (
	"encoding/json"
	"strings"

	"github.com/lib/pq"

	"podscribe/internal/db"
)

// topicsMarker separates the markdown body from the trailing
// trending-topics JSON array in the model's reply.
const topicsMarker = "TRENDING_TOPICS:"

const weeklySystemPrompt = "You are an editorial analyst reviewing a week of podcast coverage. " +
	"You write concise markdown trend reports across multiple shows."

func buildWeeklyPrompt(episodes []db.AnalyzedEpisode) string {
	var b strings.Builder
	b.WriteString("Here are the podcast episodes analyzed this week:\n\n")
	for i, ep := range episodes {
		b.WriteString("Episode ")
		b.WriteString(strings.TrimSpace(ep.PodcastTitle))
		b.WriteString(" - ")
		b.WriteString(strings.TrimSpace(ep.EpisodeTitle))
		b.WriteString("\nSummary: ")
		b.WriteString(ep.Summary)
		if len(ep.Tags) > 0 {
			b.WriteString("\nTags: ")
			b.WriteString(strings.Join(ep.Tags, ", "))
		}
		for _, t := range ep.Themes {
			b.WriteString("\nTheme: ")
			b.WriteString(t.Theme)
			b.WriteString(" - ")
			b.WriteString(t.Description)
		}
		if i < len(episodes)-1 {
			b.WriteString("\n\n")
		}
	}
	b.WriteString("\n\nWrite a markdown analysis of the week's cross-episode trends, ")
	b.WriteString("common threads, and notable outliers. End your reply with a final line of the form:\n")
	b.WriteString(topicsMarker + ` ["topic one", "topic two", ...]`)
	return b.String()
}

// parseWeeklyReply splits the reply into the markdown body and the
// trailing trending-topic list. A missing or malformed topics line
// leaves the list empty; the body is never lost.
func parseWeeklyReply(reply string) (string, pq.StringArray) {
	idx := strings.LastIndex(reply, topicsMarker)
	if idx < 0 {
		return strings.TrimSpace(reply), pq.StringArray{}
	}

	body := strings.TrimSpace(reply[:idx])
	rest := strings.TrimSpace(reply[idx+len(topicsMarker):])

	var topics []string
	if err := json.Unmarshal([]byte(rest), &topics); err != nil {
		return strings.TrimSpace(reply), pq.StringArray{}
	}
	return body, pq.StringArray(topics)
}
