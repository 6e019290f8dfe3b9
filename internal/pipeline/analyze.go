package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"

	"podscribe/internal/models"
)

const (
	truncationMarker = "\n\n[transcript truncated]"

	// degradedSummaryLen bounds the fallback summary taken verbatim from
	// an unparseable model response.
	degradedSummaryLen = 500
)

const analysisSystemPrompt = "You are a podcast analyst. You read full episode transcripts and " +
	"produce structured editorial analysis. Respond with JSON only."

type analysisResult struct {
	AnalysisID int64 `json:"analysis_id"`
	Degraded   bool  `json:"degraded"`
}

// analyze builds the structured prompt, calls the text-generation
// service, parses its reply permissively, and persists the analysis. A
// reply that cannot be parsed still yields a degraded record instead of
// failing the episode.
func (p *Pipeline) analyze(ctx context.Context, episodeID int64, transcriptText string) (analysisResult, error) {
	prompt := buildAnalysisPrompt(truncateTranscript(transcriptText, p.cfg.TranscriptCharBudget))

	reply, err := p.llm.Complete(ctx, analysisSystemPrompt, prompt)
	if err != nil {
		return analysisResult{}, err
	}

	payload, degraded := parseAnalysisReply(reply)
	if degraded {
		p.log.WithField("episode_id", episodeID).Warn("analysis response unparseable, storing degraded record")
	}

	stored, err := p.store.InsertAnalysis(ctx, models.EpisodeAnalysis{
		EpisodeID: episodeID,
		Summary:   payload.Summary,
		Tags:      pq.StringArray(payload.Tags),
		Themes:    models.ThemeList(payload.Themes),
		Sentiment: payload.Sentiment,
		KeyQuotes: pq.StringArray(payload.KeyQuotes),
	})
	if err != nil {
		return analysisResult{}, fmt.Errorf("persist analysis: %w", err)
	}
	return analysisResult{AnalysisID: stored.ID, Degraded: degraded}, nil
}

func truncateTranscript(text string, budget int) string {
	if budget <= 0 || len(text) <= budget {
		return text
	}
	return cutAtRune(text, budget) + truncationMarker
}

// cutAtRune truncates to at most n bytes without splitting a rune.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func buildAnalysisPrompt(transcriptText string) string {
	var b strings.Builder
	b.WriteString("Analyze the following podcast episode transcript and respond with a JSON object ")
	b.WriteString("with exactly these fields:\n")
	b.WriteString(`- "summary": a 2-3 paragraph summary` + "\n")
	b.WriteString(`- "tags": 5 to 15 short topic tags` + "\n")
	b.WriteString(`- "themes": list of {"theme", "description"} objects` + "\n")
	b.WriteString(`- "sentiment": one of "positive", "neutral", "negative", "mixed"` + "\n")
	b.WriteString(`- "key_quotes": 3 to 5 notable verbatim quotes` + "\n\n")
	b.WriteString("Transcript:\n")
	b.WriteString(transcriptText)
	return b.String()
}

type analysisPayload struct {
	Summary   string         `json:"summary"`
	Tags      []string       `json:"tags"`
	Themes    []models.Theme `json:"themes"`
	Sentiment string         `json:"sentiment"`
	KeyQuotes []string       `json:"key_quotes"`
}

// parseAnalysisReply strips markdown code fences and JSON-parses the
// reply. On failure it returns a degraded payload built from the raw
// reply text.
func parseAnalysisReply(reply string) (analysisPayload, bool) {
	cleaned := stripCodeFences(reply)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil && payload.Summary != "" {
		if payload.Sentiment == "" {
			payload.Sentiment = "unknown"
		}
		return payload, false
	}

	summary := cutAtRune(strings.TrimSpace(reply), degradedSummaryLen)
	return analysisPayload{
		Summary:   summary,
		Tags:      []string{},
		Themes:    []models.Theme{},
		Sentiment: "unknown",
		KeyQuotes: []string{},
	}, true
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
