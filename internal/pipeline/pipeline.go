// Package pipeline drives one episode from pending to complete:
// download, chunked transcription, segmentation, AI analysis. Every
// stage runs as a memoized step, so a replayed run (after a crash or a
// task redelivery) skips whatever already finished.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"podscribe/internal/ai"
	"podscribe/internal/blob"
	"podscribe/internal/config"
	"podscribe/internal/logger"
	"podscribe/internal/models"
	"podscribe/internal/steps"
	"podscribe/internal/transcript"
)

// Store is the slice of the record store the pipeline writes through.
type Store interface {
	GetEpisode(ctx context.Context, id int64) (models.Episode, error)
	UpdateEpisodeStatus(ctx context.Context, id int64, status string) error
	SetEpisodeBlobKey(ctx context.Context, id int64, key string) error
	SetEpisodeDuration(ctx context.Context, id int64, seconds int) error
	MarkEpisodeError(ctx context.Context, id int64, message string) error
	MarkEpisodeComplete(ctx context.Context, id int64) error
	ReplaceSegments(ctx context.Context, episodeID int64, segments []models.TranscriptSegment) error
	InsertAnalysis(ctx context.Context, a models.EpisodeAnalysis) (models.EpisodeAnalysis, error)
}

// Retry policies per stage. Download is the most forgiving because large
// audio fetches fail transiently; chunk transcription retries are per
// chunk so one flake never discards finished chunks.
var (
	downloadPolicy   = steps.Policy{MaxRetries: 3, BaseDelay: 30 * time.Second, Multiplier: 2, Timeout: 10 * time.Minute}
	transcribePolicy = steps.Policy{MaxRetries: 2, BaseDelay: 15 * time.Second, Multiplier: 2, Timeout: 3 * time.Minute}
	persistPolicy    = steps.Policy{MaxRetries: 1, BaseDelay: time.Second, Multiplier: 2, Timeout: time.Minute}
	analyzePolicy    = steps.Policy{MaxRetries: 2, BaseDelay: 15 * time.Second, Multiplier: 2, Timeout: 4 * time.Minute}
)

type Pipeline struct {
	store   Store
	blobs   blob.Store
	fetcher AudioFetcher
	stt     ai.SpeechToText
	llm     ai.TextGenerator
	steps   *steps.Runner
	cfg     *config.Config
	log     *logger.Logger
}

func New(store Store, blobs blob.Store, fetcher AudioFetcher, stt ai.SpeechToText, llm ai.TextGenerator, runner *steps.Runner, cfg *config.Config, lg *logger.Logger) *Pipeline {
	return &Pipeline{
		store:   store,
		blobs:   blobs,
		fetcher: fetcher,
		stt:     stt,
		llm:     llm,
		steps:   runner,
		cfg:     cfg,
		log:     lg.Module("pipeline"),
	}
}

// Run executes the pipeline for one episode. Step failures that survive
// their retry budget are converted into status=error on the episode; Run
// never panics the surrounding worker.
func (p *Pipeline) Run(ctx context.Context, episodeID int64, runID string) error {
	log := p.log.WithField("episode_id", episodeID).WithField("run_id", runID)

	ep, err := p.store.GetEpisode(ctx, episodeID)
	if err != nil {
		return fmt.Errorf("load episode %d: %w", episodeID, err)
	}

	if err := p.run(ctx, &ep, runID); err != nil {
		log.WithError(err).Error("pipeline failed")
		if mErr := p.store.MarkEpisodeError(ctx, ep.ID, err.Error()); mErr != nil {
			log.WithError(mErr).Error("could not record episode error")
		}
		return err
	}

	log.Info("pipeline complete")
	return nil
}

func (p *Pipeline) run(ctx context.Context, ep *models.Episode, runID string) error {
	if err := p.store.UpdateEpisodeStatus(ctx, ep.ID, models.StatusDownloading); err != nil {
		return err
	}
	dl, err := steps.Run(ctx, p.steps, runID, "download", downloadPolicy, func(ctx context.Context) (downloadResult, error) {
		return p.download(ctx, ep)
	})
	if err != nil {
		return err
	}
	if err := p.store.SetEpisodeBlobKey(ctx, ep.ID, dl.Key); err != nil {
		return err
	}

	if err := p.store.UpdateEpisodeStatus(ctx, ep.ID, models.StatusTranscribing); err != nil {
		return err
	}
	merged, err := p.transcribe(ctx, runID, dl)
	if err != nil {
		return err
	}

	if _, err := steps.Run(ctx, p.steps, runID, "persist-transcript", persistPolicy, func(ctx context.Context) (persistResult, error) {
		return p.persistTranscript(ctx, ep.ID, merged)
	}); err != nil {
		return err
	}
	if err := p.store.UpdateEpisodeStatus(ctx, ep.ID, models.StatusAnalyzing); err != nil {
		return err
	}

	if _, err := steps.Run(ctx, p.steps, runID, "analyze", analyzePolicy, func(ctx context.Context) (analysisResult, error) {
		return p.analyze(ctx, ep.ID, merged.fullText())
	}); err != nil {
		return err
	}

	return p.store.MarkEpisodeComplete(ctx, ep.ID)
}

type persistResult struct {
	Segments        int `json:"segments"`
	DurationSeconds int `json:"duration_seconds"`
}

// persistTranscript turns the merged word list into ordered segments and
// writes them, recording the episode duration. When the service produced
// no word-level timing at all, it falls back to sentence splitting with
// estimated per-chunk time slices.
func (p *Pipeline) persistTranscript(ctx context.Context, episodeID int64, merged *mergedTranscript) (persistResult, error) {
	var built []transcript.Segment
	if len(merged.Words) > 0 {
		built = transcript.BuildSegments(merged.Words, p.cfg.TargetWordsPerSegment)
	} else {
		built = merged.sentenceFallback()
	}
	if len(built) == 0 {
		return persistResult{}, steps.Fatal(errors.New("transcript empty"))
	}

	segments := make([]models.TranscriptSegment, 0, len(built))
	for i, seg := range built {
		segments = append(segments, models.TranscriptSegment{
			EpisodeID: episodeID,
			Idx:       i,
			Text:      seg.Text,
			StartSec:  seg.Start,
			EndSec:    seg.End,
			Words:     seg.Words,
		})
	}
	if err := p.store.ReplaceSegments(ctx, episodeID, segments); err != nil {
		return persistResult{}, err
	}

	duration := int(math.Round(merged.Duration))
	if err := p.store.SetEpisodeDuration(ctx, episodeID, duration); err != nil {
		return persistResult{}, err
	}
	return persistResult{Segments: len(segments), DurationSeconds: duration}, nil
}

// mergedTranscript accumulates sequential chunk results with running
// time offsets already applied to the word timestamps.
type mergedTranscript struct {
	Words    []models.Word
	Chunks   []chunkText
	Duration float64
}

type chunkText struct {
	Text     string
	Offset   float64
	Duration float64
}

func (m *mergedTranscript) add(res chunkResult, offset float64) {
	for _, w := range res.Words {
		m.Words = append(m.Words, models.Word{
			Word:  w.Word,
			Start: w.Start + offset,
			End:   w.End + offset,
		})
	}
	m.Chunks = append(m.Chunks, chunkText{Text: res.Text, Offset: offset, Duration: res.Duration})
	m.Duration = offset + res.Duration
}

func (m *mergedTranscript) fullText() string {
	parts := make([]string, 0, len(m.Chunks))
	for _, c := range m.Chunks {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (m *mergedTranscript) sentenceFallback() []transcript.Segment {
	var segments []transcript.Segment
	for _, c := range m.Chunks {
		segments = append(segments, transcript.SentenceFallback(c.Text, c.Offset, c.Duration)...)
	}
	return segments
}
