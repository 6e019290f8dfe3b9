package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"podscribe/internal/blob"
	"podscribe/internal/models"
	"podscribe/internal/steps"
)

// chunkResult is one chunk's transcription with chunk-relative word
// timestamps; the running offset is applied when chunks are merged.
type chunkResult struct {
	Words    []models.Word `json:"words"`
	Text     string        `json:"text"`
	Duration float64       `json:"duration"`
}

// transcribe runs the chunked transcription stage. Chunks are processed
// sequentially and each one is its own memoized step, so a transient
// failure on chunk N never discards chunks 0..N-1.
func (p *Pipeline) transcribe(ctx context.Context, runID string, dl downloadResult) (*mergedTranscript, error) {
	ranges := PlanChunks(dl.Size, p.cfg.ChunkSizeBytes)
	if len(ranges) == 0 {
		return nil, steps.Fatal(fmt.Errorf("audio blob %s is empty", dl.Key))
	}

	merged := &mergedTranscript{}
	for i, rng := range ranges {
		rng := rng
		name := fmt.Sprintf("transcribe-chunk-%03d", i)
		res, err := steps.Run(ctx, p.steps, runID, name, transcribePolicy, func(ctx context.Context) (chunkResult, error) {
			return p.transcribeChunk(ctx, dl.Key, rng)
		})
		if err != nil {
			return nil, err
		}
		// Shift this chunk's timestamps by the cumulative duration of
		// everything before it; without this, segment times snap back to
		// zero at every chunk boundary.
		merged.add(res, merged.Duration)
	}
	return merged, nil
}

func (p *Pipeline) transcribeChunk(ctx context.Context, key string, rng blob.ByteRange) (chunkResult, error) {
	r, err := p.blobs.Get(ctx, key, &rng)
	if err != nil {
		return chunkResult{}, fmt.Errorf("read chunk %d-%d: %w", rng.Start, rng.End, err)
	}
	data, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return chunkResult{}, fmt.Errorf("read chunk %d-%d: %w", rng.Start, rng.End, err)
	}

	tr, err := p.stt.Transcribe(ctx, base64.StdEncoding.EncodeToString(data), p.cfg.Language)
	if err != nil {
		return chunkResult{}, err
	}

	return chunkResult{
		Words:    tr.FlattenWords(),
		Text:     tr.Text,
		Duration: tr.Duration,
	}, nil
}
