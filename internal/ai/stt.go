// Package ai holds the HTTP clients for the two external inference
// services the pipeline depends on. Clients make a single attempt per
// call; retry budgets belong to the step executor.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"podscribe/internal/models"
)

// TranscriptionSegment is one service-side grouping of word tokens.
// Providers differ in how they split these, so callers flatten them.
type TranscriptionSegment struct {
	Words []models.Word `json:"words"`
}

// Transcription is one chunk's speech-to-text result.
type Transcription struct {
	Text     string                 `json:"text"`
	Segments []TranscriptionSegment `json:"segments"`
	Duration float64                `json:"duration"`
}

// FlattenWords collects the word tokens across all nested segments, in
// order. Empty when the provider returned no word-level timing.
func (t *Transcription) FlattenWords() []models.Word {
	var words []models.Word
	for _, s := range t.Segments {
		words = append(words, s.Words...)
	}
	return words
}

// SpeechToText transcribes one chunk of base64-encoded audio. Never
// called with more than one chunk's bytes at a time.
type SpeechToText interface {
	Transcribe(ctx context.Context, audioBase64, language string) (*Transcription, error)
}

// WhisperClient talks to a whisper-style transcription HTTP endpoint.
type WhisperClient struct {
	url        string
	key        string
	httpClient *http.Client
}

func NewWhisperClient(url, key string) *WhisperClient {
	return &WhisperClient{
		url: url,
		key: key,
		// Per-attempt deadlines come from the step policy's context; this
		// is only a safety net against a hung connection.
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

func (c *WhisperClient) Transcribe(ctx context.Context, audioBase64, language string) (*Transcription, error) {
	body, err := json.Marshal(map[string]string{
		"audio_base64":    audioBase64,
		"language":        language,
		"response_format": "verbose_json",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe request: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transcribe: status %d: %s", resp.StatusCode, snippet(data))
	}

	var out Transcription
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("transcribe: decode response: %w", err)
	}
	return &out, nil
}

func snippet(b []byte) string {
	const max = 256
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
