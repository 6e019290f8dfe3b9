package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"podscribe/internal/blob"
	"podscribe/internal/models"
)

// AudioFetcher streams a source audio URL. Implemented over plain HTTP;
// injected so tests can count fetches.
type AudioFetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches audio with a plain GET, streaming the body.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch audio: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// BlobKey is the deterministic storage key for an episode's audio.
// Determinism is what makes the download step idempotent: a resumed run
// finds the blob from the previous attempt and skips the fetch.
func BlobKey(podcastID, episodeID int64) string {
	return fmt.Sprintf("audio/%d/%d.mp3", podcastID, episodeID)
}

type downloadResult struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

func (p *Pipeline) download(ctx context.Context, ep *models.Episode) (downloadResult, error) {
	key := BlobKey(ep.PodcastID, ep.ID)

	if size, err := p.blobs.Head(ctx, key); err == nil {
		p.log.WithField("key", key).Info("audio blob already present, skipping fetch")
		return downloadResult{Key: key, Size: size}, nil
	} else if !errors.Is(err, blob.ErrNotExist) {
		return downloadResult{}, err
	}

	body, err := p.fetcher.Fetch(ctx, ep.AudioURL)
	if err != nil {
		return downloadResult{}, err
	}
	defer body.Close()

	size, err := p.blobs.Put(ctx, key, body)
	if err != nil {
		return downloadResult{}, fmt.Errorf("store audio: %w", err)
	}
	return downloadResult{Key: key, Size: size}, nil
}
