// Package feed fetches podcast RSS feeds and publishes the analyzed
// episode feed.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Item is one episode entry discovered in a show's feed.
type Item struct {
	GUID        string
	Title       string
	AudioURL    string
	PublishedAt time.Time
}

// Client fetches and parses podcast feeds. It only surfaces the fields
// the pipeline needs; gofeed absorbs the RSS/Atom dialect differences.
type Client struct {
	parser *gofeed.Parser
}

func NewClient() *Client {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: 30 * time.Second}
	return &Client{parser: p}
}

func (c *Client) FetchItems(ctx context.Context, feedURL string) ([]Item, error) {
	parsed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		// Entries without an audio enclosure are not episodes.
		if len(it.Enclosures) == 0 || it.Enclosures[0].URL == "" {
			continue
		}
		audioURL := it.Enclosures[0].URL

		guid := it.GUID
		if guid == "" {
			guid = audioURL
		}

		publishedAt := time.Now()
		if it.PublishedParsed != nil {
			publishedAt = *it.PublishedParsed
		}

		items = append(items, Item{
			GUID:        guid,
			Title:       it.Title,
			AudioURL:    audioURL,
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}
