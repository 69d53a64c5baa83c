// Package feedparser extracts a display summary from a fetched feed using
// the gofeed universal parser.
package feedparser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Summary is the display-only digest shown next to a validation report.
type Summary struct {
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	Version     string     `json:"version,omitempty"`
	HomePageURL string     `json:"home_page_url,omitempty"`
	FeedURL     string     `json:"feed_url,omitempty"`
	ItemCount   int        `json:"item_count"`
	Authors     []string   `json:"authors,omitempty"`
	LatestItem  *time.Time `json:"latest_item,omitempty"`
}

// Summarize parses data with gofeed and returns its summary.
// Feeds gofeed cannot parse return an error; callers treat it as "no summary".
func Summarize(data []byte) (*Summary, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	s := &Summary{
		Title:       feed.Title,
		Type:        feed.FeedType,
		Version:     feed.FeedVersion,
		HomePageURL: feed.Link,
		FeedURL:     feed.FeedLink,
		ItemCount:   len(feed.Items),
	}

	for _, a := range feed.Authors {
		if a != nil && a.Name != "" {
			s.Authors = append(s.Authors, a.Name)
		}
	}

	// 最新の公開日時を表示用に保持
	for _, it := range feed.Items {
		if it.PublishedParsed == nil {
			continue
		}
		if s.LatestItem == nil || it.PublishedParsed.After(*s.LatestItem) {
			t := *it.PublishedParsed
			s.LatestItem = &t
		}
	}

	return s, nil
}
