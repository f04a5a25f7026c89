// Package feed fetches podcast RSS feeds and selects the items to process.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	"github.com/samber/lo/mutable"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/modules/metadata"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// DefaultTimeout bounds a feed request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Feed is the channel level data plus its playable items in feed order.
type Feed struct {
	Title string
	Link  string
	Image string
	Items []Item
}

// Item is one entry of a feed with an audio or video enclosure.
type Item struct {
	EnclosureURL string
	Title        string
	Description  string
	PublishDate  string
	CoverImage   string
}

// MediaItem converts an entry to the pipeline's unit of work.
func (f *Feed) MediaItem(it Item) metadata.MediaItem {
	return metadata.MediaItem{
		ShowLink:    it.EnclosureURL,
		Channel:     f.Title,
		ChannelURL:  f.Link,
		Title:       it.Title,
		Description: it.Description,
		PublishDate: it.PublishDate,
		CoverImage:  it.CoverImage,
	}
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// NewFetcher creates a fetcher. A nil client uses http.DefaultClient.
func NewFetcher(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{client: client, timeout: timeout}
}

// Fetch retrieves url and keeps the items whose enclosure is audio or video.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &apperr.FeedFetchError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/rss+xml")

	utils.LogVerbose("Fetching RSS feed %s", url)
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &apperr.FeedFetchTimeoutError{URL: url, Timeout: f.timeout}
		}
		return nil, &apperr.FeedFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.FeedFetchError{URL: url, StatusCode: resp.StatusCode}
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &apperr.FeedFetchTimeoutError{URL: url, Timeout: f.timeout}
		}
		return nil, &apperr.FeedFetchError{URL: url, Err: fmt.Errorf("parsing feed: %w", err)}
	}

	feed := fromParsed(parsed)
	utils.LogVerbose("Feed %q has %d playable items", feed.Title, len(feed.Items))
	return feed, nil
}

func fromParsed(p *gofeed.Feed) *Feed {
	feed := &Feed{
		Title: strings.TrimSpace(p.Title),
		Link:  strings.TrimSpace(p.Link),
	}
	switch {
	case p.Image != nil && p.Image.URL != "":
		feed.Image = p.Image.URL
	case p.ITunesExt != nil && p.ITunesExt.Image != "":
		feed.Image = p.ITunesExt.Image
	}

	feed.Items = lo.FilterMap(p.Items, func(it *gofeed.Item, _ int) (Item, bool) {
		enc, ok := lo.Find(it.Enclosures, func(e *gofeed.Enclosure) bool {
			return e != nil && playable(e.Type)
		})
		if !ok || enc.URL == "" {
			return Item{}, false
		}

		item := Item{
			EnclosureURL: strings.TrimSpace(enc.URL),
			Title:        strings.TrimSpace(it.Title),
			CoverImage:   feed.Image,
		}
		if it.PublishedParsed != nil {
			item.PublishDate = it.PublishedParsed.UTC().Format("2006-01-02")
		}
		switch {
		case it.Image != nil && it.Image.URL != "":
			item.CoverImage = it.Image.URL
		case it.ITunesExt != nil && it.ITunesExt.Image != "":
			item.CoverImage = it.ITunesExt.Image
		}
		return item, true
	})
	return feed
}

func playable(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	return strings.HasPrefix(mime, "audio/") || strings.HasPrefix(mime, "video/")
}

// Select applies the selection policy: explicit items, then last N, then
// order and skip. The options are mutually exclusive by validation.
func Select(items []Item, cfg config.FeedConfig) ([]Item, error) {
	switch {
	case len(cfg.Items) > 0:
		selected := lo.Filter(items, func(it Item, _ int) bool {
			return lo.Contains(cfg.Items, it.EnclosureURL)
		})
		if len(selected) == 0 {
			return nil, &apperr.NoMatchingItemsError{Requested: cfg.Items}
		}
		found := lo.Map(selected, func(it Item, _ int) string { return it.EnclosureURL })
		for _, missing := range lo.Without(cfg.Items, found...) {
			utils.LogWarning("Requested item %s is not in the feed", missing)
		}
		return selected, nil

	case cfg.Last > 0:
		return lo.Subset(items, 0, uint(cfg.Last)), nil

	default:
		ordered := append([]Item(nil), items...)
		if cfg.Order == config.OrderOldest {
			mutable.Reverse(ordered)
		}
		return lo.Drop(ordered, cfg.Skip), nil
	}
}

// InfoPath returns where WriteInfo stores the JSON for a feed titled title.
func InfoPath(dir, title string) string {
	name := metadata.Sanitize(title)
	if name == "" {
		name = "rss"
	}
	return filepath.Join(dir, name+"_info.json")
}

// WriteInfo serializes items as media metadata next to the other artifacts.
func WriteInfo(dir string, feed *Feed, items []Item) (string, error) {
	records := lo.Map(items, func(it Item, _ int) metadata.MediaItem { return feed.MediaItem(it) })
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding feed info: %w", err)
	}

	path := InfoPath(dir, feed.Title)
	if err := utils.WriteFileAtomic(path, string(data)+"\n"); err != nil {
		return "", err
	}
	utils.LogSuccess("Feed information for %d items saved to %s", len(items), utils.Highlight(path))
	return path, nil
}
