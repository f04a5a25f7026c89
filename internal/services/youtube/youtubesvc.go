package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ajcwebdev/autoshow-sub002/internal/modules/metadata"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// Service looks up video metadata with an API key. No OAuth is involved.
type Service struct {
	api *youtube.Service
}

// NewService creates a YouTube Data API client. Extra client options (for
// example option.WithEndpoint in tests) are appended after the API key.
func NewService(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is empty")
	}
	api, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Service{api: api}, nil
}

// GetVideoDetails retrieves details of a specific video
func (s *Service) GetVideoDetails(ctx context.Context, videoID string) (*youtube.Video, error) {
	videoResponse, err := s.api.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video details: %w", err)
	}

	if len(videoResponse.Items) == 0 {
		return nil, fmt.Errorf("no video found with ID: %s", videoID)
	}

	return videoResponse.Items[0], nil
}

// Enrich fills the empty fields of item from the video's snippet. Non-YouTube
// links are left untouched.
func (s *Service) Enrich(ctx context.Context, item *metadata.MediaItem) error {
	videoID, ok := VideoID(item.ShowLink)
	if !ok {
		return nil
	}

	video, err := s.GetVideoDetails(ctx, videoID)
	if err != nil {
		return err
	}
	snippet := video.Snippet
	if snippet == nil {
		return fmt.Errorf("video %s has no snippet", videoID)
	}

	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&item.Title, snippet.Title)
	fill(&item.Channel, snippet.ChannelTitle)
	if snippet.ChannelId != "" {
		fill(&item.ChannelURL, "https://www.youtube.com/channel/"+snippet.ChannelId)
	}
	if published, err := time.Parse(time.RFC3339, snippet.PublishedAt); err == nil {
		fill(&item.PublishDate, published.UTC().Format("2006-01-02"))
	}
	fill(&item.CoverImage, bestThumbnail(snippet.Thumbnails))

	utils.LogDebug("Enriched %s from YouTube Data API", videoID)
	return nil
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.Maxres, t.Standard, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

// VideoID extracts the video ID from the common YouTube URL shapes.
func VideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	switch host {
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		return id, id != ""
	case "youtube.com", "music.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, true
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "live" || parts[0] == "embed") && parts[1] != "" {
			return parts[1], true
		}
	}
	return "", false
}
