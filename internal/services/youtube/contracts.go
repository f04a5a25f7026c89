package youtube

import (
	"context"

	"google.golang.org/api/youtube/v3"

	"github.com/ajcwebdev/autoshow-sub002/internal/modules/metadata"
)

// YouTubeService defines the interface for YouTube Data API lookups
type YouTubeService interface {
	// GetVideoDetails retrieves the snippet of a specific video
	GetVideoDetails(ctx context.Context, videoID string) (*youtube.Video, error)

	// Enrich fills empty fields of item from the video snippet
	Enrich(ctx context.Context, item *metadata.MediaItem) error
}

// Ensure Service implements both YouTubeService and metadata.Enricher
var (
	_ YouTubeService    = (*Service)(nil)
	_ metadata.Enricher = (*Service)(nil)
)
