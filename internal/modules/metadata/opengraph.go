package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// OpenGraphFinder reads the og:image (or twitter:image) tag of a page.
type OpenGraphFinder struct {
	client *http.Client
}

// NewOpenGraphFinder creates a finder with a bounded request timeout.
func NewOpenGraphFinder(timeout time.Duration) *OpenGraphFinder {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OpenGraphFinder{client: &http.Client{Timeout: timeout}}
}

// CoverImage fetches pageURL and returns its preview image URL.
func (f *OpenGraphFinder) CoverImage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; autoshow)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			utils.LogWarning("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	for _, selector := range []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[name="twitter:image"]`,
		`link[rel="image_src"]`,
	} {
		sel := doc.Find(selector).First()
		value := sel.AttrOr("content", sel.AttrOr("href", ""))
		if value = strings.TrimSpace(value); value != "" {
			return value, nil
		}
	}
	return "", fmt.Errorf("no preview image on page")
}
