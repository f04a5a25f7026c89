// Package metadata resolves show metadata for a media source and derives the
// filename stem every artifact of that item is keyed by.
package metadata

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// MediaItem is the unit of work flowing through the pipeline.
type MediaItem struct {
	ShowLink    string `json:"showLink"`
	Channel     string `json:"channel"`
	ChannelURL  string `json:"channelURL"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PublishDate string `json:"publishDate"`
	CoverImage  string `json:"coverImage"`

	// Local is set for items read from the filesystem. Their stem comes from
	// the file name instead of date and title.
	Local bool `json:"-"`
}

// Stem returns the filename stem shared by all artifacts of the item.
func (m MediaItem) Stem() string {
	if m.Local {
		base := filepath.Base(m.ShowLink)
		stem := Sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
		if stem == "" {
			return "untitled"
		}
		return stem
	}
	return m.PublishDate + "-" + Sanitize(m.Title)
}

// Label identifies the item in log lines and errors.
func (m MediaItem) Label() string {
	if m.Title != "" {
		return fmt.Sprintf("%q (%s)", m.Title, m.ShowLink)
	}
	return m.ShowLink
}

var (
	unsafeChars = regexp.MustCompile(`[^\w\s-]`)
	separators  = regexp.MustCompile(`[\s_]+`)
	hyphenRuns  = regexp.MustCompile(`-+`)
)

const maxStemTitle = 200

// Sanitize turns a title into a lowercase, hyphenated, filesystem safe string
// of at most 200 characters.
func Sanitize(title string) string {
	s := unsafeChars.ReplaceAllString(title, "")
	s = strings.TrimSpace(s)
	s = separators.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.ToLower(s)
	if len(s) > maxStemTitle {
		s = s[:maxStemTitle]
	}
	return s
}

// FromLocalFile builds the item for a file on disk. Only the show link is known.
func FromLocalFile(path string) MediaItem {
	return MediaItem{ShowLink: path, Local: true}
}

// Enricher fills missing fields of an item from another metadata source.
type Enricher interface {
	Enrich(ctx context.Context, item *MediaItem) error
}

// CoverImageFinder looks up a cover image for a web page.
type CoverImageFinder interface {
	CoverImage(ctx context.Context, pageURL string) (string, error)
}

// Resolver extracts metadata for URLs with yt-dlp.
type Resolver struct {
	cmd      utils.CommandExecutor
	ytDlp    string
	enricher Enricher
	covers   CoverImageFinder
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEnricher adds a secondary metadata source consulted before fields are validated.
func WithEnricher(e Enricher) Option {
	return func(r *Resolver) { r.enricher = e }
}

// WithCoverImageFinder adds a fallback used when no thumbnail was found.
func WithCoverImageFinder(f CoverImageFinder) Option {
	return func(r *Resolver) { r.covers = f }
}

// NewResolver creates a resolver running the given yt-dlp binary.
func NewResolver(cmd utils.CommandExecutor, ytDlp string, opts ...Option) *Resolver {
	if ytDlp == "" {
		ytDlp = "yt-dlp"
	}
	r := &Resolver{cmd: cmd, ytDlp: ytDlp}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// printFields is the order of --print queries; stdout lines map back positionally.
var printFields = []struct {
	query string
	name  string
	set   func(*MediaItem, string)
}{
	{"webpage_url", "showLink", func(m *MediaItem, v string) { m.ShowLink = v }},
	{"channel", "channel", func(m *MediaItem, v string) { m.Channel = v }},
	{"uploader_url", "channelURL", func(m *MediaItem, v string) { m.ChannelURL = v }},
	{"title", "title", func(m *MediaItem, v string) { m.Title = v }},
	{"upload_date>%Y-%m-%d", "publishDate", func(m *MediaItem, v string) { m.PublishDate = v }},
	{"thumbnail", "coverImage", func(m *MediaItem, v string) { m.CoverImage = v }},
}

// Resolve returns the metadata of a single video URL.
func (r *Resolver) Resolve(ctx context.Context, url string) (MediaItem, error) {
	if err := r.checkTool(); err != nil {
		return MediaItem{}, err
	}

	args := []string{"--restrict-filenames"}
	for _, f := range printFields {
		args = append(args, "--print", f.query)
	}
	args = append(args, url)

	out, err := r.cmd.ExecuteCommand(ctx, r.ytDlp, args)
	if err != nil {
		return MediaItem{}, &apperr.MetadataExtractionError{URL: url, Err: err}
	}

	lines := strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
	var item MediaItem
	for i, f := range printFields {
		if i < len(lines) {
			f.set(&item, cleanField(lines[i]))
		}
	}

	if r.enricher != nil {
		if err := r.enricher.Enrich(ctx, &item); err != nil {
			utils.LogWarning("Could not enrich metadata for %s: %v", url, err)
		}
	}
	if item.CoverImage == "" && r.covers != nil && item.ShowLink != "" {
		if img, err := r.covers.CoverImage(ctx, item.ShowLink); err != nil {
			utils.LogVerbose("No cover image found on %s: %v", item.ShowLink, err)
		} else {
			item.CoverImage = img
		}
	}

	for _, f := range printFields {
		if fieldValue(item, f.name) == "" {
			return MediaItem{}, &apperr.MetadataExtractionError{URL: url, Field: f.name}
		}
	}

	utils.LogVerbose("Resolved metadata for %s", utils.Highlight(item.Title))
	return item, nil
}

// ListPlaylist returns the video URLs of a playlist in playlist order.
func (r *Resolver) ListPlaylist(ctx context.Context, playlistURL string) ([]string, error) {
	if err := r.checkTool(); err != nil {
		return nil, err
	}

	out, err := r.cmd.ExecuteCommand(ctx, r.ytDlp, []string{"--flat-playlist", "-s", "--print", "url", playlistURL})
	if err != nil {
		return nil, &apperr.MetadataExtractionError{URL: playlistURL, Err: err}
	}

	urls := nonEmptyLines(string(out))
	if len(urls) == 0 {
		return nil, &apperr.MetadataExtractionError{URL: playlistURL, Field: "playlist entries"}
	}
	utils.LogInfo("Found %d videos in playlist", len(urls))
	return urls, nil
}

func (r *Resolver) checkTool() error {
	if _, err := r.cmd.LookPath(r.ytDlp); err != nil {
		return &apperr.DependencyMissingError{Tool: r.ytDlp, Err: err}
	}
	return nil
}

// cleanField maps yt-dlp's "NA" placeholder to an empty value.
func cleanField(v string) string {
	v = strings.TrimSpace(v)
	if v == "NA" {
		return ""
	}
	return v
}

func fieldValue(m MediaItem, name string) string {
	switch name {
	case "showLink":
		return m.ShowLink
	case "channel":
		return m.Channel
	case "channelURL":
		return m.ChannelURL
	case "title":
		return m.Title
	case "publishDate":
		return m.PublishDate
	case "coverImage":
		return m.CoverImage
	}
	return ""
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
