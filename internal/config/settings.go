package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// DefaultSettingsFile is read when no --config flag is given and the file exists.
const DefaultSettingsFile = "autoshow.yaml"

// Settings holds installation specific configuration loaded from YAML.
// Every field has a default, so an absent file is not an error.
type Settings struct {
	ContentDir string           `yaml:"contentDir"`
	Tools      ToolSettings     `yaml:"tools"`
	Whisper    WhisperSettings  `yaml:"whisper"`
	Feed       FeedSettings     `yaml:"feed"`
	Assembly   AssemblySettings `yaml:"assembly"`
	Gemini     RetrySettings    `yaml:"gemini"`
	LLM        LLMSettings      `yaml:"llm"`
	HTTP       HTTPSettings     `yaml:"http"`
	Server     ServerSettings   `yaml:"server"`
}

// ToolSettings names the external binaries.
type ToolSettings struct {
	YtDlp   string `yaml:"ytDlp"`
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
	Docker  string `yaml:"docker"`
	Python  string `yaml:"python"`
	Whisper string `yaml:"whisper"`
}

// WhisperSettings locates the local whisper installations.
type WhisperSettings struct {
	CppDir          string `yaml:"cppDir"`
	DockerContainer string `yaml:"dockerContainer"`
	// DockerContentDir is where the container mounts ContentDir. Empty means
	// /app/<base name of ContentDir>.
	DockerContentDir string `yaml:"dockerContentDir"`
	DiarizationDir   string `yaml:"diarizationDir"`
}

// FeedSettings controls RSS fetching.
type FeedSettings struct {
	Timeout time.Duration `yaml:"timeout"`
}

// AssemblySettings controls polling of AssemblyAI transcription jobs.
type AssemblySettings struct {
	PollInterval    time.Duration `yaml:"pollInterval"`
	MaxPollAttempts int           `yaml:"maxPollAttempts"`
}

// RetrySettings is a bounded exponential backoff policy.
type RetrySettings struct {
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
}

// LLMSettings holds provider wide tuning.
type LLMSettings struct {
	MaxTokens int               `yaml:"maxTokens"`
	BaseURLs  map[string]string `yaml:"baseURLs"`
}

// HTTPSettings bounds outbound API calls.
type HTTPSettings struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ServerSettings configures `autoshow serve`.
type ServerSettings struct {
	Addr string `yaml:"addr"`
}

// DefaultSettings returns the settings used when no file overrides them.
func DefaultSettings() Settings {
	return Settings{
		ContentDir: "content",
		Tools: ToolSettings{
			YtDlp:   "yt-dlp",
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			Docker:  "docker",
			Python:  "python3",
			Whisper: "whisper",
		},
		Whisper: WhisperSettings{
			CppDir:          "whisper.cpp",
			DockerContainer: "autoshow-whisper-1",
			DiarizationDir:  "whisper-diarization",
		},
		Feed: FeedSettings{
			Timeout: 10 * time.Second,
		},
		Assembly: AssemblySettings{
			PollInterval:    3 * time.Second,
			MaxPollAttempts: 1200,
		},
		Gemini: RetrySettings{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
		LLM: LLMSettings{
			MaxTokens: 4000,
		},
		HTTP: HTTPSettings{
			Timeout: 10 * time.Minute,
		},
		Server: ServerSettings{
			Addr: ":3000",
		},
	}
}

// LoadSettings reads settings from path on top of DefaultSettings. An empty
// path falls back to DefaultSettingsFile when it exists.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	explicit := path != ""
	if !explicit {
		path = DefaultSettingsFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	for _, dir := range []*string{&settings.ContentDir, &settings.Whisper.CppDir} {
		if *dir, err = utils.ExpandHomeDir(*dir); err != nil {
			return settings, err
		}
	}

	if err := settings.validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

func (s Settings) validate() error {
	if s.ContentDir == "" {
		return fmt.Errorf("settings: contentDir must not be empty")
	}
	if s.Feed.Timeout <= 0 {
		return fmt.Errorf("settings: feed.timeout must be positive")
	}
	if s.Assembly.PollInterval <= 0 || s.Assembly.MaxPollAttempts <= 0 {
		return fmt.Errorf("settings: assembly.pollInterval and assembly.maxPollAttempts must be positive")
	}
	if s.Gemini.MaxAttempts <= 0 {
		return fmt.Errorf("settings: gemini.maxAttempts must be positive")
	}
	return nil
}
