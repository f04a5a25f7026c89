package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// Getenv looks up an environment variable. os.Getenv in production.
type Getenv func(string) string

// Each stage receives only the fields it reads. The constructors below
// validate once so stages never re-check options at the point of use.

// AudioConfig configures audio acquisition.
type AudioConfig struct {
	ContentDir string
	YtDlp      string
	FFmpeg     string
	FFprobe    string
}

// NewAudioConfig narrows settings for the audio acquirer.
func NewAudioConfig(s Settings) AudioConfig {
	return AudioConfig{
		ContentDir: s.ContentDir,
		YtDlp:      s.Tools.YtDlp,
		FFmpeg:     s.Tools.FFmpeg,
		FFprobe:    s.Tools.FFprobe,
	}
}

// TranscriptionConfig configures exactly one transcription backend.
type TranscriptionConfig struct {
	Kind             TranscriptionKind
	Model            string
	SpeakerLabels    bool
	SpeakersExpected int
	ContentDir       string
	APIKey           string

	WhisperCppDir   string
	WhisperBinary   string
	DockerBinary    string
	DockerContainer string
	// DockerContentDir is ContentDir as seen inside the whisper container.
	DockerContentDir string
	PythonBinary     string
	DiarizationDir   string

	PollInterval    time.Duration
	MaxPollAttempts int
	HTTPTimeout     time.Duration
}

// NewTranscriptionConfig validates the chosen backend's model and credential.
func NewTranscriptionConfig(opts ProcessingOptions, s Settings, getenv Getenv) (TranscriptionConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	opts = opts.WithDefaults()
	choice := opts.Transcription

	cfg := TranscriptionConfig{
		Kind:             choice.Backend,
		Model:            strings.TrimSpace(choice.Model),
		SpeakerLabels:    opts.SpeakerLabels,
		SpeakersExpected: opts.SpeakersExpected,
		ContentDir:       s.ContentDir,
		WhisperCppDir:    s.Whisper.CppDir,
		WhisperBinary:    s.Tools.Whisper,
		DockerBinary:     s.Tools.Docker,
		DockerContainer:  s.Whisper.DockerContainer,
		DockerContentDir: s.Whisper.DockerContentDir,
		PythonBinary:     s.Tools.Python,
		DiarizationDir:   s.Whisper.DiarizationDir,
		PollInterval:     s.Assembly.PollInterval,
		MaxPollAttempts:  s.Assembly.MaxPollAttempts,
		HTTPTimeout:      s.HTTP.Timeout,
	}

	switch {
	case cfg.Kind.IsWhisper():
		model, ok := ResolveWhisperModel(cfg.Model)
		if !ok {
			return cfg, &utils.ValidationError{
				Field:   string(cfg.Kind),
				Message: fmt.Sprintf("unknown whisper model %q, expected one of %s", cfg.Model, strings.Join(WhisperModelNames(), ", ")),
			}
		}
		cfg.Model = model
	case cfg.Kind == TranscriptionAssembly:
		if !assemblyModels[cfg.Model] {
			return cfg, &utils.ValidationError{
				Field:   string(cfg.Kind),
				Message: fmt.Sprintf("unknown AssemblyAI speech model %q", cfg.Model),
			}
		}
	case cfg.Kind == TranscriptionDeepgram:
		// Deepgram model names are open ended.
	default:
		return cfg, &utils.ValidationError{Field: "transcription", Message: fmt.Sprintf("unknown transcription backend %q", cfg.Kind)}
	}

	if variable := TranscriptionCredentialVariable(cfg.Kind); variable != "" {
		cfg.APIKey = strings.TrimSpace(getenv(variable))
		if cfg.APIKey == "" {
			return cfg, &apperr.CredentialMissingError{Backend: string(cfg.Kind), Variable: variable}
		}
	}

	if cfg.SpeakersExpected != 0 {
		cfg.SpeakersExpected = lo.Clamp(cfg.SpeakersExpected, 1, 25)
	}

	return cfg, nil
}

// LLMConfig configures exactly one language model provider.
type LLMConfig struct {
	Provider    LLMProvider
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Retry       RetrySettings
	HTTPTimeout time.Duration
}

// NewLLMConfig returns nil when no provider was selected.
func NewLLMConfig(opts ProcessingOptions, s Settings, getenv Getenv) (*LLMConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	opts = opts.WithDefaults()
	if opts.LLM.Provider == "" {
		return nil, nil
	}
	if !lo.Contains(LLMProviders, opts.LLM.Provider) {
		return nil, &utils.ValidationError{Field: "llm", Message: fmt.Sprintf("unknown LLM provider %q", opts.LLM.Provider)}
	}

	cfg := &LLMConfig{
		Provider:    opts.LLM.Provider,
		Model:       strings.TrimSpace(opts.LLM.Model),
		MaxTokens:   s.LLM.MaxTokens,
		HTTPTimeout: s.HTTP.Timeout,
		BaseURL:     s.LLM.BaseURLs[string(opts.LLM.Provider)],
	}
	if cfg.Provider == LLMGemini {
		cfg.Retry = s.Gemini
	}

	if variable := LLMCredentialVariable(cfg.Provider); variable != "" {
		cfg.APIKey = strings.TrimSpace(getenv(variable))
		if cfg.APIKey == "" {
			return nil, &apperr.CredentialMissingError{Backend: string(cfg.Provider), Variable: variable}
		}
	}
	if cfg.Provider == LLMOllama && cfg.BaseURL == "" {
		if host := strings.TrimSpace(getenv("OLLAMA_HOST")); host != "" {
			if !strings.HasPrefix(host, "http") {
				host = "http://" + host
			}
			cfg.BaseURL = strings.TrimRight(host, "/") + "/v1"
		}
	}
	return cfg, nil
}

// FeedConfig holds the RSS selection policy.
type FeedConfig struct {
	Order   string
	Skip    int
	Last    int
	Items   []string
	Info    bool
	Timeout time.Duration
}

// NewFeedConfig narrows validated options for the feed selector.
func NewFeedConfig(opts ProcessingOptions, s Settings) FeedConfig {
	opts = opts.WithDefaults()
	return FeedConfig{
		Order:   opts.Order,
		Skip:    opts.Skip,
		Last:    opts.Last,
		Items:   lo.Uniq(lo.Compact(lo.Map(opts.Items, func(u string, _ int) string { return strings.TrimSpace(u) }))),
		Info:    opts.Info,
		Timeout: s.Feed.Timeout,
	}
}
