package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// Feed ordering values accepted by --order.
const (
	OrderNewest = "newest"
	OrderOldest = "oldest"
)

// TranscriptionChoice selects one transcription backend and its model.
type TranscriptionChoice struct {
	Backend TranscriptionKind `json:"backend"`
	Model   string            `json:"model,omitempty"`
}

// LLMChoice selects one language model provider and its model.
// An empty Provider means no show notes are generated.
type LLMChoice struct {
	Provider LLMProvider `json:"provider,omitempty"`
	Model    string      `json:"model,omitempty"`
}

// ProcessingOptions is the per-run request. It is built once by the CLI or the
// HTTP server and is not modified afterwards.
type ProcessingOptions struct {
	Source        SourceKind          `json:"source"`
	Input         string              `json:"input"`
	Transcription TranscriptionChoice `json:"transcription"`
	LLM           LLMChoice           `json:"llm"`
	Prompt        []string            `json:"prompt,omitempty"`

	// RSS selection
	Order string   `json:"order,omitempty"`
	Skip  int      `json:"skip,omitempty"`
	Last  int      `json:"last,omitempty"`
	Items []string `json:"items,omitempty"`
	Info  bool     `json:"info,omitempty"`

	SpeakerLabels    bool `json:"speakerLabels,omitempty"`
	SpeakersExpected int  `json:"speakersExpected,omitempty"`
	NoCleanUp        bool `json:"noCleanUp,omitempty"`
}

// WithDefaults fills the transcription backend and model, the LLM model and
// the feed order when they were left empty.
func (o ProcessingOptions) WithDefaults() ProcessingOptions {
	if o.Transcription.Backend == "" {
		o.Transcription.Backend = TranscriptionWhisper
	}
	if o.Transcription.Model == "" {
		o.Transcription.Model = DefaultTranscriptionModel(o.Transcription.Backend)
	}
	if o.LLM.Provider != "" && o.LLM.Model == "" {
		o.LLM.Model = DefaultLLMModel(o.LLM.Provider)
	}
	if o.Source == SourceRSS && o.Order == "" && o.Last == 0 && len(o.Items) == 0 {
		o.Order = OrderNewest
	}
	return o
}

// Validate checks the structural rules of a run: one known source with an
// input, known backends, and the pairwise exclusions between RSS selection
// parameters.
func (o ProcessingOptions) Validate() error {
	if !lo.Contains(SourceKinds, o.Source) {
		return &utils.ValidationError{
			Field:   "source",
			Message: fmt.Sprintf("exactly one of --%s is required", strings.Join(lo.Map(SourceKinds, func(k SourceKind, _ int) string { return string(k) }), ", --")),
		}
	}
	if strings.TrimSpace(o.Input) == "" {
		return &utils.ValidationError{Field: string(o.Source), Message: "a value is required"}
	}

	if o.Transcription.Backend != "" && !lo.Contains(TranscriptionKinds, o.Transcription.Backend) {
		return &utils.ValidationError{
			Field:   "transcription",
			Message: fmt.Sprintf("unknown transcription backend %q", o.Transcription.Backend),
		}
	}
	if o.LLM.Provider != "" && !lo.Contains(LLMProviders, o.LLM.Provider) {
		return &utils.ValidationError{
			Field:   "llm",
			Message: fmt.Sprintf("unknown LLM provider %q", o.LLM.Provider),
		}
	}

	return o.validateFeedSelection()
}

func (o ProcessingOptions) validateFeedSelection() error {
	rssOnly := o.Order != "" || o.Skip != 0 || o.Last != 0 || len(o.Items) > 0
	if o.Source != SourceRSS {
		if rssOnly {
			return &utils.ValidationError{Field: "rss", Message: "--order, --skip, --last and --item can only be used with --rss"}
		}
		if o.Info && o.Source != SourcePlaylist && o.Source != SourceURLs {
			return &utils.ValidationError{Field: "info", Message: "--info can only be used with --rss, --playlist or --urls"}
		}
		return nil
	}

	if o.Skip < 0 {
		return &utils.ValidationError{Field: "skip", Message: fmt.Sprintf("must be a non-negative integer, got %d", o.Skip)}
	}
	if o.Last < 0 {
		return &utils.ValidationError{Field: "last", Message: fmt.Sprintf("must be a positive integer, got %d", o.Last)}
	}
	if o.Order != "" && o.Order != OrderNewest && o.Order != OrderOldest {
		return &utils.ValidationError{Field: "order", Message: fmt.Sprintf("must be %q or %q, got %q", OrderNewest, OrderOldest, o.Order)}
	}

	if len(o.Items) > 0 && (o.Order != "" || o.Skip != 0 || o.Last != 0) {
		return &utils.ValidationError{Field: "item", Message: "--item cannot be combined with --order, --skip or --last"}
	}
	if o.Last != 0 && (o.Order != "" || o.Skip != 0) {
		return &utils.ValidationError{Field: "last", Message: "--last cannot be combined with --order or --skip"}
	}
	return nil
}

// PickOne returns the single entry of set whose value is non-empty. It is
// used to turn a group of mutually exclusive flags into one choice; more than
// one populated entry is a validation error.
func PickOne(group string, set map[string]string, order []string) (key string, value string, err error) {
	chosen := lo.Filter(order, func(k string, _ int) bool { return set[k] != "" })
	switch len(chosen) {
	case 0:
		return "", "", nil
	case 1:
		return chosen[0], set[chosen[0]], nil
	default:
		return "", "", &utils.ValidationError{
			Field:   group,
			Message: fmt.Sprintf("only one may be selected, got --%s", strings.Join(chosen, ", --")),
		}
	}
}
