package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// processFlags holds the flags shared by process and validate.
type processFlags struct {
	set *pflag.FlagSet

	sources       map[config.SourceKind]*string
	transcription map[config.TranscriptionKind]*string
	llms          map[config.LLMProvider]*string

	prompt           []string
	order            string
	skip             int
	last             int
	items            []string
	info             bool
	speakerLabels    bool
	speakersExpected int
	noCleanUp        bool
}

func sourceUsage(k config.SourceKind) string {
	switch k {
	case config.SourceVideo:
		return "Process a single video URL"
	case config.SourcePlaylist:
		return "Process every video of a playlist URL"
	case config.SourceURLs:
		return "Process a file with one URL per line"
	case config.SourceFile:
		return "Process a local audio or video file"
	default:
		return "Process items of a podcast RSS feed"
	}
}

func bindProcessFlags(cmd *cobra.Command) *processFlags {
	f := &processFlags{
		sources:       map[config.SourceKind]*string{},
		transcription: map[config.TranscriptionKind]*string{},
		llms:          map[config.LLMProvider]*string{},
	}
	flags := cmd.Flags()
	f.set = flags

	for _, k := range config.SourceKinds {
		f.sources[k] = flags.String(string(k), "", sourceUsage(k))
	}
	for _, k := range config.TranscriptionKinds {
		f.transcription[k] = optionalValue(flags, string(k), config.DefaultTranscriptionModel(k),
			"Transcribe with "+string(k)+", optionally naming the model as --"+string(k)+"=MODEL")
	}
	for _, p := range config.LLMProviders {
		f.llms[p] = optionalValue(flags, string(p), config.DefaultLLMModel(p),
			"Generate show notes with "+string(p)+", optionally naming the model as --"+string(p)+"=MODEL")
	}

	flags.StringSliceVar(&f.prompt, "prompt", nil, "Prompt sections to include (default summary,longChapters)")
	flags.StringVar(&f.order, "order", "", "RSS item order: newest or oldest")
	flags.IntVar(&f.skip, "skip", 0, "Number of RSS items to skip")
	flags.IntVar(&f.last, "last", 0, "Process only the first N RSS items (N >= 1)")
	flags.StringArrayVar(&f.items, "item", nil, "Process only the RSS item with this enclosure URL (repeatable)")
	flags.BoolVar(&f.info, "info", false, "Write item metadata as JSON instead of processing")
	flags.BoolVar(&f.speakerLabels, "speakerLabels", false, "Label speakers in the transcript (deepgram, assembly)")
	flags.IntVar(&f.speakersExpected, "speakersExpected", 0, "Expected number of speakers (assembly)")
	flags.BoolVar(&f.noCleanUp, "noCleanUp", false, "Keep intermediate audio and transcript files")
	return f
}

// optionalValue registers a string flag that may be given without a value,
// in which case it holds def. A model must be attached with "=": in
// "--whisper tiny" the flag takes its default and "tiny" is left as an
// argument, which noModelArgs rejects.
func optionalValue(flags *pflag.FlagSet, name, def, usage string) *string {
	v := flags.String(name, "", usage)
	flags.Lookup(name).NoOptDefVal = def
	return v
}

// noModelArgs rejects positional arguments, which are almost always a model
// name separated from its flag by a space.
func noModelArgs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	return &utils.ValidationError{
		Field:   "args",
		Message: fmt.Sprintf("unexpected argument %q: attach model names with '=', e.g. --whisper=%s", args[0], args[0]),
	}
}

func pick[K ~string](group string, values map[K]*string, order []K) (K, string, error) {
	set := make(map[string]string, len(values))
	for k, v := range values {
		set[string(k)] = *v
	}
	key, value, err := config.PickOne(group, set, lo.Map(order, func(k K, _ int) string { return string(k) }))
	return K(key), value, err
}

// options turns the parsed flags into ProcessingOptions. Conflicting flags
// are validation errors.
func (f *processFlags) options() (config.ProcessingOptions, error) {
	source, input, err := pick("source", f.sources, config.SourceKinds)
	if err != nil {
		return config.ProcessingOptions{}, err
	}
	backend, model, err := pick("transcription", f.transcription, config.TranscriptionKinds)
	if err != nil {
		return config.ProcessingOptions{}, err
	}
	provider, llmModel, err := pick("llm", f.llms, config.LLMProviders)
	if err != nil {
		return config.ProcessingOptions{}, err
	}

	// 0 means unset in ProcessingOptions, so an explicit --last 0 is caught here.
	if f.set != nil && f.set.Changed("last") && f.last < 1 {
		return config.ProcessingOptions{}, &utils.ValidationError{
			Field:   "last",
			Message: fmt.Sprintf("must be a positive integer, got %d", f.last),
		}
	}

	opts := config.ProcessingOptions{
		Source:           source,
		Input:            input,
		Transcription:    config.TranscriptionChoice{Backend: backend, Model: model},
		LLM:              config.LLMChoice{Provider: provider, Model: llmModel},
		Prompt:           f.prompt,
		Order:            f.order,
		Skip:             f.skip,
		Last:             f.last,
		Items:            f.items,
		Info:             f.info,
		SpeakerLabels:    f.speakerLabels,
		SpeakersExpected: f.speakersExpected,
		NoCleanUp:        f.noCleanUp,
	}.WithDefaults()

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
