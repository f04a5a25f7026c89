package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/feed"
	"github.com/ajcwebdev/autoshow-sub002/internal/modules/artifact"
	"github.com/ajcwebdev/autoshow-sub002/internal/modules/clean"
	extractaudio "github.com/ajcwebdev/autoshow-sub002/internal/modules/extract_audio"
	"github.com/ajcwebdev/autoshow-sub002/internal/modules/metadata"
	"github.com/ajcwebdev/autoshow-sub002/internal/modules/prompt"
	"github.com/ajcwebdev/autoshow-sub002/internal/modules/transcribe"
	"github.com/ajcwebdev/autoshow-sub002/internal/services/llm"
	"github.com/ajcwebdev/autoshow-sub002/internal/services/youtube"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
	"github.com/ajcwebdev/autoshow-sub002/internal/validator"
)

// Deps carries the collaborators of a Pipeline. Zero values are replaced with
// production defaults.
type Deps struct {
	Cmd    utils.CommandExecutor
	Getenv config.Getenv
	// HTTP is used for feeds and model providers.
	HTTP *http.Client
	// Transcription overrides endpoints of the HTTP transcription backends.
	Transcription transcribe.Deps
	// Enricher replaces the YouTube Data API lookup enabled by YOUTUBE_API_KEY.
	Enricher metadata.Enricher
	Covers   metadata.CoverImageFinder
}

// Pipeline runs items through metadata, audio, transcription, prompt, the
// optional language model, assembly and cleanup. Backends are resolved once
// per run.
type Pipeline struct {
	opts     config.ProcessingOptions
	settings config.Settings

	resolver    *metadata.Resolver
	audio       *extractaudio.Acquirer
	transcriber transcribe.Backend
	model       llm.Backend
	assembler   *artifact.Assembler
	fetcher     *feed.Fetcher
	feedCfg     config.FeedConfig
	prompt      string
}

// New validates opts, checks the tools and credentials the run needs and
// resolves its backends. Every error returned here is run-scoped.
func New(ctx context.Context, opts config.ProcessingOptions, settings config.Settings, deps Deps) (*Pipeline, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if deps.Cmd == nil {
		deps.Cmd = &utils.RealCommandExecutor{}
	}
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}

	if err := validator.ValidateExternalTools(deps.Cmd, validator.RequiredTools(opts, settings)); err != nil {
		return nil, err
	}
	if err := validator.ValidateEnvVars(deps.Getenv, validator.RequiredEnvVars(opts)); err != nil {
		return nil, err
	}

	p := &Pipeline{
		opts:      opts,
		settings:  settings,
		resolver:  metadata.NewResolver(deps.Cmd, settings.Tools.YtDlp, resolverOptions(ctx, settings, deps)...),
		audio:     extractaudio.New(config.NewAudioConfig(settings), deps.Cmd),
		assembler: artifact.New(settings.ContentDir),
		fetcher:   feed.NewFetcher(deps.HTTP, settings.Feed.Timeout),
		feedCfg:   config.NewFeedConfig(opts, settings),
	}

	if opts.Info {
		return p, nil
	}

	tcfg, err := config.NewTranscriptionConfig(opts, settings, deps.Getenv)
	if err != nil {
		return nil, err
	}
	tdeps := deps.Transcription
	if tdeps.Cmd == nil {
		tdeps.Cmd = deps.Cmd
	}
	if tdeps.HTTP == nil {
		tdeps.HTTP = deps.HTTP
	}
	if p.transcriber, err = transcribe.New(tcfg, tdeps); err != nil {
		return nil, err
	}

	lcfg, err := config.NewLLMConfig(opts, settings, deps.Getenv)
	if err != nil {
		return nil, err
	}
	if lcfg != nil {
		var llmOpts []llm.Option
		if deps.HTTP != nil {
			llmOpts = append(llmOpts, llm.WithHTTPClient(deps.HTTP))
		}
		if p.model, err = llm.New(ctx, *lcfg, llmOpts...); err != nil {
			return nil, err
		}
	}

	p.prompt = prompt.Build(opts.Prompt)

	if err := os.MkdirAll(settings.ContentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}
	return p, nil
}

func resolverOptions(ctx context.Context, settings config.Settings, deps Deps) []metadata.Option {
	var opts []metadata.Option

	switch {
	case deps.Enricher != nil:
		opts = append(opts, metadata.WithEnricher(deps.Enricher))
	case deps.Getenv("YOUTUBE_API_KEY") != "":
		svc, err := youtube.NewService(ctx, deps.Getenv("YOUTUBE_API_KEY"))
		if err != nil {
			utils.LogWarning("YouTube Data API disabled: %v", err)
		} else {
			opts = append(opts, metadata.WithEnricher(svc))
		}
	}

	covers := deps.Covers
	if covers == nil {
		covers = metadata.NewOpenGraphFinder(settings.HTTP.Timeout)
	}
	return append(opts, metadata.WithCoverImageFinder(covers))
}

// Run dispatches on the source kind. Single item sources return the item's
// error; batch sources only return run-scoped errors.
func (p *Pipeline) Run(ctx context.Context) (*BatchResult, error) {
	switch p.opts.Source {
	case config.SourceVideo:
		return p.single(ctx, Source{URL: p.opts.Input})
	case config.SourceFile:
		return p.single(ctx, Source{Path: p.opts.Input})
	case config.SourcePlaylist:
		return p.RunPlaylist(ctx, p.opts.Input)
	case config.SourceURLs:
		return p.RunURLList(ctx, p.opts.Input)
	case config.SourceRSS:
		return p.RunFeed(ctx, p.opts.Input)
	default:
		return nil, &utils.ValidationError{Field: "source", Message: fmt.Sprintf("unknown source %q", p.opts.Source)}
	}
}

func (p *Pipeline) single(ctx context.Context, src Source) (*BatchResult, error) {
	if p.opts.Info {
		return nil, &utils.ValidationError{Field: "info", Message: "--info can only be used with --rss, --playlist or --urls"}
	}
	res, err := p.RunItem(ctx, src)
	if err != nil {
		return &BatchResult{Failed: []ItemFailure{failure(src, err)}}, err
	}
	return &BatchResult{Succeeded: []RunResult{*res}}, nil
}

// RunItem takes one source through every stage. On failure the returned
// error is a *apperr.StageError and intermediate files are left in place.
func (p *Pipeline) RunItem(ctx context.Context, src Source) (*RunResult, error) {
	if p.transcriber == nil {
		return nil, &utils.ValidationError{Field: "info", Message: "pipeline was created for an info run"}
	}

	state := newWorkflowState(src.label())
	var manifest clean.Manifest

	fail := func(stage Stage, item string, err error) (*RunResult, error) {
		state.fail(stage, err)
		return &RunResult{State: state}, &apperr.StageError{Stage: string(stage), Item: item, Err: err}
	}

	// Metadata
	item, err := p.resolve(ctx, src)
	if err != nil {
		return fail(StageMetadata, src.label(), err)
	}
	stem := item.Stem()
	label := item.Label()
	state.Lock()
	state.Item, state.Stem = label, stem
	state.Unlock()

	utils.LogInfo("Processing %s", utils.Highlight(label))
	frontMatter, fmPath, err := p.assembler.WriteFrontMatter(stem, item)
	if err != nil {
		return fail(StageMetadata, label, err)
	}
	manifest.Add(fmPath)
	state.advance(StageMetadata, StatusMetadataResolved, "Resolved metadata", map[string]interface{}{"stem": stem})

	// Audio
	var wav string
	if src.Path != "" {
		wav, err = p.audio.FromFile(ctx, src.Path, stem)
	} else {
		wav, err = p.audio.FromURL(ctx, item.ShowLink, stem)
	}
	if err != nil {
		return fail(StageAudio, label, err)
	}
	if !samePath(src.Path, wav) {
		manifest.Add(wav)
	}
	state.advance(StageAudio, StatusAudioAcquired, "Acquired audio", map[string]interface{}{"wav": wav})

	// Transcription
	result, err := p.transcriber.Transcribe(ctx, wav, stem)
	manifest.Add(result.Produced...)
	if err != nil {
		return fail(StageTranscription, label, err)
	}
	state.advance(StageTranscription, StatusTranscribed, fmt.Sprintf("Transcribed with %s", p.transcriber.Kind()), map[string]interface{}{
		"files": result.Produced,
	})

	lines := len(result.Transcript.Segments())
	if result.Transcript.IsEmpty() {
		utils.LogWarning("Transcript for %s is empty", label)
	}
	state.advance(StageNormalize, StatusNormalized, "Normalized transcript", map[string]interface{}{"lines": lines})

	// Prompt
	state.advance(StagePrompt, StatusPromptBuilt, "Built prompt", map[string]interface{}{"bytes": len(p.prompt)})

	body := result.Transcript.String()
	out := &RunResult{Item: item, Stem: stem, State: state}

	if p.model != nil {
		var completion llm.Completion
		completion, err = p.model.Generate(ctx, p.prompt, body)
		if err != nil {
			return fail(StageLLM, label, err)
		}
		out.Completion = &completion
		state.advance(StageLLM, StatusLLMGenerated, fmt.Sprintf("Generated show notes with %s", completion.Model), map[string]interface{}{
			"inputTokens":  completion.Usage.Input,
			"outputTokens": completion.Usage.Output,
		})

		out.Output, err = p.assembler.AssembleShowNotes(stem, string(p.model.Provider()), frontMatter, completion.Text, body)
	} else {
		out.Output, err = p.assembler.AssemblePrompt(stem, frontMatter, p.prompt, body)
	}
	if err != nil {
		return fail(StageAssembly, label, err)
	}
	state.advance(StageAssembly, StatusAssembled, "Assembled "+filepath.Base(out.Output), nil)

	// Cleanup
	if p.opts.NoCleanUp {
		utils.LogVerbose("Keeping intermediate files: %v", manifest.Paths())
	} else if err := manifest.Remove(); err != nil {
		utils.LogWarning("Cleanup for %s was incomplete: %v", label, err)
	}
	state.advance(StageCleanup, StatusCleanedUp, "Finished", nil)

	utils.LogSuccess("Wrote %s", utils.Highlight(out.Output))
	return out, nil
}

func (p *Pipeline) resolve(ctx context.Context, src Source) (metadata.MediaItem, error) {
	switch {
	case src.Item != nil:
		return *src.Item, nil
	case src.Path != "":
		return metadata.FromLocalFile(src.Path), nil
	default:
		return p.resolver.Resolve(ctx, src.URL)
	}
}

// RunPlaylist processes every video of a playlist in order.
func (p *Pipeline) RunPlaylist(ctx context.Context, playlistURL string) (*BatchResult, error) {
	urls, err := p.resolver.ListPlaylist(ctx, playlistURL)
	if err != nil {
		if apperr.IsRunScoped(err) {
			return nil, err
		}
		return nil, &apperr.StageError{Stage: string(StageMetadata), Item: playlistURL, Err: err}
	}
	if p.opts.Info {
		return p.writeURLInfo(ctx, "playlist", urls)
	}
	return p.runBatch(ctx, sourcesFromURLs(urls))
}

// RunURLList processes every URL listed in a file, one per line.
func (p *Pipeline) RunURLList(ctx context.Context, path string) (*BatchResult, error) {
	urls, err := metadata.ReadURLList(path)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Found %d URLs in %s", len(urls), path)
	if p.opts.Info {
		return p.writeURLInfo(ctx, "urls", urls)
	}
	return p.runBatch(ctx, sourcesFromURLs(urls))
}

// RunFeed fetches a feed, applies the selection policy and processes the
// selected items. Info runs write the selected items instead.
func (p *Pipeline) RunFeed(ctx context.Context, feedURL string) (*BatchResult, error) {
	f, err := p.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, &apperr.StageError{Stage: string(StageMetadata), Item: feedURL, Err: err}
	}

	selected, err := feed.Select(f.Items, p.feedCfg)
	if err != nil {
		return nil, err
	}
	utils.LogInfo("Selected %d of %d items from %s", len(selected), len(f.Items), utils.Highlight(f.Title))

	if p.feedCfg.Info {
		path, err := feed.WriteInfo(p.settings.ContentDir, f, selected)
		if err != nil {
			return nil, err
		}
		return &BatchResult{InfoPath: path}, nil
	}

	sources := make([]Source, 0, len(selected))
	for _, it := range selected {
		item := f.MediaItem(it)
		sources = append(sources, Source{Item: &item})
	}
	return p.runBatch(ctx, sources)
}

// runBatch processes sources one at a time. Item-scoped failures are logged
// and recorded; a run-scoped failure stops the batch.
func (p *Pipeline) runBatch(ctx context.Context, sources []Source) (*BatchResult, error) {
	res := &BatchResult{Succeeded: []RunResult{}, Failed: []ItemFailure{}}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		utils.LogInfo("Item %d/%d: %s", i+1, len(sources), src.label())

		out, err := p.RunItem(ctx, src)
		if err != nil {
			if apperr.IsRunScoped(err) {
				return res, err
			}
			f := failure(src, err)
			utils.LogError("Item %d/%d failed at %s stage: %s: %v", i+1, len(sources), f.Stage, f.Item, errors.Unwrap(err))
			res.Failed = append(res.Failed, f)
			continue
		}
		res.Succeeded = append(res.Succeeded, *out)
	}

	utils.LogInfo("Processed %d items: %d succeeded, %d failed", len(sources), len(res.Succeeded), len(res.Failed))
	return res, nil
}

func failure(src Source, err error) ItemFailure {
	f := ItemFailure{Item: src.label(), Error: err.Error(), Err: err}
	var se *apperr.StageError
	if errors.As(err, &se) {
		f.Stage = Stage(se.Stage)
		f.Item = se.Item
	}
	return f
}

// writeURLInfo resolves the metadata of every URL and writes it as JSON to
// {content}/{name}_info.json. Items that fail to resolve are skipped.
func (p *Pipeline) writeURLInfo(ctx context.Context, name string, urls []string) (*BatchResult, error) {
	res := &BatchResult{Failed: []ItemFailure{}}
	items := make([]metadata.MediaItem, 0, len(urls))

	for _, u := range urls {
		item, err := p.resolver.Resolve(ctx, u)
		if err != nil {
			if apperr.IsRunScoped(err) {
				return nil, err
			}
			utils.LogError("Could not resolve %s: %v", u, err)
			res.Failed = append(res.Failed, failure(Source{URL: u}, &apperr.StageError{Stage: string(StageMetadata), Item: u, Err: err}))
			continue
		}
		items = append(items, item)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s info: %w", name, err)
	}
	res.InfoPath = filepath.Join(p.settings.ContentDir, name+"_info.json")
	if err := utils.WriteFileAtomic(res.InfoPath, string(data)+"\n"); err != nil {
		return nil, err
	}
	utils.LogSuccess("Information for %d items saved to %s", len(items), utils.Highlight(res.InfoPath))
	return res, nil
}

func sourcesFromURLs(urls []string) []Source {
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		sources = append(sources, Source{URL: u})
	}
	return sources
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
