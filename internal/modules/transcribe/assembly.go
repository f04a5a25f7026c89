package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/transcript"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

const (
	assemblyCompleted aai.TranscriptStatus = "completed"
	assemblyError     aai.TranscriptStatus = "error"
)

// assembly uploads the WAV, creates a transcript job and polls it.
type assembly struct {
	cfg    config.TranscriptionConfig
	client *aai.Client
	sleep  Sleeper
}

func newAssembly(cfg config.TranscriptionConfig, deps Deps) *assembly {
	return &assembly{
		cfg: cfg,
		client: aai.NewClientWithOptions(
			aai.WithAPIKey(cfg.APIKey),
			aai.WithBaseURL(deps.AssemblyURL),
			aai.WithHTTPClient(deps.HTTP),
		),
		sleep: deps.Sleep,
	}
}

func (a *assembly) sealed()                        {}
func (a *assembly) Kind() config.TranscriptionKind { return config.TranscriptionAssembly }

func (a *assembly) fail(msg string, err error) error {
	var apiErr aai.APIError
	if errors.As(err, &apiErr) {
		msg = fmt.Sprintf("%s: status %d: %s", msg, apiErr.Status, apiErr.Message)
	}
	return &apperr.TranscriptionFailedError{Backend: string(a.Kind()), Message: msg, Err: err}
}

func (a *assembly) params() *aai.TranscriptOptionalParams {
	p := &aai.TranscriptOptionalParams{
		SpeechModel:   aai.SpeechModel(a.cfg.Model),
		SpeakerLabels: aai.Bool(a.cfg.SpeakerLabels),
	}
	if a.cfg.SpeakersExpected > 0 {
		p.SpeakersExpected = aai.Int64(int64(a.cfg.SpeakersExpected))
	}
	return p
}

func (a *assembly) Transcribe(ctx context.Context, wavPath, stem string) (Result, error) {
	audio, err := os.Open(wavPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open audio: %w", err)
	}
	defer audio.Close()

	utils.LogVerbose("Uploading %s to AssemblyAI", wavPath)
	uploadURL, err := a.client.Upload(ctx, audio)
	if err != nil {
		return Result{}, a.fail("upload", err)
	}
	if uploadURL == "" {
		return Result{}, a.fail("upload returned no upload_url", nil)
	}

	job, err := a.client.Transcripts.SubmitFromURL(ctx, uploadURL, a.params())
	if err != nil {
		return Result{}, a.fail("submit", err)
	}
	id := aai.ToString(job.ID)
	if id == "" {
		return Result{}, a.fail("transcript request returned no id", nil)
	}
	utils.LogVerbose("AssemblyAI job %s created with model %s", id, a.cfg.Model)

	done, err := a.poll(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return writeCanonical(a.cfg.ContentDir, stem, transcript.NormalizeAssembly(fromSDK(done), a.cfg.SpeakerLabels))
}

// poll waits PollInterval between requests and gives up after MaxPollAttempts.
func (a *assembly) poll(ctx context.Context, id string) (aai.Transcript, error) {
	for attempt := 1; attempt <= a.cfg.MaxPollAttempts; attempt++ {
		t, err := a.client.Transcripts.Get(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return t, ctx.Err()
			}
			return t, a.fail("poll", err)
		}

		switch t.Status {
		case assemblyCompleted:
			return t, nil
		case assemblyError:
			msg := aai.ToString(t.Error)
			if msg == "" {
				msg = "job " + id + " failed"
			}
			return t, a.fail(msg, nil)
		}

		utils.LogDebug("AssemblyAI job %s status %s (poll %d)", id, t.Status, attempt)
		if attempt == a.cfg.MaxPollAttempts {
			break
		}
		if err := a.sleep(ctx, a.cfg.PollInterval); err != nil {
			return t, err
		}
	}
	return aai.Transcript{}, &apperr.TranscriptionTimeoutError{
		Backend:  string(a.Kind()),
		JobID:    id,
		Attempts: a.cfg.MaxPollAttempts,
	}
}

// fromSDK copies the fields the normalizer reads out of the SDK's
// pointer-heavy transcript.
func fromSDK(t aai.Transcript) transcript.AssemblyTranscript {
	word := func(w aai.TranscriptWord, _ int) transcript.AssemblyWord {
		return transcript.AssemblyWord{
			Text:       aai.ToString(w.Text),
			Start:      aai.ToInt64(w.Start),
			End:        aai.ToInt64(w.End),
			Confidence: aai.ToFloat64(w.Confidence),
			Speaker:    aai.ToString(w.Speaker),
		}
	}
	return transcript.AssemblyTranscript{
		ID:     aai.ToString(t.ID),
		Status: string(t.Status),
		Error:  aai.ToString(t.Error),
		Text:   aai.ToString(t.Text),
		Words:  lo.Map(t.Words, word),
		Utterances: lo.Map(t.Utterances, func(u aai.TranscriptUtterance, _ int) transcript.AssemblyUtterance {
			return transcript.AssemblyUtterance{
				Speaker: aai.ToString(u.Speaker),
				Start:   aai.ToInt64(u.Start),
				End:     aai.ToInt64(u.End),
				Text:    aai.ToString(u.Text),
				Words:   lo.Map(u.Words, word),
			}
		}),
	}
}
