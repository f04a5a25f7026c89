package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	dgapi "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest"
	dgresp "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/rest/interfaces"
	dginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	dglisten "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/samber/lo"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/transcript"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// deepgram posts the whole WAV to the prerecorded listen endpoint.
type deepgram struct {
	cfg  config.TranscriptionConfig
	host string
}

func (d *deepgram) sealed()                        {}
func (d *deepgram) Kind() config.TranscriptionKind { return config.TranscriptionDeepgram }

func (d *deepgram) fail(msg string, err error) error {
	var se *dginterfaces.StatusError
	if errors.As(err, &se) && se.Resp != nil {
		msg = fmt.Sprintf("%s: status %d", msg, se.Resp.StatusCode)
		if se.DeepgramError != nil && se.DeepgramError.ErrMsg != "" {
			msg += ": " + se.DeepgramError.ErrMsg
		}
	}
	return &apperr.TranscriptionFailedError{Backend: string(d.Kind()), Message: msg, Err: err}
}

func (d *deepgram) options() *dginterfaces.PreRecordedTranscriptionOptions {
	return &dginterfaces.PreRecordedTranscriptionOptions{
		Model:       d.cfg.Model,
		SmartFormat: true,
		Punctuate:   true,
		Paragraphs:  true,
		Diarize:     d.cfg.SpeakerLabels,
	}
}

func (d *deepgram) Transcribe(ctx context.Context, wavPath, stem string) (Result, error) {
	audio, err := os.Open(wavPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open audio: %w", err)
	}
	defer audio.Close()

	c := dglisten.NewREST(d.cfg.APIKey, &dginterfaces.ClientOptions{Host: d.host})
	if c == nil {
		return Result{}, d.fail("invalid client options", nil)
	}

	if d.cfg.HTTPTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.HTTPTimeout)
		defer cancel()
	}
	ctx = dginterfaces.WithCustomHeaders(ctx, http.Header{"Content-Type": []string{"audio/wav"}})

	utils.LogVerbose("Sending %s to Deepgram (model %s)", wavPath, d.cfg.Model)
	resp, err := dgapi.New(c).FromStream(ctx, audio, d.options())
	if err != nil {
		return Result{}, d.fail("request failed", err)
	}
	if resp.Results == nil || len(resp.Results.Channels) == 0 || len(resp.Results.Channels[0].Alternatives) == 0 {
		return Result{}, d.fail("response contained no alternatives", nil)
	}

	alt := resp.Results.Channels[0].Alternatives[0]
	text := transcript.NormalizeDeepgram(lo.Map(alt.Words, func(w dgresp.Word, _ int) transcript.DeepgramWord {
		return transcript.DeepgramWord{
			Word:           w.Word,
			PunctuatedWord: w.PunctuatedWord,
			Start:          w.Start,
			End:            w.End,
			Confidence:     w.Confidence,
			Speaker:        w.Speaker,
		}
	}))
	if strings.TrimSpace(text) == "" {
		text = alt.Transcript
	}
	return writeCanonical(d.cfg.ContentDir, stem, text)
}
