// Package transcribe turns a 16 kHz mono WAV into a canonical transcript using
// exactly one backend chosen at construction time.
package transcribe

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/transcript"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

const (
	defaultDeepgramURL = "https://api.deepgram.com"
	defaultAssemblyURL = "https://api.assemblyai.com"
)

// Result is what a backend produced for one item.
type Result struct {
	Transcript transcript.Transcript
	// Produced lists every file the backend wrote, including {stem}.txt.
	Produced []string
}

// Backend is implemented only by the backends in this package.
type Backend interface {
	Transcribe(ctx context.Context, wavPath, stem string) (Result, error)
	Kind() config.TranscriptionKind
	sealed()
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Deps carries the collaborators a backend may need. Zero values are replaced
// with production defaults.
type Deps struct {
	Cmd         utils.CommandExecutor
	HTTP        *http.Client
	DeepgramURL string
	AssemblyURL string
	Sleep       Sleeper
}

func (d Deps) withDefaults(cfg config.TranscriptionConfig) Deps {
	if d.Cmd == nil {
		d.Cmd = &utils.RealCommandExecutor{}
	}
	if d.HTTP == nil {
		d.HTTP = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if d.DeepgramURL == "" {
		d.DeepgramURL = defaultDeepgramURL
	}
	if d.AssemblyURL == "" {
		d.AssemblyURL = defaultAssemblyURL
	}
	if d.Sleep == nil {
		d.Sleep = sleepContext
	}
	return d
}

// New resolves cfg.Kind to its backend and checks the tools or credentials it
// needs. It is the only place the backend kind is inspected.
func New(cfg config.TranscriptionConfig, deps Deps) (Backend, error) {
	deps = deps.withDefaults(cfg)

	var (
		b    Backend
		tool string
	)
	switch cfg.Kind {
	case config.TranscriptionWhisper:
		w := &whisperCLI{cfg: cfg, cmd: deps.Cmd}
		b, tool = w, w.binary()
	case config.TranscriptionWhisperDocker:
		b, tool = &whisperDocker{cfg: cfg, cmd: deps.Cmd}, cfg.DockerBinary
	case config.TranscriptionWhisperPython:
		b, tool = &whisperPython{cfg: cfg, cmd: deps.Cmd}, cfg.WhisperBinary
	case config.TranscriptionWhisperDiarization:
		b, tool = &whisperDiarization{cfg: cfg, cmd: deps.Cmd}, cfg.PythonBinary
	case config.TranscriptionDeepgram:
		b = &deepgram{cfg: cfg, host: deps.DeepgramURL}
	case config.TranscriptionAssembly:
		b = newAssembly(cfg, deps)
	default:
		return nil, &utils.ValidationError{Field: "transcription", Message: fmt.Sprintf("unknown transcription backend %q", cfg.Kind)}
	}

	if variable := config.TranscriptionCredentialVariable(cfg.Kind); variable != "" && cfg.APIKey == "" {
		return nil, &apperr.CredentialMissingError{Backend: string(cfg.Kind), Variable: variable}
	}
	if tool != "" {
		if err := requireTool(deps.Cmd, tool); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func requireTool(cmd utils.CommandExecutor, tool string) error {
	if _, err := cmd.LookPath(tool); err != nil {
		return &apperr.DependencyMissingError{Tool: tool, Err: err}
	}
	return nil
}

// writeCanonical stores text as {stem}.txt and returns the result with the
// raw files that preceded it.
func writeCanonical(contentDir, stem, text string, raw ...string) (Result, error) {
	t := transcript.New(text)
	txt := filepath.Join(contentDir, stem+".txt")
	if err := utils.WriteTextFile(txt, t.String()+"\n"); err != nil {
		return Result{Produced: raw}, err
	}
	return Result{Transcript: t, Produced: append(raw, txt)}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
