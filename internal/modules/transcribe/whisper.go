package transcribe

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/transcript"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// dockerAppDir is where the whisper container mounts the repository.
const dockerAppDir = "/app"

func modelFile(root, model string) string {
	return filepath.Join(root, "models", "ggml-"+model+".bin")
}

func failed(kind config.TranscriptionKind, msg string, err error) error {
	var cmdErr *utils.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr != "" {
		return &apperr.TranscriptionFailedError{Backend: string(kind), Message: msg + ": " + cmdErr.Stderr, Err: cmdErr.Err}
	}
	return &apperr.TranscriptionFailedError{Backend: string(kind), Message: msg, Err: err}
}

// whisperCLI runs a local whisper.cpp build.
type whisperCLI struct {
	cfg config.TranscriptionConfig
	cmd utils.CommandExecutor
}

func (w *whisperCLI) sealed()                        {}
func (w *whisperCLI) Kind() config.TranscriptionKind { return config.TranscriptionWhisper }

func (w *whisperCLI) binary() string {
	return filepath.Join(w.cfg.WhisperCppDir, "build", "bin", "whisper-cli")
}

func (w *whisperCLI) Transcribe(ctx context.Context, wavPath, stem string) (Result, error) {
	model := modelFile(w.cfg.WhisperCppDir, w.cfg.Model)
	if !utils.FileExists(model) {
		utils.LogInfo("Model %s not found, downloading", w.cfg.Model)
		script := filepath.Join(w.cfg.WhisperCppDir, "models", "download-ggml-model.sh")
		if _, err := w.cmd.ExecuteCommand(ctx, "bash", []string{script, w.cfg.Model}); err != nil {
			return Result{}, failed(w.Kind(), "model download failed", err)
		}
	}

	out := filepath.Join(w.cfg.ContentDir, stem)
	utils.LogVerbose("Running whisper.cpp with model %s on %s", w.cfg.Model, wavPath)
	if _, err := w.cmd.ExecuteCommand(ctx, w.binary(), []string{
		"-m", model,
		"-f", wavPath,
		"-of", out,
		"--output-lrc",
	}); err != nil {
		return Result{}, failed(w.Kind(), "whisper-cli failed", err)
	}

	return fromLRC(w.Kind(), w.cfg.ContentDir, stem)
}

// whisperDocker runs whisper.cpp inside a long-lived container that mounts the
// content directory, by default at /app/<base name of ContentDir>.
type whisperDocker struct {
	cfg config.TranscriptionConfig
	cmd utils.CommandExecutor
}

func (w *whisperDocker) sealed()                        {}
func (w *whisperDocker) Kind() config.TranscriptionKind { return config.TranscriptionWhisperDocker }

func (w *whisperDocker) exec(ctx context.Context, args ...string) error {
	_, err := w.cmd.ExecuteCommand(ctx, w.cfg.DockerBinary, append([]string{"exec", w.cfg.DockerContainer}, args...))
	return err
}

// contentDir is ContentDir as seen inside the container. Container paths are
// always slash-separated.
func (w *whisperDocker) contentDir() string {
	if w.cfg.DockerContentDir != "" {
		return w.cfg.DockerContentDir
	}
	return path.Join(dockerAppDir, filepath.Base(w.cfg.ContentDir))
}

func (w *whisperDocker) Transcribe(ctx context.Context, wavPath, stem string) (Result, error) {
	root := dockerAppDir + "/whisper.cpp"
	model := root + "/models/ggml-" + w.cfg.Model + ".bin"

	if err := w.exec(ctx, "test", "-f", model); err != nil {
		utils.LogInfo("Model %s not found in %s, downloading", w.cfg.Model, w.cfg.DockerContainer)
		if err := w.exec(ctx, "bash", root+"/models/download-ggml-model.sh", w.cfg.Model); err != nil {
			return Result{}, failed(w.Kind(), "model download failed", err)
		}
	}

	content := w.contentDir()
	utils.LogVerbose("Running whisper.cpp in container %s with model %s", w.cfg.DockerContainer, w.cfg.Model)
	if err := w.exec(ctx,
		root+"/build/bin/whisper-cli",
		"-m", model,
		"-f", path.Join(content, filepath.Base(wavPath)),
		"-of", path.Join(content, stem),
		"--output-lrc",
	); err != nil {
		return Result{}, failed(w.Kind(), "docker exec failed", err)
	}

	return fromLRC(w.Kind(), w.cfg.ContentDir, stem)
}

func fromLRC(kind config.TranscriptionKind, contentDir, stem string) (Result, error) {
	lrc := filepath.Join(contentDir, stem+".lrc")
	raw, err := utils.ReadTextFile(lrc)
	if err != nil {
		return Result{}, failed(kind, "missing lrc output", err)
	}
	return writeCanonical(contentDir, stem, transcript.NormalizeLRC(raw), lrc)
}

// whisperPython runs the openai-whisper command line tool.
type whisperPython struct {
	cfg config.TranscriptionConfig
	cmd utils.CommandExecutor
}

func (w *whisperPython) sealed()                        {}
func (w *whisperPython) Kind() config.TranscriptionKind { return config.TranscriptionWhisperPython }

func (w *whisperPython) Transcribe(ctx context.Context, wavPath, stem string) (Result, error) {
	utils.LogVerbose("Running openai-whisper with model %s on %s", w.cfg.Model, wavPath)
	if _, err := w.cmd.ExecuteCommand(ctx, w.cfg.WhisperBinary, []string{
		wavPath,
		"--model", w.cfg.Model,
		"--output_dir", w.cfg.ContentDir,
		"--output_format", "srt",
	}); err != nil {
		return Result{}, failed(w.Kind(), "whisper failed", err)
	}
	return fromSRT(w.Kind(), w.cfg.ContentDir, stem)
}

// whisperDiarization runs whisper-diarization's diarize.py, which writes
// {stem}.srt and {stem}.txt next to the input.
type whisperDiarization struct {
	cfg config.TranscriptionConfig
	cmd utils.CommandExecutor
}

func (w *whisperDiarization) sealed() {}
func (w *whisperDiarization) Kind() config.TranscriptionKind {
	return config.TranscriptionWhisperDiarization
}

func (w *whisperDiarization) Transcribe(ctx context.Context, wavPath, stem string) (Result, error) {
	script := filepath.Join(w.cfg.DiarizationDir, "diarize.py")
	utils.LogVerbose("Running %s with model %s on %s", script, w.cfg.Model, wavPath)
	if _, err := w.cmd.ExecuteCommand(ctx, w.cfg.PythonBinary, []string{
		script,
		"-a", wavPath,
		"--whisper-model", w.cfg.Model,
	}); err != nil {
		return Result{}, failed(w.Kind(), "diarize.py failed", err)
	}
	return fromSRT(w.Kind(), w.cfg.ContentDir, stem)
}

// fromSRT drops the tool's own plain text output before the canonical
// {stem}.txt replaces it.
func fromSRT(kind config.TranscriptionKind, contentDir, stem string) (Result, error) {
	if err := utils.RemoveIfExists(filepath.Join(contentDir, stem+".txt")); err != nil {
		return Result{}, fmt.Errorf("failed to remove raw text output: %w", err)
	}

	srt := filepath.Join(contentDir, stem+".srt")
	raw, err := utils.ReadTextFile(srt)
	if err != nil {
		return Result{}, failed(kind, "missing srt output", err)
	}
	return writeCanonical(contentDir, stem, transcript.NormalizeSRT(raw), srt)
}
