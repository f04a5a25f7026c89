package extractaudio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

const (
	sampleRate = 16000
	channels   = 1
	pcmCodec   = "pcm_s16le"
)

// supportedFormats are ffprobe format_name tokens accepted for local input.
var supportedFormats = map[string]bool{
	"wav":      true,
	"mp3":      true,
	"mov":      true,
	"mp4":      true,
	"m4a":      true,
	"3gp":      true,
	"aac":      true,
	"ogg":      true,
	"flac":     true,
	"matroska": true,
	"webm":     true,
	"avi":      true,
}

// ProbeOutput is the subset of `ffprobe -print_format json` that is inspected.
type ProbeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// IsTargetWav reports whether the probed file already is 16 kHz mono PCM WAV.
func (p ProbeOutput) IsTargetWav() bool {
	if !p.hasFormat("wav") {
		return false
	}
	for _, s := range p.Streams {
		if s.CodecType == "audio" && s.CodecName == pcmCodec && s.SampleRate == sampleRate && s.Channels == channels {
			return true
		}
	}
	return false
}

func (p ProbeOutput) hasFormat(name string) bool {
	for _, f := range strings.Split(p.Format.FormatName, ",") {
		if strings.TrimSpace(f) == name {
			return true
		}
	}
	return false
}

func (p ProbeOutput) supported() bool {
	for _, f := range strings.Split(p.Format.FormatName, ",") {
		if supportedFormats[strings.TrimSpace(f)] {
			return true
		}
	}
	return false
}

func (p ProbeOutput) hasAudio() bool {
	for _, s := range p.Streams {
		if s.CodecType == "audio" {
			return true
		}
	}
	return false
}

// Acquirer produces {stem}.wav in the content directory.
type Acquirer struct {
	cfg config.AudioConfig
	cmd utils.CommandExecutor
}

// New creates an acquirer
func New(cfg config.AudioConfig, cmd utils.CommandExecutor) *Acquirer {
	if cmd == nil {
		cmd = &utils.RealCommandExecutor{}
	}
	return &Acquirer{cfg: cfg, cmd: cmd}
}

// WavPath returns where the audio for stem is written.
func (a *Acquirer) WavPath(stem string) string {
	return filepath.Join(a.cfg.ContentDir, stem+".wav")
}

// FromURL downloads the audio track of a single video with yt-dlp.
func (a *Acquirer) FromURL(ctx context.Context, url, stem string) (string, error) {
	if err := a.require(a.cfg.YtDlp); err != nil {
		return "", err
	}
	if err := os.MkdirAll(a.cfg.ContentDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}

	wav := a.WavPath(stem)
	utils.LogVerbose("Downloading audio from %s to %s", url, wav)

	_, err := a.cmd.ExecuteCommand(ctx, a.cfg.YtDlp, []string{
		"--restrict-filenames",
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", fmt.Sprintf("ffmpeg:-ar %d -ac %d", sampleRate, channels),
		"-o", filepath.Join(a.cfg.ContentDir, stem+".%(ext)s"),
		url,
	})
	if err != nil {
		return "", acquisitionError(url, err)
	}
	if !utils.FileExists(wav) {
		return "", &apperr.AcquisitionError{Source: url, Err: fmt.Errorf("expected %s was not created", wav)}
	}

	utils.LogSuccess("Downloaded audio to %s", utils.Highlight(wav))
	return wav, nil
}

// FromFile converts a local audio or video file. Files that already are
// 16 kHz mono PCM WAV are copied unchanged.
func (a *Acquirer) FromFile(ctx context.Context, path, stem string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", &apperr.AcquisitionError{Source: path, Err: err}
	}
	if err := a.require(a.cfg.FFprobe); err != nil {
		return "", err
	}

	probe, err := a.Probe(ctx, path)
	if err != nil {
		return "", err
	}
	if !probe.supported() || !probe.hasAudio() {
		return "", &apperr.UnsupportedFormatError{Path: path, Format: probe.Format.FormatName}
	}

	if err := os.MkdirAll(a.cfg.ContentDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}
	wav := a.WavPath(stem)

	if probe.IsTargetWav() {
		if sameFile(path, wav) {
			return wav, nil
		}
		utils.LogVerbose("Input is already %d Hz mono WAV, copying %s", sampleRate, path)
		if err := utils.CopyFile(path, wav); err != nil {
			return "", &apperr.AcquisitionError{Source: path, Err: err}
		}
		return wav, nil
	}

	if err := a.require(a.cfg.FFmpeg); err != nil {
		return "", err
	}
	utils.LogVerbose("Transcoding %s to %s", path, wav)

	// ffmpeg cannot read and write the same file, so an input that already
	// sits at the output path is converted through a temporary file.
	out := wav
	inPlace := sameFile(path, wav) || filepath.Clean(path) == filepath.Clean(wav)
	if inPlace {
		tmp, err := os.CreateTemp(a.cfg.ContentDir, stem+"-*.wav")
		if err != nil {
			return "", &apperr.AcquisitionError{Source: path, Err: err}
		}
		out = tmp.Name()
		tmp.Close()
		defer os.Remove(out)
	}

	_, err = a.cmd.ExecuteCommand(ctx, a.cfg.FFmpeg, []string{
		"-i", path,
		"-vn",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-c:a", pcmCodec,
		"-y",
		"-loglevel", "error",
		out,
	})
	if err != nil {
		return "", acquisitionError(path, err)
	}
	if inPlace {
		if err := os.Rename(out, wav); err != nil {
			return "", &apperr.AcquisitionError{Source: path, Err: err}
		}
	}

	utils.LogSuccess("Converted audio to %s", utils.Highlight(wav))
	return wav, nil
}

// Probe runs ffprobe on path.
func (a *Acquirer) Probe(ctx context.Context, path string) (*ProbeOutput, error) {
	out, err := a.cmd.ExecuteCommand(ctx, a.cfg.FFprobe, []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	})
	if err != nil {
		return nil, &apperr.UnsupportedFormatError{Path: path}
	}

	var probe ProbeOutput
	if err := json.Unmarshal(out, &probe); err != nil || probe.Format.FormatName == "" {
		return nil, &apperr.UnsupportedFormatError{Path: path}
	}
	return &probe, nil
}

func (a *Acquirer) require(tool string) error {
	if _, err := a.cmd.LookPath(tool); err != nil {
		return &apperr.DependencyMissingError{Tool: tool, Err: err}
	}
	return nil
}

func acquisitionError(source string, err error) error {
	var cmdErr *utils.CommandError
	if errors.As(err, &cmdErr) {
		return &apperr.AcquisitionError{Source: source, Stderr: cmdErr.Stderr, Err: cmdErr.Err}
	}
	return &apperr.AcquisitionError{Source: source, Err: err}
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
