package extractaudio

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils/mocks"
)

const (
	mp3Probe = `{"streams":[{"codec_type":"audio","codec_name":"mp3","sample_rate":"44100","channels":2}],
		"format":{"format_name":"mp3","duration":"12.5"}}`
	wavProbe = `{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"16000","channels":1}],
		"format":{"format_name":"wav"}}`
	textProbe = `{"streams":[{"codec_type":"data","codec_name":"bin_data"}],"format":{"format_name":"tty"}}`
)

func testConfig(t *testing.T) config.AudioConfig {
	t.Helper()
	return config.AudioConfig{
		ContentDir: filepath.Join(t.TempDir(), "content"),
		YtDlp:      "yt-dlp",
		FFmpeg:     "ffmpeg",
		FFprobe:    "ffprobe",
	}
}

func writeInput(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// touchLast creates the file named by the last command argument.
func touchLast(args mock.Arguments) {
	cmdArgs := args.Get(2).([]string)
	_ = os.WriteFile(cmdArgs[len(cmdArgs)-1], []byte("RIFF"), 0644)
}

func TestProbeOutput_IsTargetWav(t *testing.T) {
	tests := []struct {
		name   string
		format string
		codec  string
		rate   int
		ch     int
		want   bool
	}{
		{"target", "wav", "pcm_s16le", 16000, 1, true},
		{"stereo", "wav", "pcm_s16le", 16000, 2, false},
		{"44k", "wav", "pcm_s16le", 44100, 1, false},
		{"float", "wav", "pcm_f32le", 16000, 1, false},
		{"not wav", "mp3", "pcm_s16le", 16000, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ProbeOutput
			p.Format.FormatName = tt.format
			p.Streams = append(p.Streams, struct {
				CodecType  string `json:"codec_type"`
				CodecName  string `json:"codec_name"`
				SampleRate int    `json:"sample_rate,string"`
				Channels   int    `json:"channels"`
			}{"audio", tt.codec, tt.rate, tt.ch})
			assert.Equal(t, tt.want, p.IsTargetWav())
		})
	}
}

func TestAcquirer_FromFile_Transcodes(t *testing.T) {
	cfg := testConfig(t)
	in := writeInput(t, "episode.mp3", "ID3")

	cmd := mocks.NewCommandExecutor(t)
	cmd.On("LookPath", "ffprobe").Return("/usr/bin/ffprobe", nil)
	cmd.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
	cmd.On("ExecuteCommand", mock.Anything, "ffprobe", mock.Anything).Return([]byte(mp3Probe), nil)

	wav := filepath.Join(cfg.ContentDir, "episode.wav")
	cmd.On("ExecuteCommand", mock.Anything, "ffmpeg", []string{
		"-i", in, "-vn", "-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le", "-y", "-loglevel", "error", wav,
	}).Run(touchLast).Return([]byte{}, nil)

	got, err := New(cfg, cmd).FromFile(context.Background(), in, "episode")
	require.NoError(t, err)
	assert.Equal(t, wav, got)
	assert.FileExists(t, wav)
}

func TestAcquirer_FromFile_CopiesTargetWav(t *testing.T) {
	cfg := testConfig(t)
	in := writeInput(t, "ready.wav", "RIFF-data")

	cmd := mocks.NewCommandExecutor(t)
	cmd.On("LookPath", "ffprobe").Return("/usr/bin/ffprobe", nil)
	cmd.On("ExecuteCommand", mock.Anything, "ffprobe", mock.Anything).Return([]byte(wavProbe), nil)

	got, err := New(cfg, cmd).FromFile(context.Background(), in, "ready")
	require.NoError(t, err)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "RIFF-data", string(data))
	cmd.AssertNotCalled(t, "LookPath", "ffmpeg")
}

func TestAcquirer_FromFile_InPlace(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.ContentDir, 0755))
	wav := filepath.Join(cfg.ContentDir, "episode.wav")
	require.NoError(t, os.WriteFile(wav, []byte("44k-stereo"), 0644))
	stereoProbe := `{"streams":[{"codec_type":"audio","codec_name":"pcm_s16le","sample_rate":"44100","channels":2}],"format":{"format_name":"wav"}}`

	cmd := mocks.NewCommandExecutor(t)
	cmd.On("LookPath", "ffprobe").Return("/usr/bin/ffprobe", nil)
	cmd.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
	cmd.On("ExecuteCommand", mock.Anything, "ffprobe", mock.Anything).Return([]byte(stereoProbe), nil)

	var out string
	cmd.On("ExecuteCommand", mock.Anything, "ffmpeg", mock.MatchedBy(func(args []string) bool {
		return args[1] == wav && args[len(args)-1] != wav
	})).Run(func(args mock.Arguments) {
		cmdArgs := args.Get(2).([]string)
		out = cmdArgs[len(cmdArgs)-1]
		_ = os.WriteFile(out, []byte("16k-mono"), 0644)
	}).Return([]byte{}, nil)

	got, err := New(cfg, cmd).FromFile(context.Background(), filepath.Join(cfg.ContentDir, ".", "episode.wav"), "episode")
	require.NoError(t, err)
	assert.Equal(t, wav, got)
	assert.Equal(t, cfg.ContentDir, filepath.Dir(out), "temporary output stays in the content directory")

	data, err := os.ReadFile(wav)
	require.NoError(t, err)
	assert.Equal(t, "16k-mono", string(data))
	assert.NoFileExists(t, out)
}

func TestAcquirer_FromFile_Errors(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		cmd := mocks.NewCommandExecutor(t)
		cmd.On("LookPath", "ffprobe").Return("/usr/bin/ffprobe", nil)
		cmd.On("ExecuteCommand", mock.Anything, "ffprobe", mock.Anything).Return([]byte(textProbe), nil)

		_, err := New(testConfig(t), cmd).FromFile(context.Background(), writeInput(t, "notes.txt", "hi"), "notes")
		var uf *apperr.UnsupportedFormatError
		require.True(t, errors.As(err, &uf))
		assert.Equal(t, "tty", uf.Format)
	})

	t.Run("probe fails", func(t *testing.T) {
		cmd := mocks.NewCommandExecutor(t)
		cmd.On("LookPath", "ffprobe").Return("/usr/bin/ffprobe", nil)
		cmd.On("ExecuteCommand", mock.Anything, "ffprobe", mock.Anything).
			Return(nil, &utils.CommandError{Name: "ffprobe", Err: errors.New("exit status 1")})

		_, err := New(testConfig(t), cmd).FromFile(context.Background(), writeInput(t, "x.bin", "??"), "x")
		var uf *apperr.UnsupportedFormatError
		assert.True(t, errors.As(err, &uf))
	})

	t.Run("missing input", func(t *testing.T) {
		cmd := mocks.NewCommandExecutor(t)
		_, err := New(testConfig(t), cmd).FromFile(context.Background(), "/does/not/exist.mp3", "x")
		var ae *apperr.AcquisitionError
		assert.True(t, errors.As(err, &ae))
	})

	t.Run("ffmpeg failure carries stderr", func(t *testing.T) {
		cmd := mocks.NewCommandExecutor(t)
		cmd.On("LookPath", "ffprobe").Return("/usr/bin/ffprobe", nil)
		cmd.On("LookPath", "ffmpeg").Return("/usr/bin/ffmpeg", nil)
		cmd.On("ExecuteCommand", mock.Anything, "ffprobe", mock.Anything).Return([]byte(mp3Probe), nil)
		cmd.On("ExecuteCommand", mock.Anything, "ffmpeg", mock.Anything).
			Return(nil, &utils.CommandError{Name: "ffmpeg", Stderr: "Invalid data found", Err: errors.New("exit status 1")})

		_, err := New(testConfig(t), cmd).FromFile(context.Background(), writeInput(t, "bad.mp3", "ID3"), "bad")
		var ae *apperr.AcquisitionError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, "Invalid data found", ae.Stderr)
	})

	t.Run("ffprobe missing", func(t *testing.T) {
		cmd := mocks.NewCommandExecutor(t)
		cmd.On("LookPath", "ffprobe").Return("", exec.ErrNotFound)

		_, err := New(testConfig(t), cmd).FromFile(context.Background(), writeInput(t, "a.mp3", "ID3"), "a")
		var dm *apperr.DependencyMissingError
		require.True(t, errors.As(err, &dm))
		assert.Equal(t, "ffprobe", dm.Tool)
	})
}

func TestAcquirer_FromURL(t *testing.T) {
	cfg := testConfig(t)
	wav := filepath.Join(cfg.ContentDir, "2024-09-24-my-video.wav")

	cmd := mocks.NewCommandExecutor(t)
	cmd.On("LookPath", "yt-dlp").Return("/usr/bin/yt-dlp", nil)
	cmd.On("ExecuteCommand", mock.Anything, "yt-dlp", []string{
		"--restrict-filenames",
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ar 16000 -ac 1",
		"-o", filepath.Join(cfg.ContentDir, "2024-09-24-my-video.%(ext)s"),
		"https://youtu.be/x",
	}).Run(func(mock.Arguments) {
		_ = os.WriteFile(wav, []byte("RIFF"), 0644)
	}).Return([]byte{}, nil)

	got, err := New(cfg, cmd).FromURL(context.Background(), "https://youtu.be/x", "2024-09-24-my-video")
	require.NoError(t, err)
	assert.Equal(t, wav, got)
}

func TestAcquirer_FromURL_NoOutput(t *testing.T) {
	cmd := mocks.NewCommandExecutor(t)
	cmd.On("LookPath", "yt-dlp").Return("/usr/bin/yt-dlp", nil)
	cmd.On("ExecuteCommand", mock.Anything, "yt-dlp", mock.Anything).Return([]byte{}, nil)

	_, err := New(testConfig(t), cmd).FromURL(context.Background(), "https://youtu.be/x", "stem")
	var ae *apperr.AcquisitionError
	assert.True(t, errors.As(err, &ae))
}
