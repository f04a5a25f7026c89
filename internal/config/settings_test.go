package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, s Settings)
		wantErr string
	}{
		{
			name:    "overrides merge with defaults",
			content: "contentDir: out\nfeed:\n  timeout: 30s\nwhisper:\n  dockerContentDir: /data/out\nllm:\n  baseURLs:\n    ollama: http://gpu:11434/v1\n",
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "out", s.ContentDir)
				assert.Equal(t, 30*time.Second, s.Feed.Timeout)
				assert.Equal(t, "http://gpu:11434/v1", s.LLM.BaseURLs["ollama"])
				assert.Equal(t, "yt-dlp", s.Tools.YtDlp)
				assert.Equal(t, 1200, s.Assembly.MaxPollAttempts)
				assert.Equal(t, "/data/out", s.Whisper.DockerContentDir)
				assert.Equal(t, "autoshow-whisper-1", s.Whisper.DockerContainer)
			},
		},
		{
			name:    "home directories are expanded",
			content: "contentDir: ~/shows\nwhisper:\n  cppDir: ~/src/whisper.cpp\n",
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, filepath.Join(home, "shows"), s.ContentDir)
				assert.Equal(t, filepath.Join(home, "src", "whisper.cpp"), s.Whisper.CppDir)
			},
		},
		{
			name:    "invalid values",
			content: "assembly:\n  maxPollAttempts: 0\n",
			wantErr: "maxPollAttempts",
		},
		{
			name:    "malformed yaml",
			content: "contentDir: [",
			wantErr: "failed to parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "autoshow.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			s, err := LoadSettings(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")

	t.Chdir(t.TempDir())
	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}
