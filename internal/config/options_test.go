package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

func TestProcessingOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    ProcessingOptions
		wantErr string
	}{
		{
			name: "video with defaults",
			opts: ProcessingOptions{Source: SourceVideo, Input: "https://www.youtube.com/watch?v=abc"},
		},
		{
			name:    "missing source",
			opts:    ProcessingOptions{Input: "x"},
			wantErr: "source",
		},
		{
			name:    "missing input",
			opts:    ProcessingOptions{Source: SourceFile},
			wantErr: "file",
		},
		{
			name:    "unknown backend",
			opts:    ProcessingOptions{Source: SourceFile, Input: "a.mp3", Transcription: TranscriptionChoice{Backend: "vosk"}},
			wantErr: "transcription",
		},
		{
			name:    "unknown llm",
			opts:    ProcessingOptions{Source: SourceFile, Input: "a.mp3", LLM: LLMChoice{Provider: "eliza"}},
			wantErr: "llm",
		},
		{
			name:    "rss flags on video",
			opts:    ProcessingOptions{Source: SourceVideo, Input: "u", Last: 2},
			wantErr: "rss",
		},
		{
			name:    "info on single file",
			opts:    ProcessingOptions{Source: SourceFile, Input: "a.mp3", Info: true},
			wantErr: "info",
		},
		{
			name: "info on playlist",
			opts: ProcessingOptions{Source: SourcePlaylist, Input: "u", Info: true},
		},
		{
			name: "rss order and skip",
			opts: ProcessingOptions{Source: SourceRSS, Input: "u", Order: OrderOldest, Skip: 2},
		},
		{
			name:    "rss negative skip",
			opts:    ProcessingOptions{Source: SourceRSS, Input: "u", Skip: -1},
			wantErr: "skip",
		},
		{
			name:    "rss negative last",
			opts:    ProcessingOptions{Source: SourceRSS, Input: "u", Last: -3},
			wantErr: "last",
		},
		{
			name:    "rss bad order",
			opts:    ProcessingOptions{Source: SourceRSS, Input: "u", Order: "random"},
			wantErr: "order",
		},
		{
			name:    "last excludes order",
			opts:    ProcessingOptions{Source: SourceRSS, Input: "u", Last: 2, Order: OrderOldest},
			wantErr: "last",
		},
		{
			name:    "last excludes skip",
			opts:    ProcessingOptions{Source: SourceRSS, Input: "u", Last: 2, Skip: 1},
			wantErr: "last",
		},
		{
			name:    "items exclude last",
			opts:    ProcessingOptions{Source: SourceRSS, Input: "u", Items: []string{"a"}, Last: 1},
			wantErr: "item",
		},
		{
			name:    "items exclude skip",
			opts:    ProcessingOptions{Source: SourceRSS, Input: "u", Items: []string{"a"}, Skip: 1},
			wantErr: "item",
		},
		{
			name: "items alone",
			opts: ProcessingOptions{Source: SourceRSS, Input: "u", Items: []string{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *utils.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantErr, ve.Field)
			assert.True(t, apperr.IsRunScoped(err))
		})
	}
}

func TestProcessingOptions_WithDefaults(t *testing.T) {
	opts := ProcessingOptions{Source: SourceRSS, Input: "u", LLM: LLMChoice{Provider: LLMClaude}}.WithDefaults()

	assert.Equal(t, TranscriptionWhisper, opts.Transcription.Backend)
	assert.Equal(t, "base", opts.Transcription.Model)
	assert.Equal(t, DefaultLLMModel(LLMClaude), opts.LLM.Model)
	assert.Equal(t, OrderNewest, opts.Order)

	withLast := ProcessingOptions{Source: SourceRSS, Input: "u", Last: 3}.WithDefaults()
	assert.Empty(t, withLast.Order)
	assert.NoError(t, withLast.Validate())
}

func TestPickOne(t *testing.T) {
	order := []string{"whisper", "deepgram", "assembly"}

	key, value, err := PickOne("transcription", map[string]string{"deepgram": "nova-2"}, order)
	require.NoError(t, err)
	assert.Equal(t, "deepgram", key)
	assert.Equal(t, "nova-2", value)

	key, _, err = PickOne("transcription", map[string]string{}, order)
	require.NoError(t, err)
	assert.Empty(t, key)

	_, _, err = PickOne("transcription", map[string]string{"whisper": "base", "assembly": "best"}, order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--whisper, --assembly")
}
