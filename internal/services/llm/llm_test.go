package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
)

func TestNew_Resolution(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, config.LLMConfig{Provider: config.LLMClaude})
	var cm *apperr.CredentialMissingError
	require.True(t, errors.As(err, &cm))
	assert.Equal(t, "ANTHROPIC_API_KEY", cm.Variable)

	b, err := New(ctx, config.LLMConfig{Provider: config.LLMOllama})
	require.NoError(t, err, "ollama needs no key")
	assert.Equal(t, config.LLMOllama, b.Provider())

	for _, p := range []config.LLMProvider{config.LLMChatGPT, config.LLMGroq, config.LLMClaude} {
		b, err := New(ctx, config.LLMConfig{Provider: p, APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, p, b.Provider())
	}

	_, err = New(ctx, config.LLMConfig{Provider: "eliza", APIKey: "k"})
	assert.Error(t, err)
}

func TestChatCompletions_Generate(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer groq-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","model":"llama-3.1-8b-instant","choices":[{"index":0,"message":{"role":"assistant","content":"## Episode Summary\n\nNotes"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	}))
	defer srv.Close()

	b, err := New(context.Background(), config.LLMConfig{
		Provider:  config.LLMGroq,
		APIKey:    "groq-key",
		BaseURL:   srv.URL + "/v1",
		MaxTokens: 4000,
	})
	require.NoError(t, err)

	out, err := b.Generate(context.Background(), "PROMPT", "[00:00] hi")
	require.NoError(t, err)
	assert.Equal(t, "## Episode Summary\n\nNotes", out.Text)
	assert.Equal(t, Usage{Input: 10, Output: 5, Total: 15}, out.Usage)

	assert.Equal(t, config.DefaultLLMModel(config.LLMGroq), got.Model)
	assert.Equal(t, 4000, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "PROMPT\n[00:00] hi", got.Messages[0].Content)
}

func TestChatCompletions_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	b, err := New(context.Background(), config.LLMConfig{Provider: config.LLMChatGPT, APIKey: "bad", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	_, err = b.Generate(context.Background(), "p", "t")
	var le *apperr.LLMRequestError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "Incorrect API key")
}

func TestClaude_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "claude-key", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))

		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-sonnet-latest", req.Model)
		assert.Equal(t, 4000, req.MaxTokens)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"m1","type":"message","role":"assistant","model":"claude-3-5-sonnet-latest",
			"content":[{"type":"text","text":"Show "},{"type":"text","text":"notes"}],
			"stop_reason":"end_turn","usage":{"input_tokens":7,"output_tokens":3}}`)
	}))
	defer srv.Close()

	b, err := New(context.Background(), config.LLMConfig{
		Provider:  config.LLMClaude,
		Model:     "claude-3-5-sonnet-latest",
		APIKey:    "claude-key",
		BaseURL:   srv.URL,
		MaxTokens: 4000,
	})
	require.NoError(t, err)

	out, err := b.Generate(context.Background(), "p", "t")
	require.NoError(t, err)
	assert.Equal(t, "Show notes", out.Text)
	assert.Equal(t, Usage{Input: 7, Output: 3, Total: 10}, out.Usage)
}

func TestClaude_ErrorBody(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	b, err := New(context.Background(), config.LLMConfig{Provider: config.LLMClaude, APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = b.Generate(context.Background(), "p", "t")
	require.Error(t, err)
	var le *apperr.LLMRequestError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "slow down")
	assert.Equal(t, 1, calls, "the client does not retry on its own")
}

type fakeGenerator struct {
	errs  []error
	calls int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	if f.calls <= len(f.errs) {
		return nil, f.errs[f.calls-1]
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "gemini notes"}}}}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount: 4, CandidatesTokenCount: 2, TotalTokenCount: 6,
		},
	}, nil
}

func newTestGemini(t *testing.T, gen *fakeGenerator, delays *[]time.Duration) Backend {
	t.Helper()
	b, err := New(context.Background(),
		config.LLMConfig{
			Provider: config.LLMGemini,
			APIKey:   "g",
			Retry:    config.RetrySettings{MaxAttempts: 3, BaseDelay: time.Second},
		},
		withGenerator(gen),
		WithSleeper(func(_ context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		}),
	)
	require.NoError(t, err)
	return b
}

func TestGemini_RetriesWithBackoff(t *testing.T) {
	var delays []time.Duration
	gen := &fakeGenerator{errs: []error{
		genai.APIError{Code: http.StatusServiceUnavailable, Message: "overloaded"},
		errors.New("connection reset"),
	}}

	out, err := newTestGemini(t, gen, &delays).Generate(context.Background(), "p", "t")
	require.NoError(t, err)
	assert.Equal(t, "gemini notes", out.Text)
	assert.Equal(t, Usage{Input: 4, Output: 2, Total: 6}, out.Usage)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestGemini_GivesUp(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		wantCalls int
	}{
		{
			name:      "attempts exhausted",
			errs:      []error{errors.New("a"), errors.New("b"), errors.New("c")},
			wantCalls: 3,
		},
		{
			name:      "client error not retried",
			errs:      []error{genai.APIError{Code: http.StatusBadRequest, Message: "bad model"}},
			wantCalls: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var delays []time.Duration
			gen := &fakeGenerator{errs: tt.errs}
			_, err := newTestGemini(t, gen, &delays).Generate(context.Background(), "p", "t")

			var le *apperr.LLMRequestError
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.wantCalls, le.Attempts)
			assert.Equal(t, tt.wantCalls, gen.calls)
		})
	}
}
