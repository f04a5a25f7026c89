package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

const (
	defaultGeminiAttempts  = 3
	defaultGeminiBaseDelay = time.Second
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// gemini retries failed requests with exponential backoff.
type gemini struct {
	model       string
	maxTokens   int
	generator   contentGenerator
	maxAttempts int
	baseDelay   time.Duration
	sleeper     func(context.Context, time.Duration) error
}

func newGemini(ctx context.Context, cfg config.LLMConfig, o options) (*gemini, error) {
	g := &gemini{
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		generator:   o.generator,
		maxAttempts: cfg.Retry.MaxAttempts,
		baseDelay:   cfg.Retry.BaseDelay,
		sleeper:     o.sleeper,
	}
	if g.maxAttempts <= 0 {
		g.maxAttempts = defaultGeminiAttempts
	}
	if g.baseDelay <= 0 {
		g.baseDelay = defaultGeminiBaseDelay
	}

	if g.generator == nil {
		clientCfg := &genai.ClientConfig{
			APIKey:     cfg.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: o.httpClient,
		}
		if cfg.BaseURL != "" {
			clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
		}
		client, err := genai.NewClient(ctx, clientCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		g.generator = client.Models
	}
	return g, nil
}

func (g *gemini) sealed()                      {}
func (g *gemini) Provider() config.LLMProvider { return config.LLMGemini }

func (g *gemini) Generate(ctx context.Context, prompt, transcript string) (Completion, error) {
	contents := genai.Text(message(prompt, transcript))
	var genCfg *genai.GenerateContentConfig
	if g.maxTokens > 0 {
		genCfg = &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxTokens)}
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		resp, err := g.generator.GenerateContent(ctx, g.model, contents, genCfg)
		if err == nil {
			if text := resp.Text(); text != "" {
				out := Completion{Text: text, Model: g.model}
				if resp.UsageMetadata != nil {
					out.Usage = Usage{
						Input:  int(resp.UsageMetadata.PromptTokenCount),
						Output: int(resp.UsageMetadata.CandidatesTokenCount),
						Total:  int(resp.UsageMetadata.TotalTokenCount),
					}
				}
				logUsage(config.LLMGemini, out)
				return out, nil
			}
			err = errors.New("response contained no text")
		}
		lastErr = err

		if !retryable(ctx, err) || attempt == g.maxAttempts {
			return Completion{}, &apperr.LLMRequestError{Provider: string(config.LLMGemini), Attempts: attempt, Err: lastErr}
		}

		delay := g.baseDelay * time.Duration(1<<uint(attempt-1))
		utils.LogWarning("Gemini attempt %d/%d failed: %v (retrying in %s)", attempt, g.maxAttempts, err, delay)
		if err := g.sleeper(ctx, delay); err != nil {
			return Completion{}, &apperr.LLMRequestError{Provider: string(config.LLMGemini), Attempts: attempt, Err: err}
		}
	}
	return Completion{}, &apperr.LLMRequestError{Provider: string(config.LLMGemini), Attempts: g.maxAttempts, Err: lastErr}
}

// retryable rejects cancellation and client errors other than rate limiting.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code == http.StatusRequestTimeout || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
