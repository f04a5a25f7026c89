// Package llm sends a prompt and transcript to one language model provider.
//
// OpenAI and the OpenAI compatible providers (Cohere, Mistral, Fireworks,
// Together, Groq, Ollama) share a go-openai client pointed at the provider's
// base URL. Claude uses the Anthropic SDK and Gemini uses
// the genai SDK with bounded exponential backoff.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
	"github.com/ajcwebdev/autoshow-sub002/internal/utils"
)

// defaultBaseURLs are the OpenAI compatible endpoints. ChatGPT uses the
// go-openai default.
var defaultBaseURLs = map[config.LLMProvider]string{
	config.LLMCohere:    "https://api.cohere.ai/compatibility/v1",
	config.LLMMistral:   "https://api.mistral.ai/v1",
	config.LLMFireworks: "https://api.fireworks.ai/inference/v1",
	config.LLMTogether:  "https://api.together.xyz/v1",
	config.LLMGroq:      "https://api.groq.com/openai/v1",
	config.LLMOllama:    "http://localhost:11434/v1",
}

// Option customizes backend construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
	sleeper    func(context.Context, time.Duration) error
	generator  contentGenerator
}

// WithHTTPClient overrides the HTTP client used by every provider.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithSleeper overrides how Gemini retry waits are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(o *options) {
		o.sleeper = sleeper
	}
}

// withGenerator replaces the genai client.
func withGenerator(g contentGenerator) Option {
	return func(o *options) {
		o.generator = g
	}
}

// New resolves cfg.Provider to its backend. It is the only place the
// provider is inspected.
func New(ctx context.Context, cfg config.LLMConfig, opts ...Option) (Backend, error) {
	o := options{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		sleeper:    sleepContext,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.Model == "" {
		cfg.Model = config.DefaultLLMModel(cfg.Provider)
	}
	if variable := config.LLMCredentialVariable(cfg.Provider); variable != "" && cfg.APIKey == "" {
		return nil, &apperr.CredentialMissingError{Backend: string(cfg.Provider), Variable: variable}
	}

	switch cfg.Provider {
	case config.LLMChatGPT, config.LLMCohere, config.LLMMistral, config.LLMFireworks,
		config.LLMTogether, config.LLMGroq, config.LLMOllama:
		if cfg.BaseURL == "" {
			cfg.BaseURL = defaultBaseURLs[cfg.Provider]
		}
		return newChatCompletions(cfg, o.httpClient), nil
	case config.LLMClaude:
		return newClaude(cfg, o.httpClient), nil
	case config.LLMGemini:
		return newGemini(ctx, cfg, o)
	default:
		return nil, &utils.ValidationError{Field: "llm", Message: fmt.Sprintf("unknown LLM provider %q", cfg.Provider)}
	}
}

// message joins the prompt and transcript into the single user turn sent to
// every provider.
func message(prompt, transcript string) string {
	return prompt + "\n" + transcript
}

func logUsage(provider config.LLMProvider, c Completion) {
	utils.LogVerbose("%s (%s) used %d input, %d output, %d total tokens",
		provider, c.Model, c.Usage.Input, c.Usage.Output, c.Usage.Total)
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
