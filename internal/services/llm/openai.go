package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
)

// chatCompletions talks to any endpoint implementing the OpenAI chat
// completions API.
type chatCompletions struct {
	provider  config.LLMProvider
	model     string
	maxTokens int
	client    *openai.Client
}

func newChatCompletions(cfg config.LLMConfig, httpClient *http.Client) *chatCompletions {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = httpClient

	return &chatCompletions{
		provider:  cfg.Provider,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    openai.NewClientWithConfig(clientCfg),
	}
}

func (c *chatCompletions) sealed()                      {}
func (c *chatCompletions) Provider() config.LLMProvider { return c.provider }

func (c *chatCompletions) Generate(ctx context.Context, prompt, transcript string) (Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message(prompt, transcript)},
		},
	})
	if err != nil {
		return Completion{}, &apperr.LLMRequestError{Provider: string(c.provider), Attempts: 1, Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Completion{}, &apperr.LLMRequestError{Provider: string(c.provider), Attempts: 1, Err: errors.New("response contained no content")}
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	out := Completion{
		Text:  resp.Choices[0].Message.Content,
		Model: model,
		Usage: Usage{
			Input:  resp.Usage.PromptTokens,
			Output: resp.Usage.CompletionTokens,
			Total:  resp.Usage.TotalTokens,
		},
	}
	logUsage(c.provider, out)
	return out, nil
}
