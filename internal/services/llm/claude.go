package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ajcwebdev/autoshow-sub002/internal/apperr"
	"github.com/ajcwebdev/autoshow-sub002/internal/config"
)

// claude calls the Anthropic Messages API.
type claude struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func newClaude(cfg config.LLMConfig, httpClient *http.Client) *claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// One attempt per Generate call.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &claude{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *claude) sealed()                      {}
func (c *claude) Provider() config.LLMProvider { return config.LLMClaude }

func (c *claude) fail(err error) error {
	return &apperr.LLMRequestError{Provider: string(config.LLMClaude), Attempts: 1, Err: err}
}

func (c *claude) Generate(ctx context.Context, prompt, transcript string) (Completion, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message(prompt, transcript))),
		},
	})
	if err != nil {
		return Completion{}, c.fail(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return Completion{}, c.fail(errors.New("no text content in response"))
	}

	out := Completion{
		Text:  text.String(),
		Model: string(resp.Model),
		Usage: Usage{
			Input:  int(resp.Usage.InputTokens),
			Output: int(resp.Usage.OutputTokens),
			Total:  int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}
	if out.Model == "" {
		out.Model = c.model
	}
	logUsage(config.LLMClaude, out)
	return out, nil
}
