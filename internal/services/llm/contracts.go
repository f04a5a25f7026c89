package llm

import (
	"context"

	"github.com/ajcwebdev/autoshow-sub002/internal/config"
)

// Usage reports token counts for one completion.
type Usage struct {
	Input  int
	Output int
	Total  int
}

// Completion is the generated show notes text.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Backend generates show notes from a prompt and transcript. The set of
// implementations is closed; use New to obtain one.
type Backend interface {
	Generate(ctx context.Context, prompt, transcript string) (Completion, error)
	Provider() config.LLMProvider
	sealed()
}

// Ensure every provider implements Backend
var (
	_ Backend = (*chatCompletions)(nil)
	_ Backend = (*claude)(nil)
	_ Backend = (*gemini)(nil)
)
