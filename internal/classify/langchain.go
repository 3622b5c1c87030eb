package classify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ LLMProvider = (*LangChainProvider)(nil)

// LangChainProvider talks to any OpenAI-compatible chat endpoint, Perplexity
// included.
type LangChainProvider struct {
	llm         llms.Model
	maxTokens   int
	temperature float64
}

// NewLangChainProvider creates a provider for model at baseURL.
func NewLangChainProvider(baseURL, apiKey, model string, httpClient *http.Client) (*LangChainProvider, error) {
	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return &LangChainProvider{llm: llm, maxTokens: 100, temperature: 0.1}, nil
}

// Complete sends an optional system message and the prompt, returning the
// first choice's text.
func (p *LangChainProvider) Complete(ctx context.Context, system, prompt string) (string, error) {
	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := p.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(p.maxTokens),
		llms.WithTemperature(p.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("llm complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}
