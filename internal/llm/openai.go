package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIBackend struct {
	api   *openai.Client
	model string
}

// NewOpenAIClient creates an LLMClient backed by the OpenAI chat
// completions API (or any compatible endpoint at cfg.BaseURL).
func NewOpenAIClient(cfg LLMConfig, observer Observer) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrNotConfigured)
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = newHTTPClient()

	b := &openAIBackend{api: openai.NewClientWithConfig(apiCfg), model: cfg.Model}
	return newClient(cfg, b, observer), nil
}

func (b *openAIBackend) complete(ctx context.Context, c completion) (string, string, error) {
	resp, err := b.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.system},
			{Role: openai.ChatMessageRoleUser, Content: c.user},
		},
		Temperature: float32(c.temperature),
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", resp.Model, ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, resp.Model, nil
}
