package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAITranslator translates with an OpenAI chat completion
type OpenAITranslator struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAITranslator creates a new translator instance. baseURL may be
// empty to use the public API.
func NewOpenAITranslator(apiKey, model, baseURL string) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found")
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAITranslator{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(config),
	}, nil
}

// Name returns the provider name
func (t *OpenAITranslator) Name() string {
	return ProviderOpenAI
}

// Translate translates English text to European Portuguese
func (t *OpenAITranslator) Translate(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(text),
			},
		},
		MaxTokens:   200,
		Temperature: 0.3,
	}

	resp, err := t.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: OpenAI API error: %v", ErrRemoteUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no translation returned", ErrRemoteMalformed)
	}

	translation := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translation == "" {
		return "", fmt.Errorf("%w: empty translation returned", ErrRemoteMalformed)
	}
	return translation, nil
}
