package translation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiTranslator translates with the Gemini API
type GeminiTranslator struct {
	model  string
	client *genai.Client
}

// NewGeminiTranslator creates a Gemini backed translator
func NewGeminiTranslator(ctx context.Context, apiKey, model string) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}
	if model == "" {
		model = DefaultConfig().GeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiTranslator{
		model:  model,
		client: client,
	}, nil
}

// Name returns the provider name
func (t *GeminiTranslator) Name() string {
	return ProviderGemini
}

// Translate translates English text to European Portuguese
func (t *GeminiTranslator) Translate(ctx context.Context, text string) (string, error) {
	resp, err := t.client.Models.GenerateContent(ctx, t.model, genai.Text(prompt(text)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.3),
	})
	if err != nil {
		return "", fmt.Errorf("%w: Gemini API error: %v", ErrRemoteUnavailable, err)
	}

	translation := strings.TrimSpace(resp.Text())
	if translation == "" {
		return "", fmt.Errorf("%w: no translation returned", ErrRemoteMalformed)
	}
	return translation, nil
}
