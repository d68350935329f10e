package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Fixed language pair: English to European Portuguese
const (
	SourceLanguage = "en"
	TargetLanguage = "pt-PT"
	LangPair       = SourceLanguage + "|" + TargetLanguage
)

// Provider names accepted by NewFromConfig
const (
	ProviderMyMemory = "mymemory"
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
)

var (
	// ErrRemoteUnavailable covers network failures, non-2xx responses and an open circuit
	ErrRemoteUnavailable = errors.New("translation service unavailable")
	// ErrRemoteMalformed means a 2xx response without a usable translation
	ErrRemoteMalformed = errors.New("Invalid API response")
)

// Translator translates English text to European Portuguese. Implementations
// issue exactly one request per call and never retry.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)

	// Name returns the provider name
	Name() string
}

// Config holds the settings of all remote providers
type Config struct {
	Provider string
	Timeout  time.Duration

	// MyMemory settings
	Endpoint string
	Email    string

	// OpenAI settings
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Gemini settings
	GeminiKey   string
	GeminiModel string

	// Circuit breaker settings
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderMyMemory,
		Timeout:            10 * time.Second,
		Endpoint:           DefaultMyMemoryEndpoint,
		OpenAIModel:        "gpt-4o-mini",
		GeminiModel:        "gemini-2.0-flash",
		BreakerMaxFailures: 5,
		BreakerOpenTimeout: 30 * time.Second,
	}
}

// NewFromConfig creates the configured provider wrapped in a circuit breaker
func NewFromConfig(ctx context.Context, config *Config, logger *zap.SugaredLogger) (Translator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var (
		inner Translator
		err   error
	)

	switch config.Provider {
	case "", ProviderMyMemory:
		inner = NewMyMemoryClient(config.Endpoint, config.Email, config.Timeout)
	case ProviderOpenAI:
		inner, err = NewOpenAITranslator(config.OpenAIKey, config.OpenAIModel, config.OpenAIBaseURL)
	case ProviderGemini:
		inner, err = NewGeminiTranslator(ctx, config.GeminiKey, config.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewBreaker(inner, config.BreakerMaxFailures, config.BreakerOpenTimeout, logger), nil
}

// prompt is shared by the chat based providers
func prompt(text string) string {
	return fmt.Sprintf("Translate the following English text to European Portuguese (pt-PT, not Brazilian). Respond with only the translation, nothing else.\n\n%s", text)
}
