package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codeberg.org/snonux/bomdia/internal/dictionary"
	"codeberg.org/snonux/bomdia/internal/resolver"
	"codeberg.org/snonux/bomdia/internal/session"
	"codeberg.org/snonux/bomdia/internal/storage"
	"codeberg.org/snonux/bomdia/internal/translation"
)

// TranslationConfig builds the remote provider configuration from viper
func TranslationConfig() *translation.Config {
	config := translation.DefaultConfig()

	if provider := viper.GetString("translation.provider"); provider != "" {
		config.Provider = strings.ToLower(provider)
	}
	if endpoint := viper.GetString("translation.endpoint"); endpoint != "" {
		config.Endpoint = endpoint
	}
	if timeout := viper.GetDuration("translation.timeout"); timeout > 0 {
		config.Timeout = timeout
	}
	if model := viper.GetString("translation.openai_model"); model != "" {
		config.OpenAIModel = model
	}
	if model := viper.GetString("translation.gemini_model"); model != "" {
		config.GeminiModel = model
	}
	if n := viper.GetUint32("breaker.max_failures"); n > 0 {
		config.BreakerMaxFailures = n
	}
	if d := viper.GetDuration("breaker.open_timeout"); d > 0 {
		config.BreakerOpenTimeout = d
	}

	config.Email = viper.GetString("translation.email")
	config.OpenAIKey = GetOpenAIKey()
	config.GeminiKey = GetGeminiKey()
	return config
}

// Preferences builds the initial session preferences. manual turns
// auto-translate off regardless of configuration.
func Preferences(manual bool) session.Preferences {
	prefs := session.DefaultPreferences()

	if viper.IsSet("preferences.auto_translate") {
		prefs.AutoTranslate = viper.GetBool("preferences.auto_translate")
	}
	if manual {
		prefs.AutoTranslate = false
	}
	if viper.IsSet("preferences.slow_speech") {
		prefs.SlowSpeech = viper.GetBool("preferences.slow_speech")
	}
	if viper.IsSet("preferences.voice_rate") {
		prefs.VoiceRate = session.ClampRate(viper.GetFloat64("preferences.voice_rate"))
	}
	return prefs
}

// Debounce returns the auto-translate quiet period
func Debounce() time.Duration {
	if d := viper.GetDuration("resolver.debounce"); d > 0 {
		return d
	}
	return resolver.DefaultDebounce
}

// StalePolicy returns the configured stale outcome policy
func StalePolicy() (session.StalePolicy, error) {
	return session.ParseStalePolicy(viper.GetString("resolver.stale_policy"))
}

// StorageBackend returns the backend name and its directory
func StorageBackend() (backend, dir string) {
	backend = viper.GetString("storage.backend")
	if backend == "" {
		backend = storage.BackendFile
	}
	dir = viper.GetString("storage.directory")
	if dir == "" {
		dir = storage.DefaultDirectory()
	}
	return backend, dir
}

// Dictionary returns the configured phrase table, the built-in one by default
func Dictionary() (*dictionary.Table, error) {
	path := viper.GetString("dictionary.path")
	if path == "" {
		return dictionary.Default(), nil
	}

	table, err := dictionary.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	return table, nil
}

// NewLogger builds the stderr logger for level
func NewLogger(level string) (*zap.SugaredLogger, error) {
	if level == "" {
		level = viper.GetString("log.level")
	}
	if level == "" {
		level = "warn"
	}

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return nil, err
	}
	return logger.Sugar(), nil
}
