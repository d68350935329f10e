package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/bomdia/internal"
	"codeberg.org/snonux/bomdia/internal/storage"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bomdia [text]",
		Short: "English to European Portuguese translation assistant",
		Long: `bomdia translates English text to European Portuguese.

It asks a remote translation service first and falls back to a built-in
phrase table when the service is unavailable. Translations are kept in a
history of the last 60 entries and can be saved, copied and spoken.

Examples:
  bomdia                          # Interactive console (default)
  bomdia good morning             # Translate once and print the result
  bomdia --save --speak thank you # Translate, save and speak
  bomdia --batch phrases.txt      # Translate every line of a file
  bomdia --anki phrases.apkg      # Export saved translations as Anki cards`,
		Version: internal.Version,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.bomdia.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")

	// Local flags
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Translate phrases from file (one per line)")
	cmd.Flags().BoolVar(&flags.Save, "save", false, "Save the translation")
	cmd.Flags().BoolVar(&flags.Copy, "copy", false, "Copy the translation to the clipboard")
	cmd.Flags().BoolVar(&flags.Speak, "speak", false, "Speak the translation")
	cmd.Flags().StringVar(&flags.ExportAudio, "export-audio", "", "Write the pronunciation of every translation as WAV into this directory")
	cmd.Flags().BoolVar(&flags.History, "history", false, "Print the translation history")
	cmd.Flags().BoolVar(&flags.Saved, "saved", false, "Print the saved translations")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move history and saved translations to an archive directory")
	cmd.Flags().BoolVar(&flags.ListVoices, "list-voices", false, "List the Portuguese voices of the speech engine")

	// Anki export flags
	cmd.Flags().StringVar(&flags.Anki, "anki", "", "Export the saved translations as Anki flashcards to this file")
	cmd.Flags().BoolVar(&flags.AnkiCSV, "anki-csv", false, "Write the Anki export as CSV instead of .apkg")
	cmd.Flags().StringVar(&flags.DeckName, "deck-name", flags.DeckName, "Deck name used for the .apkg export")

	// Translation flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Remote translator: mymemory, openai, gemini")
	cmd.Flags().StringVar(&flags.Endpoint, "endpoint", "", "MyMemory endpoint URL")
	cmd.Flags().StringVar(&flags.Email, "email", "", "Contact email sent to MyMemory for a higher quota")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", flags.Timeout, "Remote translation timeout")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model")
	cmd.Flags().StringVar(&flags.DictionaryPath, "dictionary", "", "YAML phrase table replacing the built-in one")

	// Storage flags
	cmd.Flags().StringVar(&flags.StorageBackend, "storage", flags.StorageBackend, "Storage backend: file, sqlite, memory")
	cmd.Flags().StringVar(&flags.StateDir, "state-dir", storage.DefaultDirectory(), "Directory for history and saved translations")

	// Session flags
	cmd.Flags().BoolVar(&flags.Manual, "manual", false, "Disable auto-translate in the interactive console")
	cmd.Flags().BoolVar(&flags.SlowSpeech, "slow", false, "Speak slowly")
	cmd.Flags().Float64Var(&flags.VoiceRate, "voice-rate", flags.VoiceRate, "Voice rate from 0 to 1")
	cmd.Flags().DurationVar(&flags.Debounce, "debounce", flags.Debounce, "Quiet period before an automatic translation")
	cmd.Flags().StringVar(&flags.StalePolicy, "stale-policy", flags.StalePolicy, "Results of superseded translations: apply or discard")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("translation.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translation.endpoint", cmd.Flags().Lookup("endpoint"))
	viper.BindPFlag("translation.email", cmd.Flags().Lookup("email"))
	viper.BindPFlag("translation.timeout", cmd.Flags().Lookup("timeout"))
	viper.BindPFlag("translation.openai_model", cmd.Flags().Lookup("openai-model"))
	viper.BindPFlag("translation.gemini_model", cmd.Flags().Lookup("gemini-model"))
	viper.BindPFlag("dictionary.path", cmd.Flags().Lookup("dictionary"))
	viper.BindPFlag("storage.backend", cmd.Flags().Lookup("storage"))
	viper.BindPFlag("storage.directory", cmd.Flags().Lookup("state-dir"))
	viper.BindPFlag("preferences.slow_speech", cmd.Flags().Lookup("slow"))
	viper.BindPFlag("preferences.voice_rate", cmd.Flags().Lookup("voice-rate"))
	viper.BindPFlag("resolver.debounce", cmd.Flags().Lookup("debounce"))
	viper.BindPFlag("resolver.stale_policy", cmd.Flags().Lookup("stale-policy"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".bomdia" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bomdia")
	}

	// Environment variables
	viper.SetEnvPrefix("BOMDIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults covers the keys that have no flag
func setDefaults() {
	viper.SetDefault("breaker.max_failures", 5)
	viper.SetDefault("breaker.open_timeout", "30s")
	viper.SetDefault("preferences.auto_translate", true)
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translation.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("translation.gemini_key")
}
