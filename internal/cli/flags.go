package cli

import (
	"time"

	"codeberg.org/snonux/bomdia/internal/anki"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile     string
	BatchFile   string
	Save        bool
	Copy        bool
	Speak       bool
	ExportAudio string
	History     bool
	Saved       bool
	Archive     bool
	ListVoices  bool
	LogLevel    string

	// Anki export flags
	Anki     string
	AnkiCSV  bool
	DeckName string

	// Translation flags
	Provider       string
	Endpoint       string
	Email          string
	Timeout        time.Duration
	OpenAIModel    string
	GeminiModel    string
	DictionaryPath string

	// Storage flags
	StorageBackend string
	StateDir       string

	// Session flags
	Manual      bool
	SlowSpeech  bool
	VoiceRate   float64
	Debounce    time.Duration
	StalePolicy string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:       "warn",
		Provider:       "mymemory",
		Timeout:        10 * time.Second,
		OpenAIModel:    "gpt-4o-mini",
		GeminiModel:    "gemini-2.0-flash",
		StorageBackend: "file",
		VoiceRate:      0.9,
		Debounce:       450 * time.Millisecond,
		StalePolicy:    "apply",
		DeckName:       anki.DefaultDeckName,
	}
}
