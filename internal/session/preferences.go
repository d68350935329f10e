package session

import (
	"fmt"
	"strconv"
	"strings"
)

// Preference names accepted by TogglePreference
const (
	PrefAutoTranslate = "autoTranslate"
	PrefSlowSpeech    = "slowSpeech"
	PrefVoiceRate     = "voiceRate"
)

// Preferences are per-session user settings
type Preferences struct {
	AutoTranslate bool    `json:"autoTranslate"`
	SlowSpeech    bool    `json:"slowSpeech"`
	VoiceRate     float64 `json:"voiceRate"` // 0 to 1
}

// DefaultPreferences returns the settings a session starts with
func DefaultPreferences() Preferences {
	return Preferences{
		AutoTranslate: true,
		SlowSpeech:    false,
		VoiceRate:     0.9,
	}
}

// ClampRate limits a voice rate to [0, 1]
func ClampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// apply sets the named preference from its textual value
func (p *Preferences) apply(name, value string) error {
	switch strings.ToLower(name) {
	case strings.ToLower(PrefAutoTranslate), "auto", "auto-translate":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		p.AutoTranslate = b
	case strings.ToLower(PrefSlowSpeech), "slow", "slow-speech":
		b, err := parseBool(value)
		if err != nil {
			return err
		}
		p.SlowSpeech = b
	case strings.ToLower(PrefVoiceRate), "rate", "voice-rate":
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("invalid voice rate %q: %w", value, err)
		}
		p.VoiceRate = ClampRate(rate)
	default:
		return fmt.Errorf("unknown preference: %s", name)
	}
	return nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "yes", "y":
		return true, nil
	case "off", "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", value)
	}
	return b, nil
}

// StalePolicy decides what happens to results of superseded attempts
type StalePolicy string

const (
	// StaleApply applies every outcome in completion order
	StaleApply StalePolicy = "apply"
	// StaleDiscard ignores outcomes older than the last applied one for the visible output
	StaleDiscard StalePolicy = "discard"
)

// ParseStalePolicy validates a policy name; empty means StaleApply
func ParseStalePolicy(name string) (StalePolicy, error) {
	switch StalePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", StaleApply:
		return StaleApply, nil
	case StaleDiscard:
		return StaleDiscard, nil
	default:
		return "", fmt.Errorf("unknown stale policy: %s", name)
	}
}
