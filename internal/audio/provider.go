package audio

import (
	"go.uber.org/zap"
)

// Speaker plays text aloud on a best-effort basis
type Speaker interface {
	Speak(text string, slow bool, rate float64)
	Stop()
}

// NopSpeaker discards every utterance
type NopSpeaker struct{}

// Speak does nothing
func (NopSpeaker) Speak(string, bool, float64) {}

// Stop does nothing
func (NopSpeaker) Stop() {}

// NewSpeaker returns an espeak-ng speaker, or a NopSpeaker when espeak-ng
// is not available.
func NewSpeaker(config *ESpeakConfig, logger *zap.SugaredLogger) Speaker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	espeak, err := New(config, logger)
	if err != nil {
		logger.Infow("speech disabled", "error", err)
		return NopSpeaker{}
	}
	return espeak
}
