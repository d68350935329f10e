package audio

import (
	"bufio"
	"io"
	"math"
	"strings"
)

// Rate bounds for espeak-ng in words per minute
const (
	BaseWordsPerMinute = 175
	MinWordsPerMinute  = 80
	MaxWordsPerMinute  = 450

	// MinSlowRate is the lowest effective rate slow speech goes down to
	MinSlowRate = 0.6
)

// Voice is one voice reported by the speech engine
type Voice struct {
	Name string // e.g. "Portuguese_(Portugal)"
	Lang string // e.g. "pt", "pt-BR"
	File string // e.g. "roa/pt"
}

// IsEuropeanPortuguese reports whether the voice speaks pt-PT
func (v Voice) IsEuropeanPortuguese() bool {
	lang := strings.ToLower(v.Lang)
	if lang == "pt-pt" || lang == "pt_pt" {
		return true
	}

	name := strings.ToLower(v.Name)
	return strings.Contains(name, "portuguese") && strings.Contains(name, "portugal")
}

// SelectVoice picks the first European Portuguese voice
func SelectVoice(voices []Voice) (Voice, bool) {
	for _, v := range voices {
		if v.IsEuropeanPortuguese() {
			return v, true
		}
	}
	return Voice{}, false
}

// EffectiveRate applies the slow speech rule to a rate
func EffectiveRate(slow bool, rate float64) float64 {
	if !slow {
		return rate
	}
	return max(MinSlowRate, rate-0.2)
}

// WordsPerMinute converts a relative rate to espeak-ng speed
func WordsPerMinute(rate float64) int {
	wpm := int(math.Round(BaseWordsPerMinute * rate))
	if wpm < MinWordsPerMinute {
		return MinWordsPerMinute
	}
	if wpm > MaxWordsPerMinute {
		return MaxWordsPerMinute
	}
	return wpm
}

// ParseVoices reads the table printed by espeak-ng --voices
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  pt              --/M      Portuguese_(Portugal) roa/pt
func ParseVoices(r io.Reader) ([]Voice, error) {
	var voices []Voice

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}

		v := Voice{Lang: fields[1], Name: fields[3]}
		if len(fields) > 4 {
			v.File = fields[4]
		}
		voices = append(voices, v)
	}
	return voices, scanner.Err()
}
