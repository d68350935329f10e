package models

import "time"

// TranslationRecord is one completed translation attempt
type TranslationRecord struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Timestamp    int64  `json:"timestamp"` // milliseconds since epoch
	FallbackUsed bool   `json:"fallbackUsed"`
	Saved        bool   `json:"saved"`
}

// SavedItem is a translation the user explicitly kept
type SavedItem struct {
	SourceText     string `json:"sourceText"`
	TranslatedText string `json:"translatedText"`
	Timestamp      int64  `json:"timestamp"`
}

// Time returns the record timestamp as a time.Time
func (r TranslationRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Time returns the item timestamp as a time.Time
func (s SavedItem) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}
