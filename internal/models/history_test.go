package models

import (
	"encoding/json"
	"fmt"
	"testing"
)

func record(i int) TranslationRecord {
	return TranslationRecord{
		Source:    fmt.Sprintf("source %d", i),
		Target:    fmt.Sprintf("target %d", i),
		Timestamp: int64(i),
	}
}

func TestHistory_PushMostRecentFirst(t *testing.T) {
	h := NewHistory()
	h.Push(record(1))
	h.Push(record(2))
	h.Push(record(3))

	records := h.Records()
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for i, want := range []string{"source 3", "source 2", "source 1"} {
		if records[i].Source != want {
			t.Errorf("records[%d].Source = %q, want %q", i, records[i].Source, want)
		}
	}
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= HistoryCapacity; i++ {
		h.Push(record(i))
	}
	if h.Len() != HistoryCapacity {
		t.Fatalf("Expected %d records, got %d", HistoryCapacity, h.Len())
	}

	h.Push(record(HistoryCapacity + 1))

	if h.Len() != HistoryCapacity {
		t.Fatalf("Expected len %d after overflow, got %d", HistoryCapacity, h.Len())
	}
	records := h.Records()
	if records[0].Source != fmt.Sprintf("source %d", HistoryCapacity+1) {
		t.Errorf("Newest record not at head: %q", records[0].Source)
	}
	for _, r := range records {
		if r.Source == "source 1" {
			t.Error("Oldest record was not evicted")
		}
	}
	if records[len(records)-1].Source != "source 2" {
		t.Errorf("Expected 'source 2' at tail, got %q", records[len(records)-1].Source)
	}
}

func TestHistory_NeverExceedsCapacity(t *testing.T) {
	h := NewHistoryWithCapacity(5)
	for i := 0; i < 50; i++ {
		h.Push(record(i))
		if h.Len() > 5 {
			t.Fatalf("History grew to %d, capacity 5", h.Len())
		}
	}
}

func TestHistory_ReplaceTruncates(t *testing.T) {
	var loaded []TranslationRecord
	for i := 100; i > 0; i-- {
		loaded = append(loaded, record(i))
	}

	h := NewHistory()
	h.Replace(loaded)

	if h.Len() != HistoryCapacity {
		t.Fatalf("Expected %d records, got %d", HistoryCapacity, h.Len())
	}
	if h.Records()[0].Source != "source 100" {
		t.Errorf("Expected newest record kept at head, got %q", h.Records()[0].Source)
	}
}

func TestHistory_RecordsIsCopy(t *testing.T) {
	h := NewHistory()
	h.Push(record(1))

	records := h.Records()
	records[0].Source = "modified"

	if h.Records()[0].Source != "source 1" {
		t.Error("History was modified through returned slice")
	}
}

func TestNewHistoryWithCapacity_Minimum(t *testing.T) {
	if got := NewHistoryWithCapacity(0).Capacity(); got != 1 {
		t.Errorf("Capacity() = %d, want 1", got)
	}
}

func TestSavedList(t *testing.T) {
	s := NewSavedList()
	for i := 0; i < 100; i++ {
		s.Push(SavedItem{SourceText: fmt.Sprintf("s%d", i), TranslatedText: "t", Timestamp: int64(i)})
	}

	if s.Len() != 100 {
		t.Fatalf("Expected unbounded list of 100, got %d", s.Len())
	}
	if s.Items()[0].SourceText != "s99" {
		t.Errorf("Expected most recent first, got %q", s.Items()[0].SourceText)
	}
}

func TestRecordJSONKeys(t *testing.T) {
	data, err := json.Marshal(TranslationRecord{Source: "good morning", Target: "bom dia", Timestamp: 5, FallbackUsed: true})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"source":"good morning","target":"bom dia","timestamp":5,"fallbackUsed":true,"saved":false}`
	if string(data) != expected {
		t.Errorf("Marshal = %s, want %s", data, expected)
	}

	data, err = json.Marshal(SavedItem{SourceText: "a", TranslatedText: "b", Timestamp: 7})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected = `{"sourceText":"a","translatedText":"b","timestamp":7}`
	if string(data) != expected {
		t.Errorf("Marshal = %s, want %s", data, expected)
	}
}
