package models

// HistoryCapacity is the maximum number of records kept in History
const HistoryCapacity = 60

// History holds translation records, most recent first. It never holds
// more than its capacity; pushing onto a full history evicts the oldest record.
type History struct {
	records  []TranslationRecord
	capacity int
}

// NewHistory creates an empty history with the default capacity
func NewHistory() *History {
	return NewHistoryWithCapacity(HistoryCapacity)
}

// NewHistoryWithCapacity creates an empty history bounded to capacity (minimum 1)
func NewHistoryWithCapacity(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		records:  make([]TranslationRecord, 0, capacity),
		capacity: capacity,
	}
}

// Push places record at the head, evicting the oldest record on overflow
func (h *History) Push(record TranslationRecord) {
	h.records = append([]TranslationRecord{record}, h.records...)
	if len(h.records) > h.capacity {
		h.records = h.records[:h.capacity]
	}
}

// Replace sets the contents from a most-recent-first slice, keeping only
// the newest entries that fit.
func (h *History) Replace(records []TranslationRecord) {
	if len(records) > h.capacity {
		records = records[:h.capacity]
	}
	h.records = append(make([]TranslationRecord, 0, h.capacity), records...)
}

// Records returns a copy of the records, most recent first
func (h *History) Records() []TranslationRecord {
	result := make([]TranslationRecord, len(h.records))
	copy(result, h.records)
	return result
}

// Len returns the number of records
func (h *History) Len() int {
	return len(h.records)
}

// Capacity returns the maximum number of records kept
func (h *History) Capacity() int {
	return h.capacity
}

// SavedList holds saved items, most recent first. It is unbounded.
type SavedList struct {
	items []SavedItem
}

// NewSavedList creates an empty saved list
func NewSavedList() *SavedList {
	return &SavedList{}
}

// Push places item at the head
func (s *SavedList) Push(item SavedItem) {
	s.items = append([]SavedItem{item}, s.items...)
}

// Replace sets the contents from a most-recent-first slice
func (s *SavedList) Replace(items []SavedItem) {
	s.items = append([]SavedItem(nil), items...)
}

// Items returns a copy of the items, most recent first
func (s *SavedList) Items() []SavedItem {
	result := make([]SavedItem, len(s.items))
	copy(result, s.items)
	return result
}

// Len returns the number of items
func (s *SavedList) Len() int {
	return len(s.items)
}
