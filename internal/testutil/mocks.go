package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/bomdia/internal/storage"
)

// MockTranslator mocks a remote translation provider
type MockTranslator struct {
	Translations map[string]string
	Errors       map[string]error
	// Err, when set, is returned for every text without an entry in Errors
	Err error
	// Block, when set, makes Translate wait until it is closed
	Block chan struct{}
	// Blocks holds per-text gates; a call for text waits until its gate is closed
	Blocks map[string]chan struct{}
	// Started receives the text of every call before it blocks, if set
	Started chan string

	mu      sync.Mutex
	calls   []string
	ctxErrs []error
}

// Translate mocks translating text
func (m *MockTranslator) Translate(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- text
	}
	if m.Block != nil {
		<-m.Block
	}
	if gate, ok := m.Blocks[text]; ok {
		<-gate
	}

	m.mu.Lock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()

	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	if m.Err != nil {
		return "", m.Err
	}

	// Default mock translation
	return fmt.Sprintf("mock translation of %s", text), nil
}

// Name returns the provider name
func (m *MockTranslator) Name() string {
	return "mock"
}

// Calls returns the texts passed to Translate
func (m *MockTranslator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// ContextErrors returns ctx.Err() as observed when each call completed
func (m *MockTranslator) ContextErrors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.ctxErrs...)
}

// MockStore wraps a memory store and can fail on demand
type MockStore struct {
	*storage.MemoryStore

	LoadErr error
	SaveErr error

	mu    sync.Mutex
	saves []string
}

// NewMockStore creates a mock store backed by memory
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: storage.NewMemoryStore()}
}

// Load fails with LoadErr when set
func (m *MockStore) Load(key string) ([]byte, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.MemoryStore.Load(key)
}

// Save fails with SaveErr when set and records the key otherwise
func (m *MockStore) Save(key string, data []byte) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	m.saves = append(m.saves, key)
	m.mu.Unlock()
	return m.MemoryStore.Save(key, data)
}

// Saves returns the keys written, in order
func (m *MockStore) Saves() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saves...)
}

// SpeakCall records one Speak invocation
type SpeakCall struct {
	Text string
	Slow bool
	Rate float64
}

// MockSpeaker records speech requests
type MockSpeaker struct {
	mu      sync.Mutex
	calls   []SpeakCall
	stopped bool
}

// Speak records the request
func (m *MockSpeaker) Speak(text string, slow bool, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SpeakCall{Text: text, Slow: slow, Rate: rate})
}

// Stop records teardown
func (m *MockSpeaker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// Calls returns recorded requests
func (m *MockSpeaker) Calls() []SpeakCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SpeakCall(nil), m.calls...)
}

// Stopped reports whether Stop was called
func (m *MockSpeaker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// MockClipboard records copied text
type MockClipboard struct {
	Err error

	mu     sync.Mutex
	copied []string
}

// Copy records text, failing with Err when set
func (m *MockClipboard) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copied = append(m.copied, text)
	return m.Err
}

// Copied returns recorded texts
func (m *MockClipboard) Copied() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.copied...)
}
