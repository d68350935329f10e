package session

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/bomdia/internal/models"
	"codeberg.org/snonux/bomdia/internal/resolver"
	"codeberg.org/snonux/bomdia/internal/storage"
)

// Speaker plays text aloud on a best-effort basis
type Speaker interface {
	Speak(text string, slow bool, rate float64)
	Stop()
}

// Clipboard receives copied output
type Clipboard interface {
	Copy(text string) error
}

// Snapshot is a consistent view of the presentation-relevant state
type Snapshot struct {
	Input        string
	Output       string
	FallbackUsed bool
	Loading      bool
	Error        string
	Preferences  Preferences
	HistoryLen   int
	SavedLen     int

	// Seq increases with every notification
	Seq uint64
}

// Options configures a Store. Zero values select defaults.
type Options struct {
	Persistence storage.Store
	Speaker     Speaker
	Clipboard   Clipboard
	Logger      *zap.SugaredLogger
	Preferences *Preferences
	StalePolicy StalePolicy
	Clock       func() time.Time
}

// Store is the single owner of session state. Every event is applied under
// one lock together with the persistence write it causes, so concurrent
// attempts and user actions serialize.
type Store struct {
	mu sync.Mutex

	resolver  *resolver.Resolver
	persist   storage.Store
	speaker   Speaker
	clipboard Clipboard
	logger    *zap.SugaredLogger
	now       func() time.Time
	stale     StalePolicy

	input        string
	output       string
	fallbackUsed bool
	loading      bool
	errMsg       string
	inFlight     int
	lastApplied  uint64
	degraded     bool

	prefs   Preferences
	history *models.History
	saved   *models.SavedList

	subscribers []func(Snapshot)
	notifyMu    sync.Mutex
	notifySeq   uint64
}

// New creates the store, registers it as the resolver's listener and loads
// history and saved items from persistence.
func New(r *resolver.Resolver, opts Options) *Store {
	s := &Store{
		resolver:  r,
		persist:   opts.Persistence,
		speaker:   opts.Speaker,
		clipboard: opts.Clipboard,
		logger:    opts.Logger,
		now:       opts.Clock,
		stale:     opts.StalePolicy,
		prefs:     DefaultPreferences(),
		history:   models.NewHistory(),
		saved:     models.NewSavedList(),
	}
	if s.persist == nil {
		s.persist = storage.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.stale == "" {
		s.stale = StaleApply
	}
	if opts.Preferences != nil {
		s.prefs = *opts.Preferences
		s.prefs.VoiceRate = ClampRate(s.prefs.VoiceRate)
	}

	s.load()
	r.SetListener(s)
	return s
}

// Subscribe registers fn to be called with a snapshot after every change.
// Snapshots arrive in order; fn must not change the store.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// SetInputText updates the input and schedules an automatic translation
// when auto-translate is on.
func (s *Store) SetInputText(ctx context.Context, text string) {
	s.mu.Lock()
	s.input = text
	auto := s.prefs.AutoTranslate
	s.unlockAndNotify()

	// Scheduling replaces a pending timer; without auto it is dropped
	if auto {
		s.resolver.Resolve(ctx, text, resolver.Auto)
	} else {
		s.resolver.Cancel()
	}
}

// RequestManualTranslate translates the current input and waits for the
// outcome to be applied. The boolean is false when the input was blank.
func (s *Store) RequestManualTranslate(ctx context.Context) (resolver.Outcome, bool) {
	s.mu.Lock()
	text := s.input
	s.mu.Unlock()

	return s.resolver.Resolve(ctx, text, resolver.Manual)
}

// Clear empties input and output. History and saved items are kept.
func (s *Store) Clear() {
	s.resolver.Cancel()

	s.mu.Lock()
	s.input = ""
	s.output = ""
	s.fallbackUsed = false
	s.unlockAndNotify()
}

// Save keeps the current pair in the saved list and records it in history.
// It returns false, changing nothing, when there is no output or no input.
func (s *Store) Save() bool {
	s.mu.Lock()
	if s.output == "" || strings.TrimSpace(s.input) == "" {
		s.mu.Unlock()
		return false
	}

	ts := s.now().UnixMilli()
	s.saved.Push(models.SavedItem{
		SourceText:     s.input,
		TranslatedText: s.output,
		Timestamp:      ts,
	})
	s.history.Push(models.TranslationRecord{
		Source:       s.input,
		Target:       s.output,
		Timestamp:    ts,
		FallbackUsed: s.fallbackUsed,
		Saved:        true,
	})
	s.persistLocked(storage.KeySaved, s.saved.Items())
	s.persistLocked(storage.KeyHistory, s.history.Records())
	s.unlockAndNotify()
	return true
}

// TogglePreference sets one preference from its textual value
func (s *Store) TogglePreference(name, value string) error {
	s.mu.Lock()
	prefs := s.prefs
	if err := prefs.apply(name, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.prefs = prefs
	s.unlockAndNotify()
	return nil
}

// SetAutoTranslate toggles automatic translation
func (s *Store) SetAutoTranslate(on bool) {
	s.updatePreferences(func(p *Preferences) { p.AutoTranslate = on })
}

// SetSlowSpeech toggles slow speech
func (s *Store) SetSlowSpeech(on bool) {
	s.updatePreferences(func(p *Preferences) { p.SlowSpeech = on })
}

// SetVoiceRate sets the voice rate, clamped to [0, 1]
func (s *Store) SetVoiceRate(rate float64) {
	s.updatePreferences(func(p *Preferences) { p.VoiceRate = ClampRate(rate) })
}

func (s *Store) updatePreferences(fn func(*Preferences)) {
	s.mu.Lock()
	fn(&s.prefs)
	s.unlockAndNotify()
}

// Copy writes the output to the clipboard. Failures are only logged.
func (s *Store) Copy() bool {
	s.mu.Lock()
	output := s.output
	s.mu.Unlock()

	if output == "" || s.clipboard == nil {
		return false
	}
	if err := s.clipboard.Copy(output); err != nil {
		s.logger.Debugw("clipboard copy failed", "error", err)
		return false
	}
	return true
}

// Speak reads the output aloud with the current speech preferences
func (s *Store) Speak() {
	s.mu.Lock()
	output := s.output
	prefs := s.prefs
	s.mu.Unlock()

	if output == "" || s.speaker == nil {
		return
	}
	s.speaker.Speak(output, prefs.SlowSpeech, prefs.VoiceRate)
}

// Close cancels a pending automatic translation and stops speech
func (s *Store) Close() {
	s.resolver.Stop()
	if s.speaker != nil {
		s.speaker.Stop()
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// History returns the history, most recent first
func (s *Store) History() []models.TranslationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Records()
}

// Saved returns the saved items, most recent first
func (s *Store) Saved() []models.SavedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved.Items()
}

// Preferences returns the current preferences
func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Degraded reports whether persistence failed and the session is memory only
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// AttemptStarted implements resolver.Listener
func (s *Store) AttemptStarted(seq uint64, text string, trigger resolver.Trigger) {
	s.mu.Lock()
	s.inFlight++
	s.loading = true
	s.errMsg = ""
	s.logger.Debugw("translation started", "seq", seq, "trigger", trigger.String())
	s.unlockAndNotify()
}

// AttemptFinished implements resolver.Listener
func (s *Store) AttemptFinished(outcome resolver.Outcome) {
	s.mu.Lock()
	s.inFlight--

	if outcome.Record != nil {
		s.history.Push(*outcome.Record)
		s.persistLocked(storage.KeyHistory, s.history.Records())
	}

	apply := true
	if s.stale == StaleDiscard && outcome.Seq < s.lastApplied {
		apply = false
		s.logger.Debugw("discarding stale translation", "seq", outcome.Seq, "last_applied", s.lastApplied)
	}

	if apply {
		s.lastApplied = outcome.Seq
		switch outcome.State {
		case resolver.Succeeded, resolver.FellBack:
			s.output = outcome.TranslatedText
			s.fallbackUsed = outcome.FallbackUsed
			s.errMsg = ""
		case resolver.Failed:
			// Output is left as it was
			s.errMsg = outcome.Message()
		}
	}

	if s.stale == StaleDiscard {
		s.loading = s.inFlight > 0
	} else {
		s.loading = false
	}
	s.unlockAndNotify()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Input:        s.input,
		Output:       s.output,
		FallbackUsed: s.fallbackUsed,
		Loading:      s.loading,
		Error:        s.errMsg,
		Preferences:  s.prefs,
		HistoryLen:   s.history.Len(),
		SavedLen:     s.saved.Len(),
		Seq:          s.notifySeq,
	}
}

// unlockAndNotify releases s.mu and hands a fresh snapshot to the
// subscribers. notifyMu is taken before s.mu is released, so subscribers see
// snapshots in the order the changes were applied. Subscribers must not
// change the store from inside the callback.
func (s *Store) unlockAndNotify() {
	s.notifySeq++
	snap := s.snapshotLocked()
	subscribers := slices.Clone(s.subscribers)

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

func (s *Store) load() {
	var records []models.TranslationRecord
	if s.loadKey(storage.KeyHistory, &records) {
		valid := records[:0]
		for _, r := range records {
			if strings.TrimSpace(r.Source) != "" {
				valid = append(valid, r)
			}
		}
		s.history.Replace(valid)
	}

	var items []models.SavedItem
	if s.loadKey(storage.KeySaved, &items) {
		s.saved.Replace(items)
	}
}

func (s *Store) loadKey(key string, v any) bool {
	data, err := s.persist.Load(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		s.degrade(key, err)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warnw("ignoring unreadable persisted collection", "key", key, "error", err)
		return false
	}
	return true
}

func (s *Store) persistLocked(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Errorw("failed to encode collection", "key", key, "error", err)
		return
	}
	if err := s.persist.Save(key, data); err != nil {
		s.degrade(key, err)
		// Keep the in-memory copy consistent with what the session shows
		if err := s.persist.Save(key, data); err != nil {
			s.logger.Errorw("failed to keep collection in memory", "key", key, "error", err)
		}
	}
}

// degrade switches the session to memory-only persistence
func (s *Store) degrade(key string, err error) {
	if s.degraded {
		return
	}
	s.logger.Warnw("persistence unavailable, continuing in memory", "key", key, "error", err)
	s.degraded = true
	s.persist = storage.NewMemoryStore()
}
