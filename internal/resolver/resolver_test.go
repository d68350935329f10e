package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/bomdia/internal/dictionary"
	"codeberg.org/snonux/bomdia/internal/testutil"
	"codeberg.org/snonux/bomdia/internal/translation"
)

type recordingListener struct {
	mu       sync.Mutex
	started  []uint64
	finished []Outcome
}

func (l *recordingListener) AttemptStarted(seq uint64, text string, trigger Trigger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, seq)
}

func (l *recordingListener) AttemptFinished(outcome Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.finished = append(l.finished, outcome)
}

func (l *recordingListener) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.started), len(l.finished)
}

func (l *recordingListener) outcomes() []Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Outcome(nil), l.finished...)
}

func newTestResolver(remote translation.Translator, opts ...Option) (*Resolver, *recordingListener) {
	listener := &recordingListener{}
	opts = append([]Option{WithClock(testutil.FixedClock(1700000000000))}, opts...)
	return New(remote, dictionary.Default(), listener, opts...), listener
}

func TestResolve_RemoteSuccess(t *testing.T) {
	remote := &testutil.MockTranslator{Translations: map[string]string{"good morning": "Bom dia!"}}
	r, listener := newTestResolver(remote)

	outcome, ran := r.Resolve(context.Background(), "good morning", Manual)
	if !ran {
		t.Fatal("Expected attempt to run")
	}

	if outcome.State != Succeeded {
		t.Errorf("State = %s, want Succeeded", outcome.State)
	}
	if outcome.TranslatedText != "Bom dia!" || outcome.FallbackUsed {
		t.Errorf("Outcome = %+v", outcome)
	}
	if outcome.Record == nil {
		t.Fatal("Expected a record")
	}
	if outcome.Record.Source != "good morning" || outcome.Record.Target != "Bom dia!" ||
		outcome.Record.FallbackUsed || outcome.Record.Timestamp != 1700000000000 {
		t.Errorf("Record = %+v", *outcome.Record)
	}
	if outcome.Message() != "" {
		t.Errorf("Expected no message, got %q", outcome.Message())
	}

	started, finished := listener.counts()
	if started != 1 || finished != 1 {
		t.Errorf("Expected one start and one finish event, got %d/%d", started, finished)
	}
}

func TestResolve_FallbackMatch(t *testing.T) {
	remote := &testutil.MockTranslator{Err: translation.ErrRemoteUnavailable}
	r, _ := newTestResolver(remote)

	outcome, _ := r.Resolve(context.Background(), "good morning", Manual)

	if outcome.State != FellBack {
		t.Errorf("State = %s, want FellBack", outcome.State)
	}
	if outcome.TranslatedText != "bom dia" || !outcome.FallbackUsed {
		t.Errorf("Outcome = %+v", outcome)
	}
	if outcome.Record == nil || !outcome.Record.FallbackUsed || outcome.Record.Target != "bom dia" {
		t.Errorf("Record = %+v", outcome.Record)
	}
	if outcome.Err != nil {
		t.Errorf("Expected no error on fallback, got %v", outcome.Err)
	}
}

func TestResolve_FallbackSubstring(t *testing.T) {
	remote := &testutil.MockTranslator{Err: translation.ErrRemoteMalformed}
	r, _ := newTestResolver(remote)

	outcome, _ := r.Resolve(context.Background(), "Well, thank you so much", Manual)
	if outcome.State != FellBack || outcome.TranslatedText != "obrigado" {
		t.Errorf("Outcome = %+v", outcome)
	}
}

func TestResolve_NoFallback(t *testing.T) {
	remote := &testutil.MockTranslator{Err: translation.ErrRemoteUnavailable}
	r, listener := newTestResolver(remote)

	outcome, ran := r.Resolve(context.Background(), "hello there", Manual)
	if !ran {
		t.Fatal("Expected attempt to run")
	}

	if outcome.State != Failed {
		t.Errorf("State = %s, want Failed", outcome.State)
	}
	if outcome.Record != nil {
		t.Error("Failed attempt must not create a record")
	}
	if !errors.Is(outcome.Err, ErrNoFallbackAvailable) {
		t.Errorf("Expected ErrNoFallbackAvailable, got %v", outcome.Err)
	}
	if !errors.Is(outcome.Err, translation.ErrRemoteUnavailable) {
		t.Errorf("Expected remote cause to be wrapped, got %v", outcome.Err)
	}
	if outcome.Message() != "Translation failed (no fallback)." {
		t.Errorf("Message() = %q", outcome.Message())
	}

	if _, finished := listener.counts(); finished != 1 {
		t.Errorf("Expected exactly one outcome event, got %d", finished)
	}
}

func TestResolve_EmptyRemoteResultFallsBack(t *testing.T) {
	remote := &testutil.MockTranslator{Translations: map[string]string{"good morning": "  "}}
	r, _ := newTestResolver(remote)

	outcome, _ := r.Resolve(context.Background(), "good morning", Manual)
	if outcome.State != FellBack {
		t.Errorf("State = %s, want FellBack", outcome.State)
	}
}

func TestResolve_ManualBlankIsRejected(t *testing.T) {
	remote := &testutil.MockTranslator{}
	r, listener := newTestResolver(remote)

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, ran := r.Resolve(context.Background(), text, Manual); ran {
			t.Errorf("Resolve(%q) ran, expected no-op", text)
		}
	}

	if len(remote.Calls()) != 0 {
		t.Errorf("Remote called for blank input: %v", remote.Calls())
	}
	if started, _ := listener.counts(); started != 0 {
		t.Errorf("Listener notified for blank input")
	}
}

func TestResolve_NoRetries(t *testing.T) {
	remote := &testutil.MockTranslator{Err: translation.ErrRemoteUnavailable}
	r, _ := newTestResolver(remote)

	r.Resolve(context.Background(), "hello there", Manual)
	if calls := len(remote.Calls()); calls != 1 {
		t.Errorf("Expected exactly one remote call, got %d", calls)
	}
}

func TestResolve_SequenceNumbers(t *testing.T) {
	remote := &testutil.MockTranslator{}
	r, listener := newTestResolver(remote)

	first, _ := r.Resolve(context.Background(), "a", Manual)
	second, _ := r.Resolve(context.Background(), "b", Manual)

	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("Seq = %d, %d; want 1, 2", first.Seq, second.Seq)
	}
	if r.LastSeq() != 2 {
		t.Errorf("LastSeq() = %d, want 2", r.LastSeq())
	}
	for i, o := range listener.outcomes() {
		if listener.started[i] != o.Seq {
			t.Errorf("start/finish seq mismatch: %d vs %d", listener.started[i], o.Seq)
		}
	}
}

func TestResolve_InFlightNotCancelled(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan string, 1)
	remote := &testutil.MockTranslator{Block: gate, Started: started}
	r, _ := newTestResolver(remote)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := r.Resolve(ctx, "good morning", Manual)
		done <- outcome
	}()

	<-started
	if r.InFlight() != 1 {
		t.Errorf("InFlight() = %d, want 1", r.InFlight())
	}
	cancel()
	close(gate)

	outcome := <-done
	if outcome.State != Succeeded {
		t.Errorf("State = %s, want Succeeded", outcome.State)
	}
	if errs := remote.ContextErrors(); len(errs) != 1 || errs[0] != nil {
		t.Errorf("Remote call saw a cancelled context: %v", errs)
	}
	if r.InFlight() != 0 {
		t.Errorf("InFlight() = %d after completion", r.InFlight())
	}
}

func TestResolve_AutoDebounce(t *testing.T) {
	remote := &testutil.MockTranslator{}
	r, listener := newTestResolver(remote, WithDebounce(40*time.Millisecond))
	defer r.Stop()

	for _, text := range []string{"g", "go", "goo", "good", "good morning"} {
		if _, ran := r.Resolve(context.Background(), text, Auto); ran {
			t.Fatal("Auto resolve must not run synchronously")
		}
		time.Sleep(2 * time.Millisecond)
	}

	testutil.Eventually(t, time.Second, func() bool {
		_, finished := listener.counts()
		return finished == 1
	}, "debounced attempt finished")

	// Nothing else may fire afterwards
	time.Sleep(100 * time.Millisecond)

	calls := remote.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected one debounced call, got %v", calls)
	}
	if calls[0] != "good morning" {
		t.Errorf("Expected settled text 'good morning', got %q", calls[0])
	}
	if outcome := listener.outcomes()[0]; outcome.Trigger != Auto {
		t.Errorf("Trigger = %s, want auto", outcome.Trigger)
	}
}

func TestResolve_AutoBlankDoesNotFire(t *testing.T) {
	remote := &testutil.MockTranslator{}
	r, listener := newTestResolver(remote, WithDebounce(10*time.Millisecond))
	defer r.Stop()

	r.Resolve(context.Background(), "good", Auto)
	r.Resolve(context.Background(), "   ", Auto)

	time.Sleep(80 * time.Millisecond)

	if started, _ := listener.counts(); started != 0 {
		t.Errorf("Expected no attempt for blank settled text, got %d", started)
	}
}

func TestResolve_AutoCancelled(t *testing.T) {
	remote := &testutil.MockTranslator{}
	r, listener := newTestResolver(remote, WithDebounce(20*time.Millisecond))

	r.Resolve(context.Background(), "good morning", Auto)
	if !r.Pending() {
		t.Error("Expected pending attempt")
	}
	r.Cancel()
	if r.Pending() {
		t.Error("Expected no pending attempt after Cancel")
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.Resolve(ctx, "good evening", Auto)
	cancel()

	time.Sleep(80 * time.Millisecond)
	if started, _ := listener.counts(); started != 0 {
		t.Errorf("Expected cancelled attempts not to fire, got %d", started)
	}

	r.Stop()
	r.Resolve(context.Background(), "good night", Auto)
	if r.Pending() {
		t.Error("Stopped resolver must not schedule")
	}
}

func TestTriggerAndStateStrings(t *testing.T) {
	if Manual.String() != "manual" || Auto.String() != "auto" {
		t.Error("Unexpected trigger names")
	}
	for state, want := range map[State]string{Idle: "Idle", Pending: "Pending", Succeeded: "Succeeded", FellBack: "FellBack", Failed: "Failed"} {
		if state.String() != want {
			t.Errorf("%d.String() = %q, want %q", state, state.String(), want)
		}
	}
}
