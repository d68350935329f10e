package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/bomdia/internal/models"
	"codeberg.org/snonux/bomdia/internal/translation"
)

// DefaultDebounce is the quiet period before an automatic attempt fires
const DefaultDebounce = 450 * time.Millisecond

// FailureMessage is shown when neither remote nor local translation worked
const FailureMessage = "Translation failed (no fallback)."

// ErrNoFallbackAvailable wraps the remote error when the phrase table had no match
var ErrNoFallbackAvailable = errors.New("no fallback available")

// Trigger tells how an attempt was requested
type Trigger int

const (
	Manual Trigger = iota
	Auto
)

func (t Trigger) String() string {
	switch t {
	case Manual:
		return "manual"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// State is a step of the attempt state machine
type State int

const (
	Idle State = iota
	Pending
	Succeeded
	FellBack
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Pending:
		return "Pending"
	case Succeeded:
		return "Succeeded"
	case FellBack:
		return "FellBack"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Outcome is the result of one attempt
type Outcome struct {
	Seq            uint64
	Trigger        Trigger
	State          State
	Source         string
	TranslatedText string
	FallbackUsed   bool
	// Record is set for Succeeded and FellBack outcomes only
	Record *models.TranslationRecord
	Err    error
}

// Message returns the user facing error text, empty unless the attempt failed
func (o Outcome) Message() string {
	if o.State == Failed {
		return FailureMessage
	}
	return ""
}

// Matcher is the local fallback
type Matcher interface {
	Lookup(text string) (string, bool)
}

// Listener receives one AttemptStarted and one AttemptFinished per attempt,
// with the same sequence number.
type Listener interface {
	AttemptStarted(seq uint64, text string, trigger Trigger)
	AttemptFinished(outcome Outcome)
}

type nopListener struct{}

func (nopListener) AttemptStarted(uint64, string, Trigger) {}
func (nopListener) AttemptFinished(Outcome)                {}

// Resolver runs translation attempts. It holds no session state: results
// only reach the session through the listener.
type Resolver struct {
	remote    translation.Translator
	local     Matcher
	listener  Listener
	logger    *zap.SugaredLogger
	now       func() time.Time
	debounce  time.Duration
	debouncer *Debouncer
	seq       atomic.Uint64
	inFlight  atomic.Int64
}

// Option configures a Resolver
type Option func(*Resolver)

// WithDebounce sets the quiet period for automatic attempts
func WithDebounce(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.debounce = d
		}
	}
}

// WithClock replaces time.Now for record timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a resolver. listener may be nil and set later with SetListener.
func New(remote translation.Translator, local Matcher, listener Listener, opts ...Option) *Resolver {
	if listener == nil {
		listener = nopListener{}
	}
	r := &Resolver{
		remote:   remote,
		local:    local,
		listener: listener,
		logger:   zap.NewNop().Sugar(),
		now:      time.Now,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.debouncer = NewDebouncer(r.debounce)
	return r
}

// SetListener replaces the listener. It must be called before the first attempt.
func (r *Resolver) SetListener(listener Listener) {
	if listener == nil {
		listener = nopListener{}
	}
	r.listener = listener
}

// Resolve requests a translation of text. Manual attempts run on the calling
// goroutine and return their outcome; blank text is rejected. Auto attempts
// are debounced and run later on a timer goroutine, so Resolve returns false
// for them. The boolean reports whether an attempt ran.
func (r *Resolver) Resolve(ctx context.Context, text string, trigger Trigger) (Outcome, bool) {
	if trigger == Auto {
		r.schedule(ctx, text)
		return Outcome{}, false
	}

	if strings.TrimSpace(text) == "" {
		return Outcome{}, false
	}
	return r.attempt(ctx, text, Manual), true
}

// Cancel drops a pending automatic attempt
func (r *Resolver) Cancel() {
	r.debouncer.Cancel()
}

// Stop cancels a pending automatic attempt and rejects future ones.
// Attempts already running complete normally.
func (r *Resolver) Stop() {
	r.debouncer.Stop()
}

// Pending reports whether an automatic attempt is scheduled
func (r *Resolver) Pending() bool {
	return r.debouncer.Pending()
}

// Idle reports whether no attempt is scheduled or running
func (r *Resolver) Idle() bool {
	return !r.Pending() && r.InFlight() == 0
}

// InFlight returns the number of attempts currently running
func (r *Resolver) InFlight() int {
	return int(r.inFlight.Load())
}

// LastSeq returns the sequence number of the latest started attempt
func (r *Resolver) LastSeq() uint64 {
	return r.seq.Load()
}

func (r *Resolver) schedule(ctx context.Context, text string) {
	scheduled := r.debouncer.Trigger(func() {
		if ctx.Err() != nil {
			return
		}
		if strings.TrimSpace(text) == "" {
			return
		}
		r.attempt(ctx, text, Auto)
	})
	if !scheduled {
		r.logger.Debugw("auto translation not scheduled, resolver stopped")
	}
}

func (r *Resolver) attempt(ctx context.Context, text string, trigger Trigger) Outcome {
	seq := r.seq.Add(1)
	r.inFlight.Add(1)
	r.listener.AttemptStarted(seq, text, trigger)

	// In-flight calls are never cancelled; only the client timeout bounds them
	outcome := r.run(context.WithoutCancel(ctx), seq, text, trigger)

	r.inFlight.Add(-1)
	r.listener.AttemptFinished(outcome)
	return outcome
}

func (r *Resolver) run(ctx context.Context, seq uint64, text string, trigger Trigger) Outcome {
	outcome := Outcome{
		Seq:     seq,
		Trigger: trigger,
		State:   Pending,
		Source:  text,
	}

	translated, remoteErr := r.remote.Translate(ctx, text)
	if remoteErr == nil && strings.TrimSpace(translated) == "" {
		remoteErr = translation.ErrRemoteMalformed
	}
	if remoteErr == nil {
		outcome.State = Succeeded
		outcome.TranslatedText = translated
		outcome.Record = r.newRecord(text, translated, false)
		r.logger.Debugw("remote translation succeeded", "seq", seq, "provider", r.remote.Name())
		return outcome
	}

	r.logger.Infow("remote translation failed, using phrase table", "seq", seq, "provider", r.remote.Name(), "error", remoteErr)

	if translated, ok := r.local.Lookup(text); ok {
		outcome.State = FellBack
		outcome.TranslatedText = translated
		outcome.FallbackUsed = true
		outcome.Record = r.newRecord(text, translated, true)
		return outcome
	}

	outcome.State = Failed
	outcome.Err = fmt.Errorf("%w: %w", ErrNoFallbackAvailable, remoteErr)
	r.logger.Warnw("translation failed", "seq", seq, "error", outcome.Err)
	return outcome
}

func (r *Resolver) newRecord(source, target string, fallback bool) *models.TranslationRecord {
	return &models.TranslationRecord{
		Source:       source,
		Target:       target,
		Timestamp:    r.now().UnixMilli(),
		FallbackUsed: fallback,
	}
}
