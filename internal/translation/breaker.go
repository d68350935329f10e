package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Breaker wraps a Translator in a circuit breaker. While the circuit is
// open calls fail immediately with ErrRemoteUnavailable.
type Breaker struct {
	inner Translator
	cb    *gobreaker.CircuitBreaker
}

// NewBreaker trips after maxFailures consecutive failures and probes the
// remote again after openTimeout. maxFailures 0 uses the default.
func NewBreaker(inner Translator, maxFailures uint32, openTimeout time.Duration, logger *zap.SugaredLogger) *Breaker {
	if maxFailures == 0 {
		maxFailures = DefaultConfig().BreakerMaxFailures
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a remote failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("translation circuit changed state", "provider", name, "from", from.String(), "to", to.String())
		},
	}

	return &Breaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
}

// Name returns the wrapped provider name
func (b *Breaker) Name() string {
	return b.inner.Name()
}

// State reports the current circuit state
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Translate forwards to the wrapped translator through the circuit
func (b *Breaker) Translate(ctx context.Context, text string) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Translate(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %s circuit: %v", ErrRemoteUnavailable, b.inner.Name(), err)
		}
		return "", err
	}
	return result.(string), nil
}
