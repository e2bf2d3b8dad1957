package ratelimit

import (
	"context"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// Limiter applies sliding-window limits keyed by client address and
// operation name.
type Limiter struct {
	store  Store
	clock  clock.Clock
	logger *zap.Logger
}

type Option func(*Limiter)

func WithClock(c clock.Clock) Option {
	return func(l *Limiter) { l.clock = c }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Limiter) { l.logger = log }
}

func NewLimiter(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		clock:  clock.New(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Check records a request for (clientAddress, operation) and reports whether
// it fits within max requests per window. Rejections carry RetryAfter=window.
//
// A store failure allows the request: losing enforcement for a moment is
// preferable to refusing every request while the store is down.
func (l *Limiter) Check(ctx context.Context, operation, clientAddress string, max int, window time.Duration) Decision {
	ok, err := l.store.Take(ctx, Key(clientAddress, operation), l.clock.Now(), window, max)
	if err != nil {
		l.logger.Error("rate limit store failed, allowing request",
			zap.String("operation", operation), zap.Error(err))
		return Decision{Allowed: true}
	}
	if !ok {
		return Decision{RetryAfter: window}
	}
	return Decision{Allowed: true}
}

// Sweep evicts idle keys from the underlying store.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.clock.Now())
}

// Key builds the store key of an (address, operation) pair.
func Key(clientAddress, operation string) string {
	return clientAddress + "_" + operation
}
