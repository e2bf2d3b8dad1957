package ratelimit

import (
	"context"
	"time"
)

// GlobalOperation is the operation name under which the global budget is
// kept in the store.
const GlobalOperation = "global"

// Global is the coarse per-address limit applied ahead of the operation
// limits: at most max requests per address inside any window. It shares the
// limiter's store, so the janitor sweeps its keys with the rest.
type Global struct {
	limiter *Limiter
	max     int
	window  time.Duration
}

func NewGlobal(l *Limiter, max int, window time.Duration) *Global {
	return &Global{limiter: l, max: max, window: window}
}

// Allow records one request for addr.
func (g *Global) Allow(ctx context.Context, addr string) Decision {
	return g.limiter.Check(ctx, GlobalOperation, addr, g.max, g.window)
}
