package ratelimit

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Janitor periodically evicts idle rate-limit keys so the tables stay bounded
// by the number of recently active clients.
type Janitor struct {
	cron    *cron.Cron
	limiter *Limiter
	logger  *zap.Logger
}

// NewJanitor schedules sweeps with a cron spec such as "@every 1m".
func NewJanitor(spec string, limiter *Limiter, logger *zap.Logger) (*Janitor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	j := &Janitor{
		cron:    cron.New(),
		limiter: limiter,
		logger:  logger,
	}
	if _, err := j.cron.AddFunc(spec, j.RunOnce); err != nil {
		return nil, fmt.Errorf("schedule rate limit sweep %q: %w", spec, err)
	}
	return j, nil
}

func (j *Janitor) Start() { j.cron.Start() }

// Stop stops the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce performs a single sweep.
func (j *Janitor) RunOnce() {
	evicted, err := j.limiter.Sweep(context.Background())
	if err != nil {
		j.logger.Warn("rate limit sweep failed", zap.Error(err))
	}
	if evicted > 0 {
		j.logger.Debug("rate limit keys evicted", zap.Int("count", evicted))
	}
}
