// Package saga runs an ordered list of forward actions across independently
// failing systems and compensates completed actions when a later one fails.
//
// Compensations and post-commit actions are best effort: their failures are
// logged and counted but never returned to the caller.
package saga

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/internal/metrics"
)

// Step is one forward action with an optional compensating action.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

type Saga struct {
	name    string
	steps   []Step
	after   []Step
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(name string, logger *zap.Logger, m *metrics.Metrics) *Saga {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Saga{name: name, logger: logger, metrics: m}
}

// Then appends a forward step.
func (s *Saga) Then(name string, do, undo func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Do: do, Undo: undo})
	return s
}

// AfterCommit appends an action that runs only once every step succeeded.
func (s *Saga) AfterCommit(name string, do func(ctx context.Context) error) *Saga {
	s.after = append(s.after, Step{Name: name, Do: do})
	return s
}

// Run executes the steps in order. On the first failure it runs the Undo of
// every completed step in reverse order and returns the failing step's error.
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.Do(ctx); err != nil {
			s.logger.Warn("saga step failed",
				zap.String("saga", s.name), zap.String("step", step.Name), zap.Error(err))
			if cerr := s.compensate(ctx, s.steps[:i]); cerr != nil {
				s.logger.Error("saga compensation incomplete",
					zap.String("saga", s.name), zap.Error(cerr))
			}
			s.metrics.SagaFinished(s.name, err)
			return err
		}
	}

	s.metrics.SagaFinished(s.name, nil)

	for _, action := range s.after {
		err := action.Do(ctx)
		s.metrics.PostCommitted(s.name, action.Name, err)
		if err != nil {
			s.logger.Warn("saga post-commit action failed",
				zap.String("saga", s.name), zap.String("step", action.Name), zap.Error(err))
		}
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, done []Step) error {
	var result *multierror.Error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Undo == nil {
			continue
		}
		err := step.Undo(ctx)
		s.metrics.Compensated(s.name, step.Name, err)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("undo %s: %w", step.Name, err))
		}
	}
	return result.ErrorOrNil()
}
