package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/profiles/domain"
)

type Repository interface {
	Get(ctx context.Context) (*domain.Presenter, error)
	Insert(ctx context.Context, patch domain.PresenterPatch) (*domain.Presenter, error)
	Update(ctx context.Context, id int64, patch domain.PresenterPatch) (*domain.Presenter, error)
}

// PresenterService keeps the presenter a singleton: create and update both
// go through Upsert, which is serialized within the process.
type PresenterService struct {
	mu     sync.Mutex
	repo   Repository
	logger *zap.Logger
}

func NewPresenterService(repo Repository, logger *zap.Logger) *PresenterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenterService{repo: repo, logger: logger}
}

// Get returns the presenter, or nil when it has not been created yet.
func (s *PresenterService) Get(ctx context.Context) (*domain.Presenter, error) {
	return s.repo.Get(ctx)
}

// Upsert inserts the presenter when none exists, otherwise merges the present
// fields of patch over the stored row.
func (s *PresenterService) Upsert(ctx context.Context, patch domain.PresenterPatch) (*domain.Presenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)

	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if current == nil {
		if field := patch.Missing(); field != "" {
			return nil, apperr.Validation(fmt.Sprintf("the field '%s' is required", field),
				apperr.FieldError{Field: field, Message: fmt.Sprintf("'%s' is required", field)})
		}
		s.logger.Info("creating presenter")
		return s.repo.Insert(ctx, patch)
	}

	if len(patch.Columns()) == 0 {
		return current, nil
	}

	s.logger.Info("updating presenter", zap.Int64("presenter_id", current.ID))
	updated, err := s.repo.Update(ctx, current.ID, patch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("presenter not found")
	}
	return updated, err
}
