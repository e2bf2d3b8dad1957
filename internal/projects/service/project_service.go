package service

import (
	"context"
	"errors"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/metrics"
	"github.com/folio-labs/portfolio-api/internal/projects/domain"
	"github.com/folio-labs/portfolio-api/internal/saga"
	"github.com/folio-labs/portfolio-api/internal/storage/objects"
)

// Repository is the record store used by the service.
type Repository interface {
	Create(ctx context.Context, p domain.NewProject) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	Update(ctx context.Context, id int64, patch domain.Patch) (*domain.Project, error)
	Delete(ctx context.Context, id int64) (*domain.Project, error)
}

type Options struct {
	KeyPrefix string
	Clock     clock.Clock
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// ProjectService handles project business logic. Writes that carry an image
// span the object store and the record store; they run as a saga so a failed
// record write removes the image it uploaded.
type ProjectService struct {
	repo    Repository
	objects objects.Store
	prefix  string
	clock   clock.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewProjectService(repo Repository, store objects.Store, opts Options) *ProjectService {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &ProjectService{
		repo:    repo,
		objects: store,
		prefix:  opts.KeyPrefix,
		clock:   opts.Clock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return items, nil
}

// Create inserts a project. With an image the upload happens first and its
// URL replaces p.ImageSrc; without one p.ImageSrc must already be set.
func (s *ProjectService) Create(ctx context.Context, p domain.NewProject, img *domain.ImageUpload) (*domain.Project, error) {
	ctx = context.WithoutCancel(ctx)

	if img == nil {
		if p.ImageSrc == "" {
			return nil, apperr.Validation("an image file or imageSrc is required",
				apperr.FieldError{Field: "imageSrc", Message: "imageSrc is required when no image is uploaded"})
		}
		created, err := s.repo.Create(ctx, p)
		if err != nil {
			return nil, mapErr(err)
		}
		return created, nil
	}

	var (
		url     string
		created *domain.Project
	)
	err := saga.New("create_project", s.logger, s.metrics).
		Then("upload-image", s.uploadStep(img, &url), s.deleteStep(&url)).
		Then("insert-record", func(ctx context.Context) error {
			p.ImageSrc = url
			var err error
			created, err = s.repo.Create(ctx, p)
			return err
		}, nil).
		Run(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return created, nil
}

// Update applies patch to project id. With an image the prior image is
// removed once the record points at the new one; failing to remove it does
// not fail the update.
func (s *ProjectService) Update(ctx context.Context, id int64, patch domain.Patch, img *domain.ImageUpload) (*domain.Project, error) {
	ctx = context.WithoutCancel(ctx)

	if img == nil {
		if patch.Empty() {
			return nil, apperr.Validation("no fields to update")
		}
		updated, err := s.repo.Update(ctx, id, patch)
		if err != nil {
			return nil, mapErr(err)
		}
		return updated, nil
	}

	prior, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}

	var (
		url     string
		updated *domain.Project
	)
	err = saga.New("update_project", s.logger, s.metrics).
		Then("upload-image", s.uploadStep(img, &url), s.deleteStep(&url)).
		Then("update-record", func(ctx context.Context) error {
			patch.ImageSrc = &url
			var err error
			updated, err = s.repo.Update(ctx, id, patch)
			return err
		}, nil).
		AfterCommit("delete-prior-image", func(ctx context.Context) error {
			if prior.ImageSrc == "" || prior.ImageSrc == url {
				return nil
			}
			err := s.objects.Delete(ctx, prior.ImageSrc)
			if errors.Is(err, objects.ErrForeignObject) {
				s.logger.Debug("prior image is external, leaving it", zap.Int64("project_id", id))
				return nil
			}
			return err
		}).
		Run(ctx)
	if err != nil {
		return nil, mapErr(err)
	}
	return updated, nil
}

// Delete removes the record and returns it. The referenced image stays in
// the object store.
func (s *ProjectService) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	deleted, err := s.repo.Delete(context.WithoutCancel(ctx), id)
	if err != nil {
		return nil, mapErr(err)
	}
	return deleted, nil
}

func (s *ProjectService) uploadStep(img *domain.ImageUpload, url *string) func(context.Context) error {
	return func(ctx context.Context) error {
		key := objects.NewKey(s.prefix, img.Filename, s.clock.Now())
		u, err := s.objects.Put(ctx, key, img.ContentType, img.Data)
		if err != nil {
			return apperr.Internal("image upload failed", err)
		}
		*url = u
		return nil
	}
}

func (s *ProjectService) deleteStep(url *string) func(context.Context) error {
	return func(ctx context.Context) error {
		return s.objects.Delete(ctx, *url)
	}
}

func mapErr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperr.NotFound("project not found")
	}
	return err
}
