package http

import (
	"context"

	"github.com/folio-labs/portfolio-api/internal/projects/domain"
)

// Service is the project use-case surface the handlers depend on.
type Service interface {
	List(ctx context.Context) ([]domain.Project, error)
	Create(ctx context.Context, p domain.NewProject, img *domain.ImageUpload) (*domain.Project, error)
	Update(ctx context.Context, id int64, patch domain.Patch, img *domain.ImageUpload) (*domain.Project, error)
	Delete(ctx context.Context, id int64) (*domain.Project, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

type response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type idParam struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// projectFields are the text fields shared by both create variants.
type projectFields struct {
	Title        string `json:"title" form:"title" binding:"required,min=3,max=100"`
	Description  string `json:"description" form:"description" binding:"required,min=10,max=500"`
	GithubLink   string `json:"githubLink" form:"githubLink" binding:"omitempty,url"`
	LiveDemoLink string `json:"liveDemoLink" form:"liveDemoLink" binding:"omitempty,url"`
	TechSection  string `json:"techSection" form:"techSection" binding:"omitempty,max=50"`
}

type createWithURL struct {
	projectFields
	ImageSrc string `json:"imageSrc" form:"imageSrc" binding:"required,url"`
}

type createWithFile struct {
	projectFields
}

type patchFields struct {
	Title        *string `json:"title" form:"title" binding:"omitnil,min=3,max=100"`
	Description  *string `json:"description" form:"description" binding:"omitnil,min=10,max=500"`
	GithubLink   *string `json:"githubLink" form:"githubLink" binding:"omitempty,url"`
	LiveDemoLink *string `json:"liveDemoLink" form:"liveDemoLink" binding:"omitempty,url"`
	TechSection  *string `json:"techSection" form:"techSection" binding:"omitnil,max=50"`
}

type updateWithURL struct {
	patchFields
	ImageSrc *string `json:"imageSrc" form:"imageSrc" binding:"omitnil,url"`
}

type updateWithFile struct {
	patchFields
}

// createRequest is one of the create variants, picked by whether the
// request carried an image.
type createRequest interface {
	project() domain.NewProject
}

type updateRequest interface {
	patch() domain.Patch
}

func newCreateRequest(hasFile bool) createRequest {
	if hasFile {
		return &createWithFile{}
	}
	return &createWithURL{}
}

func newUpdateRequest(hasFile bool) updateRequest {
	if hasFile {
		return &updateWithFile{}
	}
	return &updateWithURL{}
}

func (f projectFields) project() domain.NewProject {
	return domain.NewProject{
		Title:        f.Title,
		Description:  f.Description,
		GithubLink:   f.GithubLink,
		LiveDemoLink: f.LiveDemoLink,
		TechSection:  f.TechSection,
	}
}

func (r *createWithURL) project() domain.NewProject {
	p := r.projectFields.project()
	p.ImageSrc = r.ImageSrc
	return p
}

func (f patchFields) patch() domain.Patch {
	return domain.Patch{
		Title:        f.Title,
		Description:  f.Description,
		GithubLink:   f.GithubLink,
		LiveDemoLink: f.LiveDemoLink,
		TechSection:  f.TechSection,
	}
}

func (r *updateWithURL) patch() domain.Patch {
	p := r.patchFields.patch()
	p.ImageSrc = r.ImageSrc
	return p
}
