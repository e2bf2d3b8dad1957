package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/folio-labs/portfolio-api/internal/projects/domain"
	"github.com/folio-labs/portfolio-api/internal/storage/postgres"
)

const table = "projects"

var columns = []string{
	"id", "title", "description", "image_src", "github_link", "live_demo_link", "tech_section", "created_at",
}

var returning = "RETURNING " + strings.Join(columns, ", ")

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts p and returns the stored row.
func (r *ProjectRepository) Create(ctx context.Context, p domain.NewProject) (*domain.Project, error) {
	q := postgres.Builder.Insert(table).
		Columns("title", "description", "image_src", "github_link", "live_demo_link", "tech_section").
		Values(p.Title, p.Description, p.ImageSrc, p.GithubLink, p.LiveDemoLink, p.TechSection).
		Suffix(returning)

	return r.queryRow(ctx, "projects.Create", q)
}

// List returns every project ordered by id.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	query, args, err := postgres.Builder.Select(columns...).From(table).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, postgres.Error("projects.List", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, postgres.Error("projects.List", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Error("projects.List", err)
	}
	return out, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id int64) (*domain.Project, error) {
	q := postgres.Builder.Select(columns...).From(table).Where(sq.Eq{"id": id})
	return r.queryRow(ctx, "projects.Get", q)
}

// Update sets only the columns present in patch and returns the updated row.
func (r *ProjectRepository) Update(ctx context.Context, id int64, patch domain.Patch) (*domain.Project, error) {
	q := postgres.Builder.Update(table).
		SetMap(patch.Columns()).
		Where(sq.Eq{"id": id}).
		Suffix(returning)

	return r.queryRow(ctx, "projects.Update", q)
}

// Delete removes the project and returns the deleted row.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	q := postgres.Builder.Delete(table).Where(sq.Eq{"id": id}).Suffix(returning)
	return r.queryRow(ctx, "projects.Delete", q)
}

func (r *ProjectRepository) queryRow(ctx context.Context, op string, q sq.Sqlizer) (*domain.Project, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, postgres.Error(op, err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageSrc, &p.GithubLink, &p.LiveDemoLink, &p.TechSection, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
