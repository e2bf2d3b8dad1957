package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/projects/domain"
)

var created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewProjectRepository(db), mock
}

func projectRows() *sqlmock.Rows {
	return sqlmock.NewRows(columns)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO projects \(title,description,image_src,github_link,live_demo_link,tech_section\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\) RETURNING id, title`).
		WithArgs("Folio", "A portfolio site", "https://cdn.example.com/a.png", "", "", "web").
		WillReturnRows(projectRows().AddRow(1, "Folio", "A portfolio site", "https://cdn.example.com/a.png", "", "", "web", created))

	p, err := repo.Create(context.Background(), domain.NewProject{
		Title:       "Folio",
		Description: "A portfolio site",
		ImageSrc:    "https://cdn.example.com/a.png",
		TechSection: "web",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, created, p.CreatedAt)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`INSERT INTO projects`).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), domain.NewProject{Title: "x"})
	assert.Equal(t, apperr.EConflict, apperr.Code(err))
}

func TestList(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`SELECT id, title, description, image_src, github_link, live_demo_link, tech_section, created_at FROM projects ORDER BY id ASC`).
		WillReturnRows(projectRows().
			AddRow(1, "One", "first project", "u1", "", "", "", created).
			AddRow(2, "Two", "second project", "u2", "g", "l", "api", created))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Two", items[1].Title)
	assert.Equal(t, "api", items[1].TechSection)
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM projects`).WillReturnRows(projectRows())

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM projects WHERE id = \$1`).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_OnlyPresentColumns(t *testing.T) {
	repo, mock := newRepo(t)
	title := "Renamed"
	demo := ""

	mock.ExpectQuery(`UPDATE projects SET live_demo_link = \$1, title = \$2 WHERE id = \$3 RETURNING id`).
		WithArgs("", "Renamed", int64(4)).
		WillReturnRows(projectRows().AddRow(4, "Renamed", "some description", "u", "", "", "", created))

	p, err := repo.Update(context.Background(), 4, domain.Patch{Title: &title, LiveDemoLink: &demo})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Title)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	title := "Renamed"
	mock.ExpectQuery(`UPDATE projects`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), 4, domain.Patch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery(`DELETE FROM projects WHERE id = \$1 RETURNING id`).
		WithArgs(int64(3)).
		WillReturnRows(projectRows().AddRow(3, "Gone", "deleted project", "u", "", "", "", created))

	p, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Gone", p.Title)
}

func TestDelete_DatabaseError(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`DELETE FROM projects`).WillReturnError(errors.New("connection reset"))

	_, err := repo.Delete(context.Background(), 3)
	assert.Equal(t, apperr.EDatabase, apperr.Code(err))
}
