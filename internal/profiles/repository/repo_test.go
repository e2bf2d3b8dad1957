package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-labs/portfolio-api/internal/profiles/domain"
)

func newRepo(t *testing.T) (*PresenterRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPresenterRepository(db), mock
}

func TestGet_NoRow(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`FROM presenter ORDER BY id ASC LIMIT 1`).WillReturnRows(sqlmock.NewRows(columns))

	p, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestInsert(t *testing.T) {
	repo, mock := newRepo(t)
	name, url, email := "Ada", "https://example.com/a.png", "ada@example.com"

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO presenter (contact_email,name,profile_url) VALUES ($1,$2,$3) RETURNING id`)).
		WithArgs(email, name, url).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, name, url, "", email, time.Now()))

	p, err := repo.Insert(context.Background(), domain.PresenterPatch{Name: &name, ProfileURL: &url, ContactEmail: &email})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestUpdate_Vanished(t *testing.T) {
	repo, mock := newRepo(t)
	name := "Ada"
	mock.ExpectQuery(`UPDATE presenter`).WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), 1, domain.PresenterPatch{Name: &name})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
