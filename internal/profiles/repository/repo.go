package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/folio-labs/portfolio-api/internal/profiles/domain"
	"github.com/folio-labs/portfolio-api/internal/storage/postgres"
)

const table = "presenter"

var columns = []string{"id", "name", "profile_url", "about_me_description", "contact_email", "updated_at"}

var returning = "RETURNING " + strings.Join(columns, ", ")

type PresenterRepository struct {
	db *sql.DB
}

func NewPresenterRepository(db *sql.DB) *PresenterRepository {
	return &PresenterRepository{db: db}
}

// Get returns the first presenter row, or nil when none exists yet.
func (r *PresenterRepository) Get(ctx context.Context) (*domain.Presenter, error) {
	q := postgres.Builder.Select(columns...).From(table).OrderBy("id ASC").Limit(1)

	p, err := r.queryRow(ctx, "presenter.Get", q)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PresenterRepository) Insert(ctx context.Context, patch domain.PresenterPatch) (*domain.Presenter, error) {
	q := postgres.Builder.Insert(table).SetMap(patch.Columns()).Suffix(returning)
	return r.queryRow(ctx, "presenter.Insert", q)
}

func (r *PresenterRepository) Update(ctx context.Context, id int64, patch domain.PresenterPatch) (*domain.Presenter, error) {
	cols := patch.Columns()
	cols["updated_at"] = sq.Expr("now()")

	q := postgres.Builder.Update(table).SetMap(cols).Where(sq.Eq{"id": id}).Suffix(returning)
	return r.queryRow(ctx, "presenter.Update", q)
}

// queryRow returns sql.ErrNoRows unwrapped so callers can decide what a
// missing row means.
func (r *PresenterRepository) queryRow(ctx context.Context, op string, q sq.Sqlizer) (*domain.Presenter, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var p domain.Presenter
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&p.ID, &p.Name, &p.ProfileURL, &p.AboutMeDescription, &p.ContactEmail, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, postgres.Error(op, err)
	}
	return &p, nil
}
