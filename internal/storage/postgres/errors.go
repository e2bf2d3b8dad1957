package postgres

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/folio-labs/portfolio-api/internal/apperr"
)

// Builder is the statement builder shared by the repositories.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Error maps a record store failure into the application taxonomy: unique
// violations become conflicts, connection failures and everything else become
// database errors.
func Error(op string, err error) error {
	if err == nil {
		return nil
	}
	ae := apperr.Translate(err)
	if ae.Code == apperr.EInternal || ae.Code == apperr.EUnauthorized {
		ae = apperr.Database("", err)
	}
	return apperr.WithOp(ae, op)
}
