// Package postgres implements the durable store for URLs and visits on top of
// sqlx. Every method runs as its own statement on a pooled connection, so no
// transaction spans more than one call.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	uniqueViolationErrCode     = "23505"
	foreignKeyViolationErrCode = "23503"
)

func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == code
}

func isUniqueViolationError(err error) bool {
	return hasSQLState(err, uniqueViolationErrCode)
}

func isForeignKeyViolationError(err error) bool {
	return hasSQLState(err, foreignKeyViolationErrCode)
}

func storeError(op, msg string, err error) error {
	return fmt.Errorf("%s: %s: %w: %w", op, msg, entity.ErrStoreUnavailable, err)
}
