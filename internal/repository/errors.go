package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsIntegrityViolation reports whether err is a PostgreSQL class 23 error
// (foreign key, check, unique, not null). Retrying such a write fails the
// same way every time.
func IsIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23")
}
