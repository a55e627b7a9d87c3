package data

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/tinydevcrm/eventbridge/internal/errors"
)

// classifyError maps low-level Postgres errors onto structured AppErrors so
// callers never branch on driver types. notFoundMsg is used when the error is
// a no-rows condition.
func classifyError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(notFoundMsg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperrors.Wrap(err, apperrors.ErrCodeConflict, "already exists")
		case pgerrcode.ForeignKeyViolation:
			return apperrors.Wrap(err, apperrors.ErrCodeForeignKey, "referenced row missing or in use")
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation, pgerrcode.InvalidTextRepresentation:
			return apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid value")
		}
	}

	return err
}
