package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BradenHooton/srm/internal/models"
)

// Postgres error codes the repositories care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeInvalidTextRepr     = "22P02"
)

// MapPostgresError translates driver errors into the model sentinels. A
// missing row and a malformed or dangling uuid both read as not found, so a
// handler never has to tell them apart. Anything unrecognised is returned
// unchanged.
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, models.ErrConflict)
	case codeForeignKeyViolation, codeInvalidTextRepr:
		return models.ErrNotFound
	case codeNotNullViolation:
		return fmt.Errorf("%s is required: %w", pgErr.ColumnName, models.ErrBadRequest)
	default:
		return err
	}
}
