package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// isUniqueConstraintError checks if the error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "duplicate key value violates unique constraint")
}

// mapDBError maps driver errors to tree errors. item supplies context for the
// collision message and may be nil.
func mapDBError(err error, op string, item *itemRecord) error {
	if err == nil {
		return nil
	}

	var treeErr *treeerrors.TreeError
	if errors.As(err, &treeErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		id := ""
		if item != nil {
			id = item.ID
		}
		return treeerrors.NewNotFoundError("item", id)
	}

	if isUniqueConstraintError(err) {
		if item != nil {
			return treeerrors.NewNameCollisionError(item.Name, item.Type)
		}
		return &treeerrors.TreeError{Code: treeerrors.ErrNameCollision, Message: "sibling name already in use", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return &treeerrors.TreeError{Code: treeerrors.ErrNotFound, Message: "referenced parent folder not found", Err: err}
		case pgCheckViolation:
			return &treeerrors.TreeError{Code: treeerrors.ErrInvalidArgument, Message: pgErr.Message, Err: err}
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
