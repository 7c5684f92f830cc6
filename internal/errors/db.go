package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OpenAttemptIndex is the partial unique index that allows one open attempt per (interview, user).
const OpenAttemptIndex = "attempts_one_open_per_user_idx"

var (
	// reKeyField extracts the column list from "Key (col)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reNotPresent detects a missing parent: "... is not present in table ...".
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
	// reReferencedFrom detects a parent still in use: "... is still referenced from table ...".
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
)

var tableDomains = map[string]string{
	"interviews": "interview",
	"attempts":   "attempt",
	"users":      "user",
}

// MapDBError maps database errors to AppError instances:
//   - pgx.ErrNoRows → NotFound
//   - unique violations → Conflict
//   - foreign key violations → ForeignKey
//   - check and NOT NULL violations → Validation
//   - context deadline/cancel → Timeout/Canceled
//
// Errors that are not recognized are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "request was canceled")
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "resource not found")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}
	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation:
		e := Wrap(pgErr, ErrCodeValidation, "invalid value")
		e.Field = pgErr.ColumnName
		return e
	case pgerrcode.NotNullViolation:
		e := Wrap(pgErr, ErrCodeValidation, "required field is missing")
		e.Field = pgErr.ColumnName
		return e
	default:
		return Wrap(pgErr, ErrCodeInternal, "database error")
	}
}

func mapUniqueViolation(pgErr *pgconn.PgError) error {
	if pgErr.ConstraintName == OpenAttemptIndex {
		return Wrap(pgErr, ErrCodeConflict, "an open attempt already exists for this interview")
	}

	field := pgErr.ColumnName
	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}
	e := Wrap(pgErr, ErrCodeConflict, "value already exists")
	e.Field = field
	return e
}

func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	msg := "referenced record does not exist"
	if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		msg = "referenced " + domainName(m[1]) + " does not exist"
	} else if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		msg = "record is still referenced by " + domainName(m[1])
	} else if pgErr.TableName != "" {
		msg = "referenced record for " + domainName(pgErr.TableName) + " does not exist"
	}
	return Wrap(pgErr, ErrCodeForeignKey, msg)
}

func domainName(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if name, ok := tableDomains[table]; ok {
		return name
	}
	return strings.ReplaceAll(table, "_", " ")
}
