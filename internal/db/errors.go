package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"saucebottle/internal/apperr"
)

// ErrorCode classifies a storage failure independently of the backend that
// produced it. The store layer converts these into domain errors with
// entity context.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeDuplicate        ErrorCode = "DUPLICATE"
	CodeForeignKey       ErrorCode = "FOREIGN_KEY"
	CodeCheckViolation   ErrorCode = "CHECK_VIOLATION"
	CodeNotNullViolation ErrorCode = "NOT_NULL"
	CodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeSerialization    ErrorCode = "SERIALIZATION"
	CodeDeadlock         ErrorCode = "DEADLOCK"
	CodeBusy             ErrorCode = "BUSY"
	CodeUnknown          ErrorCode = "UNKNOWN"
)

// Sentinel errors for quick checks with errors.Is.
var (
	ErrNotFound    = errors.New("db: record not found")
	ErrDuplicate   = errors.New("db: duplicate key violation")
	ErrForeignKey  = errors.New("db: foreign key violation")
	ErrConnection  = errors.New("db: connection failed")
	ErrTimeout     = errors.New("db: operation timeout")
	ErrBusy        = errors.New("db: database busy")
	ErrSerializing = errors.New("db: serialization failure")
)

// Error is a classified storage error with context about where it came
// from. It keeps the driver error as Cause but exposes a uniform surface,
// so nothing above this layer matches on driver types.
type Error struct {
	Code       ErrorCode
	Message    string
	Op         string // operation that failed, e.g. "FindByID"
	Table      string
	Column     string
	Constraint string
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("db: %s", e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("db.%s: %s", e.Op, e.Message)
	}
	if e.Table != "" {
		msg += fmt.Sprintf(" (table: %s)", e.Table)
	}
	if e.Constraint != "" {
		msg += fmt.Sprintf(" (constraint: %s)", e.Constraint)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for sentinel matching.
func (e *Error) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == ErrNotFound
	case CodeDuplicate:
		return target == ErrDuplicate
	case CodeForeignKey:
		return target == ErrForeignKey
	case CodeConnectionFailed:
		return target == ErrConnection
	case CodeTimeout:
		return target == ErrTimeout
	case CodeBusy:
		return target == ErrBusy
	case CodeSerialization:
		return target == ErrSerializing
	}
	return false
}

// wrapError converts a raw driver error into a classified *Error. Domain
// errors and already-classified errors pass through untouched. A statement
// issued on a finished transaction surfaces as InvalidScopeUse: the scope
// was terminal and the operation must be rejected, not absorbed.
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var dbErr *Error
	if errors.As(err, &dbErr) {
		return err
	}

	if errors.Is(err, sql.ErrTxDone) {
		return apperr.InvalidScopeUse("operation on a closed transaction scope")
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{
			Code:    CodeNotFound,
			Message: "record not found",
			Op:      op,
			Cause:   err,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return wrapPgError(pgErr, op)
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return wrapSQLiteError(sqliteErr, op)
	}

	return &Error{
		Code:    CodeUnknown,
		Message: err.Error(),
		Op:      op,
		Cause:   err,
	}
}

// wrapPgError maps PostgreSQL SQLSTATE codes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
func wrapPgError(pgErr *pgconn.PgError, op string) *Error {
	e := &Error{
		Op:         op,
		Table:      pgErr.TableName,
		Column:     pgErr.ColumnName,
		Constraint: pgErr.ConstraintName,
		Cause:      pgErr,
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		e.Code = CodeDuplicate
		e.Message = "duplicate key value violates unique constraint"
	case "23503": // foreign_key_violation
		e.Code = CodeForeignKey
		e.Message = "foreign key constraint violation"
	case "23502": // not_null_violation
		e.Code = CodeNotNullViolation
		e.Message = "null value in column violates not-null constraint"
	case "23514": // check_violation
		e.Code = CodeCheckViolation
		e.Message = "check constraint violation"
	case "40001": // serialization_failure
		e.Code = CodeSerialization
		e.Message = "serialization failure, retry transaction"
	case "40P01": // deadlock_detected
		e.Code = CodeDeadlock
		e.Message = "deadlock detected"
	case "57014": // query_canceled
		e.Code = CodeTimeout
		e.Message = "query was cancelled due to timeout"
	case "08000", "08003", "08006": // connection errors
		e.Code = CodeConnectionFailed
		e.Message = "database connection failed"
	default:
		e.Code = CodeUnknown
		e.Message = pgErr.Message
	}

	return e
}

// wrapSQLiteError maps modernc.org/sqlite result codes. Extended constraint
// codes identify the violation; plain SQLITE_CONSTRAINT is treated as a
// duplicate because that is what the catalog's unique indexes produce.
func wrapSQLiteError(sqliteErr *msqlite.Error, op string) *Error {
	e := &Error{
		Op:    op,
		Cause: sqliteErr,
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT:
		e.Code = CodeDuplicate
		e.Message = "duplicate key value violates unique constraint"
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		e.Code = CodeForeignKey
		e.Message = "foreign key constraint violation"
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		e.Code = CodeNotNullViolation
		e.Message = "null value in column violates not-null constraint"
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		e.Code = CodeCheckViolation
		e.Message = "check constraint violation"
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		e.Code = CodeBusy
		e.Message = "database is locked"
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
		e.Code = CodeConnectionFailed
		e.Message = "database connection failed"
	default:
		e.Code = CodeUnknown
		e.Message = sqliteErr.Error()
	}

	return e
}

// IsNotFound reports whether err is a not-found classification.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err is a duplicate-key classification.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsForeignKey reports whether err is a foreign-key classification.
func IsForeignKey(err error) bool {
	return errors.Is(err, ErrForeignKey)
}

// IsConnection reports whether err is a connection failure.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// GetErrorCode extracts the classification if err came from this layer.
func GetErrorCode(err error) (ErrorCode, bool) {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Code, true
	}
	return "", false
}
