package db

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidQuery :
// Used in case the query to perform in the DB is either
// `nil` or empty.
var ErrInvalidQuery = fmt.Errorf("invalid nil query")

// ErrInvalidDB :
// Indicates that the connection to the DB has not been
// established yet or has been lost.
var ErrInvalidDB = fmt.Errorf("invalid nil DB")

// ErrNoSQLCode :
// Defines that the error message provided in input does
// not define any SQL error code.
var ErrNoSQLCode = fmt.Errorf("no SQL code found in error message")

// Defines the possible error codes as returned by the
// SQL driver.
const (
	nonNullConstraint   int = 23502
	foreignKeyViolation int = 23503
	duplicatedElement   int = 23505
)

// Error :
// Defines a generic error type which is associated to a
// SQL error. It wraps the code that was set as return
// value for the SQL query along with the initial error.
//
// The `SQLCode` defines the SQL error code returned by
// the query.
//
// The `Err` defines the initial error that produced
// this error.
type Error struct {
	SQLCode int
	Err     error
}

// Error :
// Implementation of the `error` interface to provide a
// description of the error.
func (e Error) Error() string {
	return fmt.Sprintf("SQL query failed with code %d (err: %v)", e.SQLCode, e.Err)
}

// Unwrap :
// Exposes the initial error so that callers can inspect
// it with the standard errors helpers.
func (e Error) Unwrap() error {
	return e.Err
}

// NullConstraintViolation :
// Returns whether the error indicates that a mandatory
// column was left empty.
func (e Error) NullConstraintViolation() bool {
	return e.SQLCode == nonNullConstraint
}

// ForeignKeyViolation :
// Returns whether the error indicates that a referenced
// row does not exist.
func (e Error) ForeignKeyViolation() bool {
	return e.SQLCode == foreignKeyViolation
}

// Duplicate :
// Returns whether the error indicates that a row with the
// same unique key already exists.
func (e Error) Duplicate() bool {
	return e.SQLCode == duplicatedElement
}

// parseSQLCode :
// Used to parse the SQL code defined in an error message
// assuming it looks something like the following:
// `error msg (SQLSTATE : CODE)`.
// In case the corresponding code cannot be parsed an
// error is returned.
func parseSQLCode(msg string) (int, error) {
	sqlCue := "SQLSTATE "

	codeIndex := strings.Index(msg, sqlCue)
	if codeIndex < 0 {
		return 0, ErrNoSQLCode
	}

	end := msg[codeIndex+len(sqlCue):]

	id := strings.Index(end, ")")
	if id < 0 {
		return 0, ErrNoSQLCode
	}

	code, err := strconv.ParseInt(end[:id], 10, 32)
	if err != nil {
		return 0, ErrNoSQLCode
	}

	return int(code), nil
}

// formatDBError :
// Used to extract some information about the DB error
// provided in input, typically whether the code refers
// to a constraint violation.
//
// The `err` defines the DB error to analyze.
//
// Returns the formatted DB error (in case all else
// fails, the initial error is returned).
func formatDBError(err error) error {
	// In case no error occurred, do nothing.
	if err == nil {
		return nil
	}

	// Retrieve the SQL code for this request. In case
	// we can't find a valid code we will return the
	// input error not to create more errors.
	code, pErr := parseSQLCode(err.Error())
	if pErr != nil {
		return err
	}

	return Error{
		SQLCode: code,
		Err:     err,
	}
}
