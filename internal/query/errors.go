package query

import (
	"errors"
	"fmt"
)

// ErrNotImplemented marks operations the in-memory engine deliberately
// does not provide (Negate, Group).
var ErrNotImplemented = errors.New("not implemented by the memory adapter")

// ErrUnknownAttribute is returned by Row accessors for a missing attribute.
var ErrUnknownAttribute = errors.New("unknown attribute")

// ErrMissingCondition is returned when a condition method gets nothing to
// filter on.
var ErrMissingCondition = errors.New("you need to specify a condition")

// QueryError represents an error detected while building or resolving a
// query.
type QueryError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Column names the column involved, if any.
	Column string

	// Err is the underlying cause.
	Err error
}

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// ErrCodeInvalidQuery indicates an Expr failed while evaluating a record.
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"

	// ErrCodeTypeMismatch indicates values could not be compared or summed.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeNotImplemented indicates an unsupported operation.
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// ErrCodeMissingCondition indicates an empty condition.
	ErrCodeMissingCondition ErrorCode = "MISSING_CONDITION"

	// ErrCodeInvalidArgument indicates a malformed argument (negative limit,
	// empty column name, unsupported literal).
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	msg := e.Message
	if e.Column != "" {
		msg = fmt.Sprintf("%s (column=%s)", msg, e.Column)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsInvalidQueryError returns true if err is an INVALID_QUERY error.
// Uses errors.As to handle wrapped errors.
func IsInvalidQueryError(err error) bool {
	return hasCode(err, ErrCodeInvalidQuery)
}

// IsTypeMismatchError returns true if err is a TYPE_MISMATCH error.
func IsTypeMismatchError(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

// IsNotImplementedError returns true if err reports an unsupported operation.
func IsNotImplementedError(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}

func hasCode(err error, code ErrorCode) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

func newInvalidQueryError(err error) *QueryError {
	return &QueryError{
		Code:    ErrCodeInvalidQuery,
		Message: "query expression failed",
		Err:     err,
	}
}

func newTypeMismatchError(op, column string, err error) *QueryError {
	return &QueryError{
		Code:    ErrCodeTypeMismatch,
		Message: fmt.Sprintf("%s failed", op),
		Column:  column,
		Err:     err,
	}
}

func newNotImplementedError(op string) *QueryError {
	return &QueryError{
		Code:    ErrCodeNotImplemented,
		Message: op,
		Err:     ErrNotImplemented,
	}
}

func newInvalidArgumentError(op, column string, err error) *QueryError {
	return &QueryError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("invalid argument to %s", op),
		Column:  column,
		Err:     err,
	}
}

func newMissingConditionError(op string) *QueryError {
	return &QueryError{
		Code:    ErrCodeMissingCondition,
		Message: op,
		Err:     ErrMissingCondition,
	}
}
