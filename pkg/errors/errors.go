// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown                    = "UNKNOWN_ERROR"
	CodeInputInvalid               = "INPUT_INVALID"
	CodeEmptyFile                  = "EMPTY_FILE"
	CodeParseError                 = "PARSE_ERROR"
	CodeContiguityInvalidNeighbour = "CONTIGUITY_INVALID_NEIGHBOUR"
	CodeVerificationFailed         = "VERIFICATION_FAILED"
	CodeSolverInternal             = "SOLVER_INTERNAL"
	CodeOutputIOFailure            = "OUTPUT_IO_FAILURE"
	CodeUploadError                = "UPLOAD_ERROR"
	CodeDatabaseError              = "DATABASE_ERROR"
	CodeConfigError                = "CONFIG_ERROR"
	CodeTimeout                    = "TIMEOUT_ERROR"
	CodeNotFound                   = "NOT_FOUND"
)

// AppError represents an application error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrInputInvalid               = New(CodeInputInvalid, "input invalid")
	ErrEmptyFile                  = New(CodeEmptyFile, "empty file")
	ErrParseError                 = New(CodeParseError, "parse error")
	ErrContiguityInvalidNeighbour = New(CodeContiguityInvalidNeighbour, "contiguity chain references a neighbour that does not exist")
	ErrVerificationFailed         = New(CodeVerificationFailed, "placement failed offset verification")
	ErrSolverInternal             = New(CodeSolverInternal, "solver internal error")
	ErrOutputIOFailure            = New(CodeOutputIOFailure, "output io failure")
	ErrUploadError                = New(CodeUploadError, "upload error")
	ErrDatabaseError              = New(CodeDatabaseError, "database error")
	ErrConfigError                = New(CodeConfigError, "configuration error")
	ErrTimeout                    = New(CodeTimeout, "operation timeout")
	ErrNotFound                   = New(CodeNotFound, "resource not found")
)

// IsInputInvalid checks if the error is an invalid-input error.
func IsInputInvalid(err error) bool {
	return errors.Is(err, ErrInputInvalid)
}

// IsContiguityInvalidNeighbour checks if the error is a broken contiguity chain.
func IsContiguityInvalidNeighbour(err error) bool {
	return errors.Is(err, ErrContiguityInvalidNeighbour)
}

// IsVerificationFailed checks if the error is a verification failure.
func IsVerificationFailed(err error) bool {
	return errors.Is(err, ErrVerificationFailed)
}

// IsSolverInternal checks if the error is an internal solver error.
func IsSolverInternal(err error) bool {
	return errors.Is(err, ErrSolverInternal)
}

// IsOutputIOFailure checks if the error is an output IO failure.
func IsOutputIOFailure(err error) bool {
	return errors.Is(err, ErrOutputIOFailure)
}

// IsUploadError checks if the error is an upload error.
func IsUploadError(err error) bool {
	return errors.Is(err, ErrUploadError)
}

// IsDatabaseError checks if the error is a database error.
func IsDatabaseError(err error) bool {
	return errors.Is(err, ErrDatabaseError)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
