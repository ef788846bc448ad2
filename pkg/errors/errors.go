// Package errors defines common error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the application.
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeSyntaxError   = "SYNTAX_ERROR"
	CodeInvalidOption = "INVALID_OPTION"
	CodeConfigError   = "CONFIG_ERROR"
	CodeProfileError  = "PROFILE_ERROR"
	CodeResolveError  = "RESOLVE_ERROR"
	CodeEmptyProfile  = "EMPTY_PROFILE"
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

// Newf creates a new AppError with a formatted message.
func Newf(code string, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
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
	ErrSyntaxError   = New(CodeSyntaxError, "filter syntax error")
	ErrInvalidOption = New(CodeInvalidOption, "invalid option")
	ErrConfigError   = New(CodeConfigError, "configuration error")
	ErrProfileError  = New(CodeProfileError, "profile error")
	ErrResolveError  = New(CodeResolveError, "source resolution error")
	ErrEmptyProfile  = New(CodeEmptyProfile, "empty profile")
)

// IsSyntaxError checks if the error is a filter syntax error.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrSyntaxError)
}

// IsInvalidOption checks if the error is an invalid option error.
func IsInvalidOption(err error) bool {
	return errors.Is(err, ErrInvalidOption)
}

// IsEmptyProfile checks if the error is an empty profile error.
func IsEmptyProfile(err error) bool {
	return errors.Is(err, ErrEmptyProfile)
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
