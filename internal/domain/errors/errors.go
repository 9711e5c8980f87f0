package errors

import (
	"github.com/pkg/errors"
)

// Process exit codes reported by command-line entry points.
const (
	ExitOK          = 0
	ExitRejected    = 1 // wrong password or unknown identifier
	ExitDataProblem = 2 // stored data needs operator attention
	ExitFailure     = 3
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	ExitCode() int     // Process exit code for command-line callers
	ErrorCode() string // Business error code
	Message() string   // Operator-facing error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	exitCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(exitCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		exitCode:  exitCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches on error code so that copies produced by WithDetails still satisfy errors.Is.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// ExitCode returns the process exit code
func (e *BaseError) ExitCode() int {
	return e.exitCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the operator-facing error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		exitCode:  e.exitCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Lookup-related errors
	ErrCredentialNotFound = NewBaseError(
		ExitRejected,
		"CREDENTIAL_NOT_FOUND",
		"no credential matches the identifier",
		"",
	)

	ErrCredentialAlreadyExists = NewBaseError(
		ExitFailure,
		"CREDENTIAL_ALREADY_EXISTS",
		"a credential with this identifier already exists",
		"",
	)

	// Verification-related errors
	ErrMalformedCredential = NewBaseError(
		ExitDataProblem,
		"MALFORMED_CREDENTIAL",
		"stored password hash is malformed",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		ExitRejected,
		"INVALID_CREDENTIALS",
		"identifier or password is incorrect",
		"",
	)

	ErrRotationRequired = NewBaseError(
		ExitRejected,
		"ROTATION_REQUIRED",
		"credential must be rotated before use",
		"",
	)

	ErrVerificationTimeout = NewBaseError(
		ExitFailure,
		"VERIFICATION_TIMEOUT",
		"credential check abandoned before completion",
		"",
	)

	// Hash creation errors
	ErrPasswordHashFailed = NewBaseError(
		ExitFailure,
		"PASSWORD_HASH_FAILED",
		"failed to hash password",
		"",
	)

	ErrPasswordPolicy = NewBaseError(
		ExitFailure,
		"PASSWORD_POLICY",
		"password does not satisfy the configured policy",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		ExitFailure,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		ExitFailure,
		"INTERNAL_ERROR",
		"internal error",
		"",
	)
)

// StoreExecuteError represents a credential store failure, implementing the AppError interface
type StoreExecuteError struct {
	err     error
	details string
}

// NewStoreExecuteError creates a storage-related error
func NewStoreExecuteError(err error, details string) AppError {
	return &StoreExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreExecuteError) Error() string {
	return errors.Wrap(e.err, "credential store execution failed").Error()
}

// Unwrap exposes the underlying driver error
func (e *StoreExecuteError) Unwrap() error {
	return e.err
}

// ExitCode returns the process exit code
func (e *StoreExecuteError) ExitCode() int {
	return ExitFailure
}

// ErrorCode returns the business error code
func (e *StoreExecuteError) ErrorCode() string {
	return "STORE_EXECUTE_FAILED"
}

// Message returns the operator-facing error message
func (e *StoreExecuteError) Message() string {
	return "credential store execution failed"
}

// Details returns detailed error information
func (e *StoreExecuteError) Details() string {
	return e.details
}

// ExitCodeOf maps any error to the exit code of the first AppError in its chain.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode()
	}

	return ExitFailure
}
