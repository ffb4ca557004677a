package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types organized by category for better error handling

type ErrorType int

// Domain/Business Logic Errors - errors related to input validation and lookups
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeAlreadyExists
	ErrorTypeToken

	// Location Resolution Errors - one per failure mode of a resolution strategy
	ErrorTypePermissionDenied
	ErrorTypePositionUnavailable
	ErrorTypeTimeout

	// Provider Errors - errors returned by external HTTP services
	ErrorTypeNetwork
	ErrorTypeProvider
	ErrorTypeLocationInvalid
	ErrorTypeRateLimited

	// Infrastructure Errors
	ErrorTypeDatabase
	ErrorTypeEmail

	// System/Configuration Errors - missing or invalid credentials and setup
	ErrorTypeConfiguration
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeAlreadyExists:
		return "ALREADY_EXISTS_ERROR"
	case ErrorTypeToken:
		return "TOKEN_ERROR"
	case ErrorTypePermissionDenied:
		return "PERMISSION_DENIED"
	case ErrorTypePositionUnavailable:
		return "POSITION_UNAVAILABLE"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeNetwork:
		return "NETWORK_ERROR"
	case ErrorTypeProvider:
		return "PROVIDER_ERROR"
	case ErrorTypeLocationInvalid:
		return "LOCATION_INVALID"
	case ErrorTypeRateLimited:
		return "RATE_LIMITED"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeEmail:
		return "EMAIL_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Retryable reports whether an application-level retry can reasonably help.
// Configuration and validation problems never fix themselves; timeouts and
// transient network failures might.
func (e ErrorType) Retryable() bool {
	switch e {
	case ErrorTypeTimeout, ErrorTypeNetwork, ErrorTypePositionUnavailable, ErrorTypeRateLimited:
		return true
	default:
		return false
	}
}

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain/Business Logic Error Constructors
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewNotFoundError(message string) *AppError {
	return New(ErrorTypeNotFound, message)
}

func NewAlreadyExistsError(message string) *AppError {
	return New(ErrorTypeAlreadyExists, message)
}

func NewTokenError(message string) *AppError {
	return New(ErrorTypeToken, message)
}

// Location Resolution Error Constructors
func NewPermissionDeniedError(message string) *AppError {
	return New(ErrorTypePermissionDenied, message)
}

func NewPositionUnavailableError(message string, cause error) *AppError {
	return Wrap(ErrorTypePositionUnavailable, message, cause)
}

func NewTimeoutError(message string, cause error) *AppError {
	return Wrap(ErrorTypeTimeout, message, cause)
}

// Provider Error Constructors
func NewNetworkError(message string, cause error) *AppError {
	return Wrap(ErrorTypeNetwork, message, cause)
}

func NewProviderError(message string, cause error) *AppError {
	return Wrap(ErrorTypeProvider, message, cause)
}

func NewLocationInvalidError(message string) *AppError {
	return New(ErrorTypeLocationInvalid, message)
}

func NewRateLimitedError(message string) *AppError {
	return New(ErrorTypeRateLimited, message)
}

// Infrastructure Error Constructors
func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(ErrorTypeDatabase, message, cause)
}

func NewEmailError(message string, cause error) *AppError {
	return Wrap(ErrorTypeEmail, message, cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ErrorTypeConfiguration, message, cause)
}

// TypeOf extracts the error type from any error, unwrapping as needed. It
// returns ErrorTypeUnknown for errors with no AppError in their chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// Helper functions for error type checking
func IsType(err error, errorType ErrorType) bool {
	return TypeOf(err) == errorType
}

func IsNotFoundError(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func IsTokenError(err error) bool {
	return IsType(err, ErrorTypeToken)
}

func IsAlreadyExistsError(err error) bool {
	return IsType(err, ErrorTypeAlreadyExists)
}

func IsValidationError(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

func IsTimeoutError(err error) bool {
	return IsType(err, ErrorTypeTimeout)
}

func IsConfigurationError(err error) bool {
	return IsType(err, ErrorTypeConfiguration)
}

func IsRateLimitedError(err error) bool {
	return IsType(err, ErrorTypeRateLimited)
}
