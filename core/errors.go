package core

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for comparison using errors.Is()
var (
	// Configuration errors
	ErrInvalidConfiguration  = errors.New("invalid configuration")
	ErrMissingConfiguration  = errors.New("missing required configuration")
	ErrMissingAPIKey         = errors.New("api key is required")
	ErrInvalidSamplingRate   = errors.New("sampling rate must be between 0.0 and 1.0")
	ErrInvalidBatchSize      = errors.New("max batch size must be greater than 0")
	ErrInvalidExportInterval = errors.New("export interval must be greater than 0")

	// State errors
	ErrAlreadyInitialized = errors.New("untrace already initialized")
	ErrNotInitialized     = errors.New("untrace not initialized")
	ErrShutdown           = errors.New("untrace has been shut down")

	// Instrumentation errors
	ErrProviderNotFound = errors.New("provider not found")
	ErrNoActiveWorkflow = errors.New("no active workflow")
	ErrInvalidAttribute = errors.New("invalid attribute")
)

// Error kinds. Every *Error carries exactly one of these.
const (
	KindConfiguration   = "configuration"
	KindValidation      = "validation"
	KindInitialization  = "initialization"
	KindInstrumentation = "instrumentation"
	KindExport          = "export"
)

// Error provides structured error information with context.
// It implements the error interface and supports error wrapping.
type Error struct {
	Op      string // Operation that failed (e.g., "Config.Validate")
	Kind    string // Error kind (one of the Kind* constants)
	ID      string // Optional name of the entity involved (field, provider)
	Message string // Human-readable message
	Err     error  // Underlying error for wrapping
}

// Error returns the string representation of the error
func (e *Error) Error() string {
	if e.Message != "" {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s", e.Op, e.Message)
		}
		return e.Message
	}
	if e.Op != "" && e.Err != nil {
		if e.ID != "" {
			return fmt.Sprintf("%s [%s]: %v", e.Op, e.ID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s error", e.Kind)
}

// Unwrap returns the underlying error for use with errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error
func NewError(op, kind string, err error) *Error {
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err carries none.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsConfigurationError checks if an error is configuration-related
func IsConfigurationError(err error) bool {
	return KindOf(err) == KindConfiguration ||
		errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingConfiguration)
}

// IsValidationError checks if an error is a rule violation on a built config
func IsValidationError(err error) bool {
	return KindOf(err) == KindValidation
}

// IsInitializationError checks if an error came from installing the global instance
func IsInitializationError(err error) bool {
	return KindOf(err) == KindInitialization ||
		errors.Is(err, ErrAlreadyInitialized)
}

// IsInstrumentationError checks if an error came from a registry or workflow operation
func IsInstrumentationError(err error) bool {
	return KindOf(err) == KindInstrumentation
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProviderNotFound) ||
		errors.Is(err, ErrNoActiveWorkflow)
}
