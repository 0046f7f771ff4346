package domain

import (
	"fmt"
	"time"
)

// CoachError represents a standardized error response
type CoachError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface
func (e *CoachError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrInvalidInput   = "INVALID_INPUT"
	ErrDatabaseError  = "DATABASE_ERROR"
	ErrLLMBackend     = "LLM_BACKEND_ERROR"
	ErrAnalysis       = "ANALYSIS_ERROR"
	ErrRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer = "INTERNAL_SERVER_ERROR"
	ErrValidation     = "VALIDATION_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// BackendError wraps a failure from an LLM backend with the fallback
// attribution the dispatcher and evaluation tooling key on.
type BackendError struct {
	Reason FailureReason
	Err    error
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError attributes a backend failure to a fallback reason.
func NewBackendError(reason FailureReason, err error) *BackendError {
	return &BackendError{Reason: reason, Err: err}
}

// NewCoachError creates a new CoachError with timestamp
func NewCoachError(code, message, details, requestID string) *CoachError {
	return &CoachError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
