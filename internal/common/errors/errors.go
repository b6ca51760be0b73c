// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInferenceFailed    ErrorCode = "INFERENCE_FAILED"
	ErrCodeInferenceTimeout   ErrorCode = "INFERENCE_TIMEOUT"
	ErrCodeResponseMalformed  ErrorCode = "RESPONSE_MALFORMED"
	ErrCodeSchemaInvalid      ErrorCode = "SCHEMA_INVALID"
	ErrCodeTransitionRejected ErrorCode = "TRANSITION_REJECTED"
	ErrCodeCacheUnavailable   ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewInferenceFailedError wraps a collaborator failure. Retryable in
// principle, but the pipeline absorbs it into stage defaults instead of
// retrying.
func NewInferenceFailedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceFailed,
		Message:   "Inference call failed",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInferenceTimeoutError marks a collaborator call that exceeded its
// per-call deadline.
func NewInferenceTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInferenceTimeout,
		Message:   "Inference call timed out",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseMalformedError marks a response that could not be parsed as
// the structured shape the stage requested.
func NewResponseMalformedError(stage string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseMalformed,
		Message:   "Inference response was not parseable",
		Details:   fmt.Sprintf("stage: %s, error: %s", stage, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaInvalidError marks a structured response that parsed as JSON
// but failed schema validation.
func NewSchemaInvalidError(stage, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaInvalid,
		Message:   "Inference response failed schema validation",
		Details:   fmt.Sprintf("stage: %s, %s", stage, details),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError marks a malformed caller request.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid request input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err is a StandardError flagged retryable.
func IsRetryable(err error) bool {
	if se, ok := err.(*StandardError); ok {
		return se.Retryable
	}
	return false
}

// GetErrorCode extracts the code from a StandardError, or UNKNOWN_ERROR.
func GetErrorCode(err error) ErrorCode {
	if se, ok := err.(*StandardError); ok {
		return se.Code
	}
	return "UNKNOWN_ERROR"
}
