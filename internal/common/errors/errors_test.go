package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardError(t *testing.T) {
	err := NewInferenceFailedError("entity-extraction", errors.New("connection refused"))

	assert.Equal(t, ErrCodeInferenceFailed, err.Code)
	assert.True(t, err.Retryable)
	assert.Contains(t, err.Details, "entity-extraction")
	assert.Contains(t, err.Error(), "INFERENCE_FAILED")
	assert.False(t, err.Timestamp.IsZero())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		wantCode  ErrorCode
		retryable bool
	}{
		{"timeout", NewInferenceTimeoutError("stage-detection"), ErrCodeInferenceTimeout, true},
		{"malformed", NewResponseMalformedError("reply-generation", errors.New("bad json")), ErrCodeResponseMalformed, false},
		{"schema", NewSchemaInvalidError("entity-extraction", "motivation must be object"), ErrCodeSchemaInvalid, false},
		{"input", NewInvalidInputError("text is required"), ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.retryable, tt.err.Retryable)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewInferenceTimeoutError("x")))
	assert.False(t, IsRetryable(NewInvalidInputError("x")))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeInvalidInput, GetErrorCode(NewInvalidInputError("x")))
	assert.Equal(t, ErrorCode("UNKNOWN_ERROR"), GetErrorCode(errors.New("plain")))
}
