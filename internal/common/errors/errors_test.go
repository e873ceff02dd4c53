package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load pattern: %w", NewNotFoundError("scoring pattern", "p-1"))

	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeNotFound}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeConflict}))
	assert.Equal(t, ErrCodeNotFound, CodeOf(err))
	assert.True(t, HasCode(err, ErrCodeNotFound))
}

func TestCodeOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(stderrors.New("boom")))
	assert.False(t, HasCode(nil, ErrCodeInternal))
}

func TestNewInvalidConfigurationError_KeepsEveryViolation(t *testing.T) {
	violations := []string{"range 1: min 30 is greater than max 10", "range 2: label must not be empty"}
	err := NewInvalidConfigurationError("custom-range-pattern", violations)

	assert.False(t, err.Retryable)
	assert.Equal(t, violations, err.Metadata["errors"])
	assert.Contains(t, err.Details, "label must not be empty")
	assert.Contains(t, err.Details, "min 30")
}

func TestNewStaleConfigurationError_CarriesDiagnostics(t *testing.T) {
	err := NewStaleConfigurationError("p-9", `{"ranges":[]}`, []string{"ranges: must contain between 1 and 10 entries"})

	assert.Equal(t, ErrCodeStaleConfiguration, err.Code)
	assert.Equal(t, "p-9", err.Metadata["patternId"])
	assert.Equal(t, `{"ranges":[]}`, err.Metadata["configuration"])
	assert.Contains(t, err.Error(), "p-9")
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable database error keeps retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewQueryExecutionFailedError("select", stderrors.New("conn reset")))
		assert.Equal(t, "QUERY_EXECUTION_FAILED", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)
	})

	t.Run("business error has no retries and exposes violations", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInvalidConfigurationError("preset-highest", []string{"flagCount must be 1"}))
		require.NotNil(t, bpmn.ErrorVariables)
		assert.Equal(t, 0, bpmn.Retries)
		assert.Equal(t, []string{"flagCount must be 1"}, bpmn.ErrorVariables["validationErrors"])

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "INVALID_CONFIGURATION", vars["errorCode"])
		assert.Equal(t, "INVALID_CONFIGURATION", vars["originalErrorCode"])
	})
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected string
	}{
		{ErrCodeInvalidConfiguration, "VALIDATION"},
		{ErrCodeStaleConfiguration, "VALIDATION"},
		{ErrCodeUnresolvableScore, "SCORING"},
		{ErrCodePatternInactive, "SCORING"},
		{ErrCodeNotFound, "RESOURCE"},
		{ErrCodeConflict, "RESOURCE"},
		{ErrCodeQueryExecutionFailed, "DATABASE"},
		{ErrCodeCacheFailed, "INFRASTRUCTURE"},
		{"SOMETHING_ELSE", "OTHER"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCategory(tt.code))
		})
	}
}
