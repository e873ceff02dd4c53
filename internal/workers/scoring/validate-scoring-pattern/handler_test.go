// internal/workers/scoring/validate-scoring-pattern/handler_test.go
package validatescoringpattern

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute(t *testing.T) {
	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	tests := []struct {
		name      string
		input     Input
		wantValid bool
		wantError string
	}{
		{
			name:      "valid preset",
			input:     Input{Type: models.TypePresetHighest, Configuration: json.RawMessage(`{"flagCount":1,"orderDirection":"high-to-low"}`)},
			wantValid: true,
		},
		{
			name:      "preset with wrong flag count",
			input:     Input{Type: models.TypePresetHighest, Configuration: json.RawMessage(`{"flagCount":3,"orderDirection":"high-to-low"}`)},
			wantError: "flagCount must be 1",
		},
		{
			name: "overlapping ranges",
			input: Input{Type: models.TypeCustomRangePattern, Configuration: json.RawMessage(
				`{"ranges":[{"min":1,"max":30,"label":"Low"},{"min":25,"max":60,"label":"Mid"}]}`)},
			wantError: "overlap",
		},
		{
			name:      "unknown type",
			input:     Input{Type: "preset-median", Configuration: json.RawMessage(`{}`)},
			wantError: "unknown pattern type",
		},
		{
			name:      "missing configuration",
			input:     Input{Type: models.TypeCustomFlagPattern},
			wantError: "configuration is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), &tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, output.IsValid)
			if tt.wantValid {
				assert.Empty(t, output.Errors)
				return
			}
			require.NotEmpty(t, output.Errors)
			assert.Contains(t, output.Errors[0], tt.wantError)
		})
	}
}
