// internal/workers/scoring/resolve-scoring-pattern/handler_test.go
package resolvescoringpattern

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/patterns"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const (
	topThree = `{"flagCount":3,"orderDirection":"high-to-low","priorityRules":false}`
	ranges   = `{"filter":"custom","ranges":[{"min":0,"max":50,"label":"Low"},{"min":51,"max":100,"label":"High"}]}`
)

func newTestHandler(t *testing.T) (*Handler, *patterns.MemoryStore) {
	store := patterns.NewMemoryStore()
	log := logger.NewTestLogger(t)
	return NewHandler(LoadConfig(), store, resolver.NewEngine(log), log), store
}

func seedPattern(t *testing.T, store *patterns.MemoryStore, id string, patternType models.PatternType, config string, active bool) {
	t.Helper()
	category, _ := patternType.Category()
	_, err := store.Create(context.Background(), &models.ScoringPattern{
		ID:            id,
		Name:          "pattern " + id,
		Category:      category,
		Type:          patternType,
		Configuration: json.RawMessage(config),
		IsActive:      active,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	})
	require.NoError(t, err)
}

func scoresOf(t *testing.T, doc string) models.ComponentScores {
	t.Helper()
	var s models.ComponentScores
	require.NoError(t, json.Unmarshal([]byte(doc), &s))
	return s
}

func ptr(f float64) *float64 { return &f }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_StoredFlagPattern(t *testing.T) {
	handler, store := newTestHandler(t)
	seedPattern(t, store, "pat-flag", models.TypeCustomFlagPattern, topThree, true)

	output, err := handler.Execute(context.Background(), &Input{
		PatternID: "pat-flag",
		Scores:    scoresOf(t, `{"R":45,"I":42,"A":12,"E":42}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "RIE", output.ResultCode)
	assert.Equal(t, 129.0, output.FinalScore)
	assert.True(t, output.PatternActive)
	assert.Len(t, output.Outcome.Flags, 3)
}

func TestHandler_Execute_PreviewsInactivePattern(t *testing.T) {
	handler, store := newTestHandler(t)
	seedPattern(t, store, "pat-off", models.TypeCustomRangePattern, ranges, false)

	output, err := handler.Execute(context.Background(), &Input{PatternID: "pat-off", AggregateScore: ptr(72)})

	require.NoError(t, err)
	assert.Equal(t, "High", output.ResultCode)
	assert.Equal(t, 72.0, output.FinalScore)
	assert.False(t, output.PatternActive)
}

func TestHandler_Execute_DoesNotCountUsage(t *testing.T) {
	handler, store := newTestHandler(t)
	seedPattern(t, store, "pat-flag", models.TypeCustomFlagPattern, topThree, true)

	_, err := handler.Execute(context.Background(), &Input{PatternID: "pat-flag", Scores: scoresOf(t, `{"R":1}`)})
	require.NoError(t, err)

	stored, err := store.GetByID(context.Background(), "pat-flag")
	require.NoError(t, err)
	assert.Zero(t, stored.UsageCount)
	assert.Nil(t, stored.LastUsedAt)
}

func TestHandler_Execute_InlinePattern(t *testing.T) {
	handler, _ := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Type:           models.TypeCustomRangePattern,
		Configuration:  json.RawMessage(ranges),
		AggregateScore: ptr(12),
	})

	require.NoError(t, err)
	assert.Equal(t, "Low", output.ResultCode)
	assert.Equal(t, "custom", output.Outcome.Filter)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input *Input
		code  errors.ErrorCode
	}{
		{
			name:  "nothing to resolve",
			input: &Input{Scores: models.ComponentScores{{Code: "R", Score: 1}}},
			code:  errors.ErrCodeInvalidInput,
		},
		{
			name:  "unknown pattern",
			input: &Input{PatternID: "missing"},
			code:  errors.ErrCodeNotFound,
		},
		{
			name:  "unknown inline type",
			input: &Input{Type: "preset-median", Configuration: json.RawMessage(topThree)},
			code:  errors.ErrCodeInvalidConfiguration,
		},
		{
			name:  "invalid inline configuration",
			input: &Input{Type: models.TypeCustomFlagPattern, Configuration: json.RawMessage(`{"flagCount":0}`)},
			code:  errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "score outside every range",
			input: &Input{
				Type:           models.TypeCustomRangePattern,
				Configuration:  json.RawMessage(ranges),
				AggregateScore: ptr(140),
			},
			code: errors.ErrCodeUnresolvableScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestHandler(t)

			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}
