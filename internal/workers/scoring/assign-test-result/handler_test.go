// internal/workers/scoring/assign-test-result/handler_test.go
package assigntestresult

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/scoring/assignment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

type fakeAssigner struct {
	got    assignment.Request
	result *models.UserTestResult
	err    error
}

func (f *fakeAssigner) Assign(_ context.Context, req assignment.Request) (*models.UserTestResult, error) {
	f.got = req
	return f.result, f.err
}

func createTestInput(t *testing.T) *Input {
	var input Input
	require.NoError(t, json.Unmarshal([]byte(`{
		"testAttemptId": "attempt-1",
		"testId": "test-riasec",
		"userId": "user-7",
		"scores": {"R": 45, "I": 42, "E": 42, "A": 12}
	}`), &input))
	return &input
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	resultID := "res-rie"
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	assigner := &fakeAssigner{result: &models.UserTestResult{
		ID:                  "utr-1",
		ResultID:            &resultID,
		PatternID:           "pat-1",
		GeneratedResultCode: "RIE",
		Title:               "Realistic Investigative Enterprising",
		FinalScore:          129,
		GenerationMethod:    models.GenerationFlagBased,
		CreatedAt:           created,
	}}
	handler := NewHandler(LoadConfig(), assigner, &testLogger{t: t})

	output, err := handler.Execute(context.Background(), createTestInput(t))

	require.NoError(t, err)
	assert.Equal(t, "utr-1", output.UserTestResultID)
	assert.Equal(t, "RIE", output.GeneratedResultCode)
	assert.Equal(t, 129.0, output.FinalScore)
	assert.Equal(t, models.GenerationFlagBased, output.GenerationMethod)
	assert.Equal(t, "2026-03-01T09:30:00Z", output.CreatedAt)
	require.NotNil(t, output.ResultID)
	assert.Equal(t, "res-rie", *output.ResultID)
}

func TestHandler_Execute_PassesScoresInOrder(t *testing.T) {
	assigner := &fakeAssigner{result: &models.UserTestResult{ID: "utr-1"}}
	handler := NewHandler(LoadConfig(), assigner, &testLogger{t: t})

	_, err := handler.Execute(context.Background(), createTestInput(t))

	require.NoError(t, err)
	assert.Equal(t, "attempt-1", assigner.got.TestAttemptID)
	assert.Equal(t, "test-riasec", assigner.got.TestID)
	assert.Equal(t, []string{"R", "I", "E", "A"}, assigner.got.Scores.Codes())
}

func TestHandler_Execute_PropagatesError(t *testing.T) {
	assigner := &fakeAssigner{err: errors.NewPatternInactiveError("pat-1")}
	handler := NewHandler(LoadConfig(), assigner, &testLogger{t: t})

	output, err := handler.Execute(context.Background(), createTestInput(t))

	assert.Nil(t, output)
	assert.True(t, errors.HasCode(err, errors.ErrCodePatternInactive))
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 30*time.Second, LoadConfig().Timeout)
}
