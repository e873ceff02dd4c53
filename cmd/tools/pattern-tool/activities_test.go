package main

import (
	"encoding/json"
	"testing"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/pkg/registry"

	atr "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/assign-test-result"
	msp "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/manage-scoring-pattern"
	rra "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/record-result-access"
	rsp "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/resolve-scoring-pattern"
	vsp "github.com/DreamdeskdevOps/psytest-backend-sub002/internal/workers/scoring/validate-scoring-pattern"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivities_MatchWorkerTaskTypes(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{atr.TaskType, rsp.TaskType, vsp.TaskType, msp.TaskType, rra.TaskType},
		registry.Scoring().TaskTypes())
}

func TestActivities_SingleTask(t *testing.T) {
	out, err := run(t, "", "activities", "--task", rra.TaskType)
	require.NoError(t, err)

	var a registry.Activity
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "record-result-access", a.TaskType)
	assert.Contains(t, a.ErrorCodes, "NOT_FOUND")

	_, err = run(t, "", "activities", "--task", "email-send")
	assert.Error(t, err)
}
