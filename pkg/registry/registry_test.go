package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoring_IsValid(t *testing.T) {
	reg := Scoring()

	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 5)

	a, ok := reg.Find("validate-scoring-pattern")
	require.True(t, ok)
	assert.Equal(t, []string{"INVALID_INPUT"}, a.ErrorCodes)

	_, ok = reg.Find("send-notification")
	assert.False(t, ok)
}

func TestLoadRegistry_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "2.0.0"
activities:
  - id: assign
    taskType: assign-test-result
    errorCodes: [NOT_FOUND]
    retries: 3
`), 0o600))

	reg, err := LoadRegistry(path)

	require.NoError(t, err)
	assert.Equal(t, "2.0.0", reg.Version)
	assert.Equal(t, []string{"assign-test-result"}, reg.TaskTypes())
	assert.Equal(t, 3, reg.Activities[0].Retries)
}

func TestLoadRegistry_RejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"activities":[
		{"id":"a","taskType":"assign-test-result"},
		{"id":"b","taskType":"assign-test-result"}]}`), 0o600))

	_, err := LoadRegistry(path)

	assert.ErrorContains(t, err, "duplicate task type")
}
