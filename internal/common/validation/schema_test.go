package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var personSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name"},
	"properties": map[string]interface{}{
		"name": map[string]interface{}{"type": "string"},
		"age":  map[string]interface{}{"type": "integer"},
	},
}

func TestSchema_Validate(t *testing.T) {
	s := MustCompile(personSchema)

	res, err := s.Validate([]byte(`{"name":"Ada","age":36}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.GetErrorMessages())

	res, err = s.Validate([]byte(`{"age":"old"}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)

	fields := []string{res.Errors[0].Field, res.Errors[1].Field}
	assert.ElementsMatch(t, []string{"configuration", "age"}, fields)
}

func TestSchema_ValidateRejectsMalformedJSON(t *testing.T) {
	_, err := MustCompile(personSchema).Validate([]byte(`{"name":`))
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 12})
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(map[string]interface{}{"type": 12}) })
}

func TestSchema_Source(t *testing.T) {
	assert.Equal(t, "object", MustCompile(personSchema).Source()["type"])
}
