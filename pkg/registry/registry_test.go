package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `{
  "version": "1.0.0",
  "activities": [
    {
      "id": "match-resume",
      "taskType": "match-resume",
      "inputSchema": {"type": "object", "required": ["fileName"]},
      "errorCodes": ["RESUME_MISSING"]
    },
    {"id": "noop", "taskType": "noop"}
  ]
}`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, reg.Activities, 2)

	a, ok := reg.Find("match-resume")
	require.True(t, ok)
	assert.Equal(t, []string{"RESUME_MISSING"}, a.ErrorCodes)

	schema, err := a.InputSchemaJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","required":["fileName"]}`, string(schema))

	noop, ok := reg.Find("noop")
	require.True(t, ok)
	_, err = noop.InputSchemaJSON()
	assert.Error(t, err)

	_, ok = reg.Find("missing")
	assert.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       `{`,
		"no task type":   `{"activities":[{"id":"a"}]}`,
		"duplicate type": `{"activities":[{"id":"a","taskType":"x"},{"id":"b","taskType":"x"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", reg.Version)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
