// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	acr "jkn-claim-workers/internal/workers/claim/assess-claim-risk"
	ccr "jkn-claim-workers/internal/workers/claim/create-claim-record"
	ecs "jkn-claim-workers/internal/workers/claim/evaluate-claim-submission"
	scn "jkn-claim-workers/internal/workers/claim/send-claim-notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRegistry_ShippedFileCoversWorkers(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	for _, taskType := range []string{ecs.TaskType, acr.TaskType, ccr.TaskType, scn.TaskType} {
		a, ok := reg.Find(taskType)
		require.True(t, ok, "missing %s", taskType)
		assert.NotEmpty(t, a.OutputVariables)
		assert.Contains(t, a.ErrorCodes, "PARSE_ERROR")
	}

	record, _ := reg.Find(ccr.TaskType)
	assert.Contains(t, record.ErrorCodes, "DUPLICATE_CLAIM")
	assert.Len(t, reg.Activities, 4)
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{"empty", ActivityRegistry{}, ""},
		{"missing task type", ActivityRegistry{Activities: []Activity{{ID: "a"}}}, "has no taskType"},
		{"duplicate", ActivityRegistry{Activities: []Activity{{ID: "a", TaskType: "x"}, {ID: "b", TaskType: "x"}}}, "duplicate taskType"},
		{"bad timeout", ActivityRegistry{Activities: []Activity{{ID: "a", TaskType: "x", Timeout: "soon"}}}, "invalid timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse registry")

	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1","activities":[{"id":"a","taskType":"Bad Type","errorCodes":["oops"]}]}`), 0o600))
	_, err = LoadRegistry(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match schema")
}
