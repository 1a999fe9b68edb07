// internal/workers/claim/assess-claim-risk/handler_test.go
package assessclaimrisk

import (
	"context"
	"testing"
	"time"

	"jkn-claim-workers/internal/claim"
	"jkn-claim-workers/internal/common/camunda/camundatest"
	"jkn-claim-workers/internal/common/logger"
	"jkn-claim-workers/internal/workers/claim/claimvars"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, claim.NewScorer(claim.DefaultRiskConfig()), logger.NewTestLogger(t))
}

func TestHandler_Execute_Levels(t *testing.T) {
	tests := []struct {
		amount   string
		level    int
		severity string
		color    string
	}{
		{"1000000", 0, "safe", "#22c55e"},
		{"4999999", 0, "safe", "#22c55e"},
		{"5000000", 50, "alert", "#ef4444"},
		{"7500000", 75, "alert", "#ef4444"},
		{"12500000", 100, "alert", "#ef4444"},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{Amount: claimvars.Text(tt.amount)})
			require.NoError(t, err)

			assert.True(t, out.RiskAssessed)
			require.NotNil(t, out.DetectionLevel)
			assert.Equal(t, tt.level, *out.DetectionLevel)
			assert.Equal(t, tt.severity, out.Severity)
			assert.Equal(t, tt.color, out.Color)
		})
	}
}

func TestHandler_Execute_NotScoreable(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.5", "-10"} {
		out, err := createTestHandler(t).Execute(context.Background(), &Input{Amount: claimvars.Text(raw)})
		require.NoError(t, err)
		assert.False(t, out.RiskAssessed, raw)
		assert.Nil(t, out.DetectionLevel, raw)
	}
}

func TestHandler_Handle(t *testing.T) {
	client := &camundatest.JobClient{}

	createTestHandler(t).Handle(client, camundatest.NewJob(7, TaskType, 3, map[string]interface{}{"amount": 7500000}))

	require.Len(t, client.Completed, 1)
	vars := client.CompletedVariables(0)
	assert.Equal(t, true, vars["riskAssessed"])
	assert.Equal(t, float64(75), vars["detectionLevel"])
	assert.InDelta(t, 1.5, vars["ratio"], 1e-9)
}

func TestHandler_Handle_ParseError(t *testing.T) {
	client := &camundatest.JobClient{}

	createTestHandler(t).Handle(client, camundatest.NewJob(8, TaskType, 3, `not json`))

	assert.Empty(t, client.Completed)
	require.Len(t, client.Thrown, 1)
	assert.Equal(t, "PARSE_ERROR", client.Thrown[0].ErrorCode)
}
