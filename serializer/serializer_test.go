package serializer_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xpingtest "github.com/xping/xping-go/internal/testing"
	"github.com/xping/xping-go/serializer"
	"github.com/xping/xping-go/telemetry"
)

func TestJSON_Serialize(t *testing.T) {
	ser := serializer.NewJSON()

	session := xpingtest.NewSession(t,
		xpingtest.NewExecution(t, "TotalsMatch", telemetry.OutcomeFailed))
	session.Executions[0].ErrorMessage = "expected 3, got 4"

	payload, err := ser.Serialize(session)
	require.NoError(t, err)
	require.True(t, json.Valid(payload))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, session.SessionID, decoded["session_id"])

	executions, ok := decoded["executions"].([]any)
	require.True(t, ok)
	require.Len(t, executions, 1)
	first := executions[0].(map[string]any)
	assert.Equal(t, "failed", first["outcome"])
	assert.Equal(t, "expected 3, got 4", first["error_message"])
}

func TestJSON_SerializeNilSession(t *testing.T) {
	_, err := serializer.NewJSON().Serialize(nil)
	assert.Error(t, err)
}

func TestJSON_RoundTripPreservesTimes(t *testing.T) {
	ser := serializer.NewJSON()
	session := xpingtest.NewSession(t, xpingtest.NewExecution(t, "Case", telemetry.OutcomePassed))

	payload, err := ser.Serialize(session)
	require.NoError(t, err)

	var back telemetry.TestSession
	require.NoError(t, json.Unmarshal(payload, &back))
	assert.True(t, session.StartedAt.Equal(back.StartedAt))
	require.Len(t, back.Executions, 1)
	assert.WithinDuration(t, session.Executions[0].FinishedAt, back.Executions[0].FinishedAt, time.Microsecond)
}

func TestJSON_ContentType(t *testing.T) {
	assert.Equal(t, "application/json", serializer.NewJSON().ContentType())
}
