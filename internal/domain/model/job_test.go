package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStateValid(t *testing.T) {
	for _, s := range []JobState{JobStateQueued, JobStateInFlight, JobStateSent, JobStateDelivered, JobStateFailed} {
		assert.True(t, s.Valid(), "state %q should be valid", s)
	}
	assert.False(t, JobState("pending").Valid())
	assert.False(t, JobState("").Valid())
}

func TestJobStateTerminal(t *testing.T) {
	assert.True(t, JobStateDelivered.Terminal())
	assert.True(t, JobStateFailed.Terminal())
	assert.False(t, JobStateQueued.Terminal())
	assert.False(t, JobStateInFlight.Terminal())
	assert.False(t, JobStateSent.Terminal())
}

func TestJobStateCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    JobState
		to      JobState
		allowed bool
	}{
		{"queued to in_flight", JobStateQueued, JobStateInFlight, true},
		{"queued to sent skips dispatch", JobStateQueued, JobStateSent, false},
		{"queued to failed skips dispatch", JobStateQueued, JobStateFailed, false},
		{"in_flight to sent", JobStateInFlight, JobStateSent, true},
		{"in_flight to failed", JobStateInFlight, JobStateFailed, true},
		{"in_flight to delivered skips sent", JobStateInFlight, JobStateDelivered, false},
		{"sent refresh", JobStateSent, JobStateSent, true},
		{"sent to delivered", JobStateSent, JobStateDelivered, true},
		{"sent to failed", JobStateSent, JobStateFailed, true},
		{"sent back to queued", JobStateSent, JobStateQueued, false},
		{"delivered is terminal", JobStateDelivered, JobStateFailed, false},
		{"failed is terminal", JobStateFailed, JobStateSent, false},
		{"failed cannot retry", JobStateFailed, JobStateQueued, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestJobStateUnmarshalText(t *testing.T) {
	var s JobState
	require.NoError(t, s.UnmarshalText([]byte(" Sent ")))
	assert.Equal(t, JobStateSent, s)

	require.Error(t, s.UnmarshalText([]byte("bogus")))
	assert.Equal(t, JobStateSent, s, "failed unmarshal must not clobber the value")
}

func TestJobPayloadValidate(t *testing.T) {
	payload := JobPayload{
		XML:      "<Invoice/>",
		Sender:   "9930:sender",
		Receiver: "9930:receiver",
		Profile:  "bis3",
	}
	require.NoError(t, payload.Validate())

	missingXML := payload
	missingXML.XML = "   "
	require.Error(t, missingXML.Validate())

	missingSender := payload
	missingSender.Sender = ""
	require.Error(t, missingSender.Validate())

	missingReceiver := payload
	missingReceiver.Receiver = ""
	require.Error(t, missingReceiver.Validate())
}

func TestDeliveryStateTerminal(t *testing.T) {
	assert.True(t, DeliveryDelivered.Terminal())
	assert.True(t, DeliveryFailed.Terminal())
	assert.False(t, DeliveryPending.Terminal())
	assert.False(t, DeliveryInFlight.Terminal())
}
