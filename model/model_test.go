package model

import (
	"context"
	"testing"

	"github.com/clarionhq/clarion/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.Backend = (*MockBackend)(nil)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare object", in: `{"a":1}`, want: `{"a":1}`},
		{name: "prose around object", in: "Sure! Here you go:\n{\"a\":1}\nHope that helps.", want: `{"a":1}`},
		{name: "no object", in: "I cannot help with that.", want: ""},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.in))
		})
	}
}

func TestParseIntent(t *testing.T) {
	raw := `{"intent": "rescue", "confidence": 0.92, "location": "Gurdaspur", "hazard": "flood", "urgency": "high"}`

	intent, err := ParseIntent(raw)
	require.NoError(t, err)

	assert.Equal(t, core.IntentRescue, intent.Kind)
	assert.InDelta(t, 0.92, intent.Confidence, 1e-9)
	assert.Equal(t, "Gurdaspur", intent.Slots.Location)
	assert.Equal(t, core.HazardFlood, intent.Slots.Hazard)
	assert.Equal(t, core.UrgencyHigh, intent.Slots.Urgency)
}

func TestParseIntentNormalizesPercentConfidence(t *testing.T) {
	intent, err := ParseIntent(`{"intent": "information", "confidence": 85, "location": null, "hazard": "hurricane", "urgency": "low"}`)
	require.NoError(t, err)

	assert.Equal(t, core.IntentInformation, intent.Kind)
	assert.InDelta(t, 0.85, intent.Confidence, 1e-9)
	assert.Empty(t, intent.Slots.Location)
}

func TestParseIntentUnknownLabel(t *testing.T) {
	intent, err := ParseIntent(`{"intent": "chitchat", "confidence": 0.9}`)
	require.NoError(t, err)
	assert.Equal(t, core.IntentUnknown, intent.Kind)
}

func TestParseIntentNoJSON(t *testing.T) {
	_, err := ParseIntent("the model refused to answer")
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
}

func TestParseCandidates(t *testing.T) {
	raw := `Here are the results: {"contacts": [
		{"value": "+911124363260", "kind": "emergency_phone", "confidence": 90},
		{"value": "4821734", "kind": "case_id", "confidence": 0.9},
		{"value": "ops@relief.org", "kind": "email", "confidence": 0.8}
	]}`

	out, err := ParseCandidates(raw)
	require.NoError(t, err)

	require.Len(t, out, 2, "unrecognized kinds are dropped")
	assert.Equal(t, core.ContactEmergencyPhone, out[0].Kind)
	assert.InDelta(t, 0.9, out[0].Confidence, 1e-9)
	assert.Equal(t, core.ContactEmail, out[1].Kind)
}

func TestMockBackendCannedIntents(t *testing.T) {
	m := NewMockBackend()
	m.AddIntent("flood in town", core.Intent{Kind: core.IntentRescue, Confidence: 0.9})

	intent, err := m.Classify(context.Background(), "flood in town")
	require.NoError(t, err)
	assert.Equal(t, core.IntentRescue, intent.Kind)

	unknown, err := m.Classify(context.Background(), "anything else")
	require.NoError(t, err)
	assert.Equal(t, core.IntentUnknown, unknown.Kind)
	assert.Equal(t, 2, m.Calls)
}
