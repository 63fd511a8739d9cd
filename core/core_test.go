package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtteranceValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{name: "plain text", text: "help me", wantErr: nil},
		{name: "empty", text: "", wantErr: ErrEmptyUtterance},
		{name: "whitespace only", text: "   \t\n", wantErr: ErrEmptyUtterance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUtterance("s1", tt.text)
			err := u.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMergeResponsesPropagatesFallback(t *testing.T) {
	primary := AgentResponse{
		Specialist:  "rescue_agent",
		SummaryText: "stay calm",
		Confidence:  0.9,
	}
	secondary := AgentResponse{
		Contacts:     []ContactRecord{{Kind: ContactEmergencyPhone, Value: "911", Fallback: true}},
		Confidence:   1.0,
		UsedFallback: true,
	}

	merged := MergeResponses(primary, secondary)

	assert.True(t, merged.UsedFallback, "fallback flag must survive merging")
	assert.Equal(t, "rescue_agent", merged.Specialist)
	assert.Equal(t, "stay calm", merged.SummaryText)
	assert.Len(t, merged.Contacts, 1)
	assert.Equal(t, 0.9, merged.Confidence)
}

func TestMergeResponsesTakesMinimumConfidence(t *testing.T) {
	merged := MergeResponses(
		AgentResponse{SummaryText: "a", Confidence: 0.8},
		AgentResponse{Confidence: 0.3},
	)
	assert.Equal(t, 0.3, merged.Confidence)
}

func TestMergeResponsesNeverEmptySummary(t *testing.T) {
	merged := MergeResponses(AgentResponse{Specialist: "x"})
	assert.NotEmpty(t, merged.SummaryText)
	assert.True(t, merged.UsedFallback)
}

func TestMergeResponsesDoesNotMutatePrimary(t *testing.T) {
	primary := AgentResponse{
		SummaryText: "ok",
		Payload:     map[string]any{"hazard": "flood"},
		Contacts:    []ContactRecord{{Kind: ContactPhone, Value: "+15551234567"}},
	}
	merged := MergeResponses(primary, AgentResponse{
		Payload:  map[string]any{"hazard": "fire", "extra": true},
		Contacts: []ContactRecord{{Kind: ContactEmail, Value: "a@b.org"}},
	})

	assert.Equal(t, "flood", merged.Payload["hazard"], "primary payload keys win")
	assert.Equal(t, true, merged.Payload["extra"])
	assert.Len(t, merged.Contacts, 2)
	assert.Len(t, primary.Contacts, 1, "primary must stay untouched")
	assert.Equal(t, "flood", primary.Payload["hazard"])
}

func TestContactKindPrecedence(t *testing.T) {
	assert.Greater(t, ContactEmergencyPhone.Precedence(), ContactPhone.Precedence())
	assert.Greater(t, ContactPhone.Precedence(), ContactEmail.Precedence())
	assert.Greater(t, ContactEmail.Precedence(), ContactAddress.Precedence())
}

func TestConversationContextSnapshotIsIndependent(t *testing.T) {
	cctx := NewConversationContext("s1")
	cctx.Intents = []Intent{{Kind: IntentRescue, Confidence: 0.9}}
	cctx.Contacts = []ContactRecord{{Kind: ContactPhone, Value: "911"}}

	snap := cctx.Snapshot()
	snap.Intents[0].Kind = IntentUnknown
	snap.Contacts[0].Value = "changed"
	snap.PendingSlot = "location"

	assert.Equal(t, IntentRescue, cctx.Intents[0].Kind)
	assert.Equal(t, "911", cctx.Contacts[0].Value)
	assert.Empty(t, cctx.PendingSlot)
}

func TestConversationContextRecordTurnClosesClarification(t *testing.T) {
	cctx := NewConversationContext("s1")
	cctx.OpenClarification("location", "resource_agent")
	require.True(t, cctx.AwaitingSlot("location"))

	cctx.RecordTurn(
		Intent{Kind: IntentResource, Confidence: 0.8},
		AgentResponse{Specialist: "resource_agent", Contacts: []ContactRecord{{Value: "911"}}},
	)

	assert.False(t, cctx.AwaitingSlot("location"))
	assert.Equal(t, "resource_agent", cctx.ActiveSpecialist)
	assert.Len(t, cctx.Contacts, 1)

	last, ok := cctx.LastIntent()
	require.True(t, ok)
	assert.Equal(t, IntentResource, last.Kind)
}

func TestHazardOrGeneral(t *testing.T) {
	assert.Equal(t, HazardGeneral, HazardUnknown.OrGeneral())
	assert.Equal(t, HazardFlood, HazardFlood.OrGeneral())
	assert.False(t, HazardGeneral.Known())
	assert.True(t, HazardTornado.Known())
}
