package session

import (
	"testing"

	"github.com/clarionhq/clarion/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ core.ContextStore = (*InMemoryStore)(nil)

func TestInMemoryStoreLazyCreate(t *testing.T) {
	s := NewInMemoryStore()

	cc, err := s.Get("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", cc.SessionID)
	assert.Empty(t, cc.Intents)
}

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := NewInMemoryStore()

	cc, err := s.Get("s1")
	require.NoError(t, err)
	cc.RecordTurn(core.Intent{Kind: core.IntentRescue, Confidence: 0.9}, core.AgentResponse{Specialist: "rescue_agent"})
	require.NoError(t, s.Save(cc))

	got, err := s.Get("s1")
	require.NoError(t, err)
	require.Len(t, got.Intents, 1)
	assert.Equal(t, core.IntentRescue, got.Intents[0].Kind)
}

func TestInMemoryStoreReturnsCopies(t *testing.T) {
	s := NewInMemoryStore()

	cc, err := s.Get("s1")
	require.NoError(t, err)
	cc.Intents = append(cc.Intents, core.Intent{Kind: core.IntentResource})

	fresh, err := s.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, fresh.Intents, "unsaved mutations must not leak into the store")
}

func TestInMemoryStoreDelete(t *testing.T) {
	s := NewInMemoryStore()

	cc, _ := s.Get("s1")
	cc.PendingSlot = "location"
	require.NoError(t, s.Save(cc))
	require.NoError(t, s.Delete("s1"))

	got, err := s.Get("s1")
	require.NoError(t, err)
	assert.Empty(t, got.PendingSlot, "delete must reset the session")
}
