package clarion

import (
	"context"
	"errors"
	"testing"

	"github.com/clarionhq/clarion/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadFetcher simulates total network loss.
type deadFetcher struct{}

func (deadFetcher) Fetch(context.Context, string) (string, error) {
	return "", errors.New("network unreachable")
}

func newOfflineClarion(t *testing.T) *Clarion {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.EnrichTimeout = cfg.CallTimeout // plenty for in-process stubs

	c, err := New(func(o *Options) {
		o.Config = cfg
		o.Fetcher = deadFetcher{}
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestFullFallbackRescueTurn(t *testing.T) {
	c := newOfflineClarion(t)

	resp, err := c.Respond(context.Background(), "s1",
		"We are trapped in flood water in Gurdaspur, need rescue urgently")
	require.NoError(t, err)

	assert.Equal(t, "rescue_agent", resp.Specialist)
	assert.True(t, resp.UsedFallback, "with every collaborator down the answer must say it used fallback data")
	assert.Contains(t, resp.SummaryText, "higher ground")

	require.NotEmpty(t, resp.Contacts, "the knowledge base must still supply numbers to call")
	var sawIndiaEmergency bool
	for _, contact := range resp.Contacts {
		assert.True(t, contact.Fallback)
		if contact.Value == "112" {
			sawIndiaEmergency = true
		}
	}
	assert.True(t, sawIndiaEmergency)
}

func TestFullFallbackResourceTurn(t *testing.T) {
	c := newOfflineClarion(t)

	resp, err := c.Respond(context.Background(), "s1",
		"I need emergency contact numbers for wildfire help in California")
	require.NoError(t, err)

	assert.Equal(t, "resource_agent", resp.Specialist)
	assert.True(t, resp.UsedFallback)
	assert.Equal(t, "california", resp.Payload["region"])
	assert.NotEmpty(t, resp.Contacts)
}

func TestInformationTurnWithoutSearch(t *testing.T) {
	c := newOfflineClarion(t)

	resp, err := c.Respond(context.Background(), "s1", "What's the hurricane situation in Miami?")
	require.NoError(t, err)

	assert.Equal(t, "information_agent", resp.Specialist)
	assert.True(t, resp.UsedFallback)
	assert.NotEmpty(t, resp.SummaryText)
}

func TestEmptyUtteranceIsRejected(t *testing.T) {
	c := newOfflineClarion(t)

	_, err := c.Respond(context.Background(), "s1", "")
	assert.ErrorIs(t, err, core.ErrEmptyUtterance)
}

func TestActivityStreamCoversTheTurn(t *testing.T) {
	c := newOfflineClarion(t)

	_, err := c.Respond(context.Background(), "s1",
		"We are trapped in flood water in Gurdaspur, need rescue urgently")
	require.NoError(t, err)

	events := c.Activity()
	require.NotEmpty(t, events)

	// Per-agent causality: a completion never precedes its start.
	started := map[string]bool{}
	agents := map[string]bool{}
	for _, ev := range events {
		agents[ev.Agent] = true
		switch ev.Stage {
		case core.StageStarted:
			started[ev.Agent] = true
		case core.StageFinished, core.StageFailed:
			assert.True(t, started[ev.Agent], "agent %s completed before starting", ev.Agent)
		}
	}
	assert.True(t, agents["orchestrator"])
	assert.True(t, agents["rescue_agent"])
}

func TestClarificationAcrossTurns(t *testing.T) {
	c := newOfflineClarion(t)
	ctx := context.Background()

	first, err := c.Respond(ctx, "s1", "I need emergency contact numbers")
	require.NoError(t, err)
	assert.Equal(t, "orchestrator", first.Specialist)

	second, err := c.Respond(ctx, "s1", "Houston")
	require.NoError(t, err)
	assert.Equal(t, "resource_agent", second.Specialist)
	assert.Equal(t, "texas", second.Payload["region"])
}
