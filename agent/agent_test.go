package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/extract"
	"github.com/clarionhq/clarion/kb"
	"github.com/clarionhq/clarion/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ core.Specialist    = (*RescueAgent)(nil)
	_ core.Specialist    = (*InformationAgent)(nil)
	_ core.Specialist    = (*ResourceAgent)(nil)
	_ core.ContactFinder = (*ResourceAgent)(nil)
)

type stubFinder struct {
	records  []core.ContactRecord
	failures []core.SourceFailure
	err      error
	block    bool // block until the context expires, simulating a slow lookup
}

func (f *stubFinder) FindContacts(ctx context.Context, _ string, _ core.Hazard, _ []string) ([]core.ContactRecord, []core.SourceFailure, error) {
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return f.records, f.failures, f.err
}

type stubVerifier struct {
	v   core.Verification
	err error
}

func (s *stubVerifier) Verify(context.Context, core.Hazard, string) (core.Verification, error) {
	return s.v, s.err
}

type stubSearcher struct {
	hits []core.SearchResult
	err  error
}

func (s *stubSearcher) Search(context.Context, string, int) ([]core.SearchResult, error) {
	return s.hits, s.err
}

type stubFetcher struct {
	pages map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	page, ok := f.pages[url]
	if !ok {
		return "", errors.New("unreachable")
	}
	return page, nil
}

func testReporter(t *testing.T) (*report.Reporter, *report.MemorySink) {
	t.Helper()
	sink := report.NewMemorySink()
	r := report.New(nil, sink)
	t.Cleanup(r.Close)
	return r, sink
}

func rescueTurn(location string) *core.Turn {
	return &core.Turn{
		Utterance: core.NewUtterance("s1", "we are trapped, need rescue"),
		Intent: core.Intent{
			Kind:       core.IntentRescue,
			Confidence: 0.9,
			Slots:      core.Slots{Hazard: core.HazardFlood, Location: location, Urgency: core.UrgencyHigh},
		},
		Context: core.NewConversationContext("s1"),
	}
}

func TestRescueAlwaysIncludesInstructions(t *testing.T) {
	reporter, _ := testReporter(t)
	a := NewRescueAgent(kb.MustNew(), core.DefaultConfig(), nil, nil, reporter, nil)

	resp, err := a.Handle(context.Background(), rescueTurn("Gurdaspur"))
	require.NoError(t, err)

	assert.Contains(t, resp.SummaryText, "higher ground")
	assert.NotEmpty(t, resp.Payload["instructions"])
	assert.Equal(t, "flood", resp.Payload["hazard"])
	assert.GreaterOrEqual(t, resp.Confidence, 0.6)
}

func TestRescueWithoutFinderServesFallbackContacts(t *testing.T) {
	reporter, _ := testReporter(t)
	a := NewRescueAgent(kb.MustNew(), core.DefaultConfig(), nil, nil, reporter, nil)

	resp, err := a.Handle(context.Background(), rescueTurn("Gurdaspur"))
	require.NoError(t, err)

	assert.True(t, resp.UsedFallback)
	require.NotEmpty(t, resp.Contacts)
	values := contactValues(resp.Contacts)
	assert.Contains(t, values, "112", "the punjab region carries India's emergency number")
}

func TestRescueFinderErrorDegradesToFallback(t *testing.T) {
	reporter, _ := testReporter(t)
	finder := &stubFinder{err: errors.New("all sources down")}
	a := NewRescueAgent(kb.MustNew(), core.DefaultConfig(), nil, finder, reporter, nil)

	resp, err := a.Handle(context.Background(), rescueTurn("Miami"))
	require.NoError(t, err)

	assert.True(t, resp.UsedFallback)
	assert.NotEmpty(t, resp.Contacts)
}

func TestRescueSlowFinderHitsEnrichTimeout(t *testing.T) {
	reporter, _ := testReporter(t)
	cfg := core.DefaultConfig()
	cfg.EnrichTimeout = 10 * time.Millisecond

	a := NewRescueAgent(kb.MustNew(), cfg, nil, &stubFinder{block: true}, reporter, nil)

	resp, err := a.Handle(context.Background(), rescueTurn("Houston"))
	require.NoError(t, err)

	assert.True(t, resp.UsedFallback, "a timed-out lookup must not block the rescue answer")
	assert.NotEmpty(t, resp.Contacts)
	assert.Contains(t, resp.SummaryText, "call your local emergency number")
}

func TestRescueLiveContactsAreNotFallback(t *testing.T) {
	reporter, _ := testReporter(t)
	finder := &stubFinder{records: []core.ContactRecord{
		{Kind: core.ContactEmergencyPhone, Value: "+15551234567", Confidence: 0.9},
	}}
	a := NewRescueAgent(kb.MustNew(), core.DefaultConfig(), nil, finder, reporter, nil)

	resp, err := a.Handle(context.Background(), rescueTurn("Miami"))
	require.NoError(t, err)

	assert.False(t, resp.UsedFallback)
	require.Len(t, resp.Contacts, 1)
}

func TestRescueUnconfirmedHazardLowersConfidence(t *testing.T) {
	reporter, _ := testReporter(t)
	verifier := &stubVerifier{v: core.Verification{Known: true, Confirmed: false}}
	a := NewRescueAgent(kb.MustNew(), core.DefaultConfig(), verifier, nil, reporter, nil)

	resp, err := a.Handle(context.Background(), rescueTurn("Miami"))
	require.NoError(t, err)

	assert.Equal(t, unverifiedConfidence, resp.Confidence)
	assert.True(t, resp.UsedFallback, "an unconfirmed hazard is a degraded answer")
	assert.Contains(t, resp.SummaryText, "could not confirm")
}

func TestRescueVerifierErrorDegradesResponse(t *testing.T) {
	reporter, _ := testReporter(t)
	verifier := &stubVerifier{err: errors.New("weather api down")}
	finder := &stubFinder{records: []core.ContactRecord{
		{Kind: core.ContactEmergencyPhone, Value: "+15551234567", Confidence: 0.9},
	}}
	a := NewRescueAgent(kb.MustNew(), core.DefaultConfig(), verifier, finder, reporter, nil)

	resp, err := a.Handle(context.Background(), rescueTurn("Miami"))
	require.NoError(t, err)

	assert.Equal(t, unverifiedConfidence, resp.Confidence)
	assert.True(t, resp.UsedFallback, "a failed verification call still marks the answer")
	assert.NotContains(t, resp.Payload, "hazard_verified")
	assert.Contains(t, resp.SummaryText, "could not confirm")
}

func TestResourceTotalSourceFailureServesKnowledgeBase(t *testing.T) {
	reporter, _ := testReporter(t)
	engine := extract.NewEngine(&stubFetcher{}, func(o *extract.Options) {
		o.RetryBackoff = time.Millisecond
	})
	a := NewResourceAgent(engine, kb.MustNew(), core.DefaultConfig(), nil, reporter, nil)

	turn := &core.Turn{
		Utterance: core.NewUtterance("s1", "emergency contact numbers"),
		Intent: core.Intent{
			Kind:  core.IntentResource,
			Slots: core.Slots{Location: "Gurdaspur", Hazard: core.HazardFlood},
		},
		Context: core.NewConversationContext("s1"),
	}

	resp, err := a.Handle(context.Background(), turn)
	require.NoError(t, err, "total source failure is degradation, not an error")

	assert.True(t, resp.UsedFallback)
	require.NotEmpty(t, resp.Contacts)
	for _, c := range resp.Contacts {
		assert.True(t, c.Fallback)
	}
	assert.Equal(t, "punjab", resp.Payload["region"])
}

func TestResourceExtractsFromDiscoveredSources(t *testing.T) {
	reporter, _ := testReporter(t)
	fetcher := &stubFetcher{pages: map[string]string{
		"https://authority.example/contact": "Emergency hotline: (555) 123-4567\nWrite to help@authority.example",
	}}
	engine := extract.NewEngine(fetcher, func(o *extract.Options) { o.RetryBackoff = time.Millisecond })
	searcher := &stubSearcher{hits: []core.SearchResult{
		{Title: "Contact page", URL: "https://authority.example/contact"},
	}}
	a := NewResourceAgent(engine, kb.MustNew(), core.DefaultConfig(), searcher, reporter, nil)

	records, failures, err := a.FindContacts(context.Background(), "california", core.HazardWildfire, nil)
	require.NoError(t, err)

	assert.Empty(t, failures)
	require.Len(t, records, 2)
	assert.Equal(t, core.ContactEmergencyPhone, records[0].Kind)
	assert.False(t, records[0].Fallback)
}

func TestResourceSearchFailureFallsBackToAuthorityPages(t *testing.T) {
	reporter, _ := testReporter(t)
	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.ready.gov/contacts": "FEMA Helpline: 1-800-621-3362",
	}}
	engine := extract.NewEngine(fetcher, func(o *extract.Options) { o.RetryBackoff = time.Millisecond })
	searcher := &stubSearcher{err: errors.New("search quota exceeded")}
	a := NewResourceAgent(engine, kb.MustNew(), core.DefaultConfig(), searcher, reporter, nil)

	records, failures, err := a.FindContacts(context.Background(), "national", core.HazardGeneral, nil)
	require.NoError(t, err)

	assert.Len(t, failures, 2, "the two unreachable authority pages are reported")
	require.NotEmpty(t, records)
	assert.Equal(t, "+18006213362", records[0].Value)
}

func TestInformationWithoutSearcherServesGenericGuidance(t *testing.T) {
	reporter, _ := testReporter(t)
	a := NewInformationAgent(kb.MustNew(), core.DefaultConfig(), nil, reporter, nil)

	turn := &core.Turn{
		Utterance: core.NewUtterance("s1", "What's the hurricane situation in Miami?"),
		Intent: core.Intent{
			Kind:  core.IntentInformation,
			Slots: core.Slots{Hazard: core.HazardHurricane, Location: "Miami"},
		},
		Context: core.NewConversationContext("s1"),
	}

	resp, err := a.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.True(t, resp.UsedFallback)
	assert.Contains(t, resp.SummaryText, "general hurricane guidance")
	assert.Contains(t, resp.SummaryText, "Miami")
	assert.NotContains(t, resp.SummaryText, "currently", "the fallback must not claim live conditions")
}

func TestInformationSummarizesSearchHits(t *testing.T) {
	reporter, _ := testReporter(t)
	searcher := &stubSearcher{hits: []core.SearchResult{
		{Title: "NHC advisory", URL: "https://nhc.example/adv", Snippet: "Hurricane warning in effect for Miami-Dade"},
	}}
	a := NewInformationAgent(kb.MustNew(), core.DefaultConfig(), searcher, reporter, nil)

	turn := &core.Turn{
		Utterance: core.NewUtterance("s1", "What's the hurricane situation in Miami?"),
		Intent: core.Intent{
			Kind:  core.IntentInformation,
			Slots: core.Slots{Hazard: core.HazardHurricane, Location: "Miami"},
		},
		Context: core.NewConversationContext("s1"),
	}

	resp, err := a.Handle(context.Background(), turn)
	require.NoError(t, err)

	assert.False(t, resp.UsedFallback)
	assert.Contains(t, resp.SummaryText, "Hurricane warning in effect")
	assert.Contains(t, resp.SummaryText, "https://nhc.example/adv")
}

func TestAgentsEmitStartedThenFinished(t *testing.T) {
	reporter, _ := testReporter(t)
	a := NewRescueAgent(kb.MustNew(), core.DefaultConfig(), nil, nil, reporter, nil)

	_, err := a.Handle(context.Background(), rescueTurn("Gurdaspur"))
	require.NoError(t, err)

	events := reporter.Snapshot()
	require.Len(t, events, 2)
	assert.Equal(t, core.StageStarted, events[0].Stage)
	assert.Equal(t, core.StageFinished, events[1].Stage)
	assert.Equal(t, RescueAgentName, events[0].Agent)
}

func contactValues(records []core.ContactRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Value)
	}
	return out
}
