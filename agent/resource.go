package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/extract"
	"github.com/clarionhq/clarion/kb"
	"github.com/clarionhq/clarion/logging"
	"github.com/clarionhq/clarion/report"
)

// ResourceAgentName identifies the resource specialist in activity events and
// responses.
const ResourceAgentName = "resource_agent"

// maxDiscoveredSources bounds how many search hits become extraction targets.
const maxDiscoveredSources = 5

// authorityURLs are the fixed official sources consulted when search is
// unavailable or returns nothing usable.
var authorityURLs = []string{
	"https://ndrf.gov.in/contact-us",
	"https://www.nhc.noaa.gov/contact.shtml",
	"https://www.ready.gov/contacts",
}

// ResourceAgent discovers and extracts emergency contact information from
// official sources, falling back to the static knowledge base when every live
// source fails. It doubles as the contact lookup provider for the rescue
// specialist.
type ResourceAgent struct {
	BaseAgent
	searcher core.Searcher
	engine   *extract.Engine
	kb       *kb.KnowledgeBase
	cfg      core.Config
}

// NewResourceAgent wires the resource specialist. The searcher may be nil, in
// which case contact discovery goes straight to the fixed authority sources.
func NewResourceAgent(engine *extract.Engine, knowledge *kb.KnowledgeBase, cfg core.Config, searcher core.Searcher, reporter *report.Reporter, logger logging.Logger) *ResourceAgent {
	a := &ResourceAgent{
		BaseAgent: NewBaseAgent(ResourceAgentName, reporter, logger),
		searcher:  searcher,
		engine:    engine,
		kb:        knowledge,
		cfg:       cfg,
	}
	a.SetDescription("Finds emergency contact numbers, emails and addresses from official sources")
	return a
}

// Handle implements core.Specialist. A resource request is answered with the
// merged contact list for the resolved region and hazard; total source failure
// degrades to knowledge-base contacts rather than an error.
func (a *ResourceAgent) Handle(ctx context.Context, turn *core.Turn) (core.AgentResponse, error) {
	hazard := turn.Intent.Slots.Hazard.OrGeneral()
	region := a.kb.ResolveRegion(turn.Intent.Slots.Location)

	a.Started(fmt.Sprintf("looking up %s contacts for %s", hazard, region))

	records, failures, err := a.FindContacts(ctx, region, hazard, nil)
	if err != nil {
		a.Failed(fmt.Sprintf("contact lookup failed: %v", err))
		return core.AgentResponse{}, err
	}

	usedFallback := len(records) == 0
	for _, r := range records {
		if r.Fallback {
			usedFallback = true
			break
		}
	}

	resp := core.AgentResponse{
		Specialist:  ResourceAgentName,
		SummaryText: summaryOr(contactSummary(region, hazard, records), "I could not reach any contact source right now. For immediate help call your local emergency number."),
		Payload: map[string]any{
			"region":   region,
			"hazard":   string(hazard),
			"contacts": records,
		},
		Contacts:     records,
		Confidence:   contactConfidence(records),
		UsedFallback: usedFallback,
	}
	if len(failures) > 0 {
		resp.Payload["source_failures"] = failures
	}

	a.Finished(fmt.Sprintf("returned %d contacts (%d sources failed)", len(records), len(failures)))
	return resp, nil
}

// FindContacts implements core.ContactFinder. When urls is empty the agent
// discovers sources itself (search first, fixed authority pages otherwise).
// The error is non-nil only for unrecoverable setup problems; source failures
// and empty results degrade to knowledge-base contacts.
func (a *ResourceAgent) FindContacts(ctx context.Context, region string, hazard core.Hazard, urls []string) ([]core.ContactRecord, []core.SourceFailure, error) {
	if len(urls) == 0 {
		urls = a.discoverSources(ctx, region, hazard)
	}

	result, err := a.engine.Run(ctx, urls)
	if err != nil {
		a.Logger().Warn("extraction engine unavailable, serving fallback contacts", "error", err)
		return a.kb.Contacts(region, hazard), nil, nil
	}

	if len(result.Records) == 0 {
		a.Logger().Info("no live contacts extracted, serving fallback contacts",
			"region", region, "hazard", hazard, "failed_sources", len(result.Failures))
		return a.kb.Contacts(region, hazard), result.Failures, nil
	}
	return result.Records, result.Failures, nil
}

// discoverSources picks extraction targets. Search failure is logged and
// degrades to the authority list; it never aborts the lookup.
func (a *ResourceAgent) discoverSources(ctx context.Context, region string, hazard core.Hazard) []string {
	if a.searcher == nil {
		return authorityURLs
	}
	query := fmt.Sprintf("%s emergency contact numbers %s official", hazard, region)
	hits, err := a.searcher.Search(ctx, query, maxDiscoveredSources)
	if err != nil || len(hits) == 0 {
		a.Logger().Warn("source discovery failed, using authority pages", "query", query, "error", err)
		return authorityURLs
	}
	urls := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.URL != "" {
			urls = append(urls, h.URL)
		}
	}
	if len(urls) == 0 {
		return authorityURLs
	}
	return urls
}

// contactSummary renders a short human-readable contact listing.
func contactSummary(region string, hazard core.Hazard, records []core.ContactRecord) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Emergency contacts for %s (%s):\n", region, hazard)
	for _, r := range records {
		label := r.Label
		if label == "" {
			label = string(r.Kind)
		}
		fmt.Fprintf(&b, "- %s: %s", label, r.Value)
		if r.Fallback {
			b.WriteString(" (from local directory)")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// contactConfidence reports the weakest confidence across records, the
// honest bound on the set as a whole.
func contactConfidence(records []core.ContactRecord) float64 {
	if len(records) == 0 {
		return 0.2
	}
	min := records[0].Confidence
	for _, r := range records[1:] {
		if r.Confidence < min {
			min = r.Confidence
		}
	}
	return min
}
