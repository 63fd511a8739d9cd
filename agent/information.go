package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/kb"
	"github.com/clarionhq/clarion/logging"
	"github.com/clarionhq/clarion/report"
)

// InformationAgentName identifies the information specialist in activity
// events and responses.
const InformationAgentName = "information_agent"

// maxInfoSources bounds how many search hits feed one situation summary.
const maxInfoSources = 3

// InformationAgent answers situational questions about hazards: current
// conditions, preparedness and general guidance. Live answers come from
// search; without search it serves generic hazard guidance and says so.
type InformationAgent struct {
	BaseAgent
	searcher core.Searcher
	kb       *kb.KnowledgeBase
	cfg      core.Config
}

// NewInformationAgent wires the information specialist. A nil searcher means
// every answer is generic guidance flagged as fallback.
func NewInformationAgent(knowledge *kb.KnowledgeBase, cfg core.Config, searcher core.Searcher, reporter *report.Reporter, logger logging.Logger) *InformationAgent {
	a := &InformationAgent{
		BaseAgent: NewBaseAgent(InformationAgentName, reporter, logger),
		searcher:  searcher,
		kb:        knowledge,
	}
	a.cfg = cfg
	a.SetDescription("Answers questions about hazard conditions, preparedness and safety guidance")
	return a
}

// Handle implements core.Specialist. Live results are summarized with source
// attribution; the generic fallback never fabricates current conditions, it
// only restates standing guidance.
func (a *InformationAgent) Handle(ctx context.Context, turn *core.Turn) (core.AgentResponse, error) {
	hazard := turn.Intent.Slots.Hazard.OrGeneral()
	location := turn.Intent.Slots.Location

	a.Started(fmt.Sprintf("answering %s information request", hazard))

	hits := a.search(ctx, turn.Utterance.Text, hazard, location)
	if len(hits) == 0 {
		resp := a.genericGuidance(hazard, location)
		a.Finished(fmt.Sprintf("served generic %s guidance", hazard))
		return resp, nil
	}

	resp := core.AgentResponse{
		Specialist:  InformationAgentName,
		SummaryText: infoSummary(hazard, location, hits),
		Payload: map[string]any{
			"hazard":   string(hazard),
			"location": location,
			"sources":  hits,
		},
		Confidence: 0.8,
	}
	a.Finished(fmt.Sprintf("summarized %d sources", len(hits)))
	return resp, nil
}

func (a *InformationAgent) search(ctx context.Context, utterance string, hazard core.Hazard, location string) []core.SearchResult {
	if a.searcher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	query := strings.TrimSpace(fmt.Sprintf("%s %s %s", hazard, location, "current situation safety update"))
	hits, err := a.searcher.Search(ctx, query, maxInfoSources)
	if err != nil {
		a.Logger().Warn("information search failed, serving generic guidance", "query", query, "error", err)
		return nil
	}
	var out []core.SearchResult
	for _, h := range hits {
		if h.Snippet != "" || h.Title != "" {
			out = append(out, h)
		}
	}
	return out
}

// genericGuidance is the no-search answer: standing safety guidance for the
// hazard, explicitly flagged as fallback and kept free of any claim about
// current conditions.
func (a *InformationAgent) genericGuidance(hazard core.Hazard, location string) core.AgentResponse {
	steps := a.kb.Instructions(hazard)

	var b strings.Builder
	fmt.Fprintf(&b, "I could not reach live sources, so here is general %s guidance", hazard)
	if location != "" {
		fmt.Fprintf(&b, " (I cannot confirm current conditions in %s)", location)
	}
	b.WriteString(":\n")
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	b.WriteString("For current local conditions, check your regional emergency management agency.")

	return core.AgentResponse{
		Specialist:  InformationAgentName,
		SummaryText: b.String(),
		Payload: map[string]any{
			"hazard":           string(hazard),
			"location":         location,
			"general_guidance": steps,
		},
		Confidence:   0.4,
		UsedFallback: true,
	}
}

// infoSummary stitches search snippets into an attributed digest.
func infoSummary(hazard core.Hazard, location string, hits []core.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is what current sources report about %s", hazard)
	if location != "" {
		fmt.Fprintf(&b, " in %s", location)
	}
	b.WriteString(":\n")
	for _, h := range hits {
		line := h.Snippet
		if line == "" {
			line = h.Title
		}
		fmt.Fprintf(&b, "- %s (%s)\n", line, h.URL)
	}
	b.WriteString("Verify critical details with official channels before acting on them.")
	return b.String()
}
