package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/kb"
	"github.com/clarionhq/clarion/logging"
	"github.com/clarionhq/clarion/report"
)

// RescueAgentName identifies the rescue specialist in activity events and
// responses.
const RescueAgentName = "rescue_agent"

// unverifiedConfidence caps the response confidence when official data could
// not confirm the reported hazard.
const unverifiedConfidence = 0.5

// RescueAgent handles active-distress requests: immediate safety instructions
// for the reported hazard, optional verification against official data, and
// emergency contact enrichment through the resource specialist.
type RescueAgent struct {
	BaseAgent
	kb       *kb.KnowledgeBase
	verifier core.Verifier
	finder   core.ContactFinder
	cfg      core.Config
}

// NewRescueAgent wires the rescue specialist. Verifier and finder are both
// optional; a nil finder skips contact enrichment, a nil verifier skips the
// hazard check.
func NewRescueAgent(knowledge *kb.KnowledgeBase, cfg core.Config, verifier core.Verifier, finder core.ContactFinder, reporter *report.Reporter, logger logging.Logger) *RescueAgent {
	a := &RescueAgent{
		BaseAgent: NewBaseAgent(RescueAgentName, reporter, logger),
		kb:        knowledge,
		verifier:  verifier,
		finder:    finder,
		cfg:       cfg,
	}
	a.SetDescription("Provides immediate safety instructions and emergency contacts for people in active danger")
	return a
}

// Handle implements core.Specialist. The answer always includes safety
// instructions; verification and contact enrichment only ever add to it,
// lower its confidence or mark it fallback-derived, never block it.
func (a *RescueAgent) Handle(ctx context.Context, turn *core.Turn) (core.AgentResponse, error) {
	hazard := turn.Intent.Slots.Hazard.OrGeneral()
	location := turn.Intent.Slots.Location

	a.Started(fmt.Sprintf("handling %s rescue request", hazard))

	instructions := a.kb.Instructions(hazard)
	confidence := turn.Intent.Confidence
	if confidence < 0.6 {
		confidence = 0.6 // someone asked for rescue help; answer with conviction
	}

	verdict := a.verifyHazard(ctx, turn.Intent.Slots.Hazard, location)
	unverified := verdict == verifyDenied || verdict == verifyFailed
	if unverified {
		confidence = unverifiedConfidence
	}

	primary := core.AgentResponse{
		Specialist:  RescueAgentName,
		SummaryText: rescueSummary(hazard, location, instructions, unverified),
		Payload: map[string]any{
			"hazard":       string(hazard),
			"location":     location,
			"instructions": instructions,
			"urgency":      string(urgencyOrHigh(turn.Intent.Slots.Urgency)),
		},
		Confidence:   confidence,
		UsedFallback: unverified,
	}
	switch verdict {
	case verifyConfirmed:
		primary.Payload["hazard_verified"] = true
	case verifyDenied:
		primary.Payload["hazard_verified"] = false
	}

	resp := core.MergeResponses(primary, a.enrichContacts(ctx, location, hazard))

	a.Finished(fmt.Sprintf("delivered %s guidance with %d contacts", hazard, len(resp.Contacts)))
	return resp, nil
}

// verification is the outcome of the official-data check. Skipped means no
// check applied (missing verifier, location or concrete hazard, or data that
// had no opinion). Denied and failed both downgrade the answer: one is a
// check that contradicted the report, the other a check that never completed.
type verification int

const (
	verifySkipped verification = iota
	verifyConfirmed
	verifyDenied
	verifyFailed
)

// verifyHazard checks the reported hazard against official data.
func (a *RescueAgent) verifyHazard(ctx context.Context, hazard core.Hazard, location string) verification {
	if a.verifier == nil || location == "" || !hazard.Known() {
		return verifySkipped
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.CallTimeout)
	defer cancel()

	v, err := a.verifier.Verify(ctx, hazard, location)
	if err != nil {
		a.Logger().Warn("hazard verification failed", "hazard", hazard, "location", location, "error", err)
		return verifyFailed
	}
	if !v.Known {
		return verifySkipped
	}
	if v.Confirmed {
		return verifyConfirmed
	}
	return verifyDenied
}

// enrichContacts asks the resource specialist for contacts under a tight
// deadline. Any failure or timeout substitutes knowledge-base contacts so the
// rescue answer never ships without a number to call.
func (a *RescueAgent) enrichContacts(ctx context.Context, location string, hazard core.Hazard) core.AgentResponse {
	region := a.kb.ResolveRegion(location)
	fallback := core.AgentResponse{
		Specialist:   RescueAgentName,
		Contacts:     a.kb.Contacts(region, hazard),
		Confidence:   1.0, // enrichment never lowers the aggregate on its own
		UsedFallback: true,
	}
	if a.finder == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.EnrichTimeout)
	defer cancel()

	records, _, err := a.finder.FindContacts(ctx, region, hazard, nil)
	if err != nil || len(records) == 0 {
		if err != nil && !errors.Is(err, context.Canceled) {
			a.Logger().Warn("contact enrichment failed, serving fallback contacts", "region", region, "error", err)
		}
		return fallback
	}

	enriched := core.AgentResponse{Specialist: RescueAgentName, Contacts: records, Confidence: 1.0}
	for _, r := range records {
		if r.Fallback {
			enriched.UsedFallback = true
			break
		}
	}
	return enriched
}

// rescueSummary renders the urgent guidance text. It leads with the single
// most important action and keeps the full step list readable.
func rescueSummary(hazard core.Hazard, location string, instructions []string, unverified bool) string {
	var b strings.Builder
	b.WriteString("If you are in immediate danger, call your local emergency number now.")
	if location != "" {
		fmt.Fprintf(&b, " Reported location: %s.", location)
	}
	if len(instructions) > 0 {
		fmt.Fprintf(&b, "\n\nSafety steps for %s:\n", hazard)
		for i, step := range instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	if unverified {
		b.WriteString("\nNote: official sources could not confirm this hazard at your location; follow the steps above as a precaution.")
	}
	return strings.TrimRight(b.String(), "\n")
}

func urgencyOrHigh(u core.Urgency) core.Urgency {
	if u == "" {
		return core.UrgencyHigh
	}
	return u
}
