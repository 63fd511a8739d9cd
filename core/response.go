package core

// AgentResponse is the structured result of exactly one specialist invocation.
// The orchestrator may merge several responses into a new aggregate value but
// never mutates an individual response in place.
type AgentResponse struct {
	Specialist   string         `json:"specialist"`
	SummaryText  string         `json:"summary_text"`
	Payload      map[string]any `json:"payload,omitempty"`
	Contacts     []ContactRecord `json:"contacts,omitempty"`
	Confidence   float64        `json:"confidence"`
	UsedFallback bool           `json:"used_fallback"`
}

// MergeResponses combines a primary specialist response with secondary
// enrichments into a fresh aggregate. The trust-transparency contract:
// UsedFallback on the aggregate is the OR of every contributing response and
// is never silently dropped. SummaryText is guaranteed non-empty.
func MergeResponses(primary AgentResponse, secondary ...AgentResponse) AgentResponse {
	merged := AgentResponse{
		Specialist:   primary.Specialist,
		SummaryText:  primary.SummaryText,
		Confidence:   primary.Confidence,
		UsedFallback: primary.UsedFallback,
		Payload:      map[string]any{},
	}
	for k, v := range primary.Payload {
		merged.Payload[k] = v
	}
	merged.Contacts = append(merged.Contacts, primary.Contacts...)

	for _, s := range secondary {
		merged.UsedFallback = merged.UsedFallback || s.UsedFallback
		merged.Contacts = append(merged.Contacts, s.Contacts...)
		if s.Confidence < merged.Confidence {
			merged.Confidence = s.Confidence
		}
		for k, v := range s.Payload {
			if _, taken := merged.Payload[k]; !taken {
				merged.Payload[k] = v
			}
		}
	}

	if merged.SummaryText == "" {
		merged.SummaryText = "I could not build a full answer. If this is a life-threatening emergency, call your local emergency number immediately."
		merged.UsedFallback = true
	}
	return merged
}
