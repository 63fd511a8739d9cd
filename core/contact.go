package core

// ContactKind classifies an extracted contact value.
type ContactKind string

const (
	ContactEmergencyPhone ContactKind = "emergency_phone"
	ContactPhone          ContactKind = "phone"
	ContactEmail          ContactKind = "email"
	ContactAddress        ContactKind = "address"
)

// Precedence ranks kinds for deduplication: when the same normalized value is
// classified twice, the higher-precedence kind wins. Emergency phones beat
// plain phones; the remaining kinds never share a normalized value space.
func (k ContactKind) Precedence() int {
	switch k {
	case ContactEmergencyPhone:
		return 3
	case ContactPhone:
		return 2
	case ContactEmail:
		return 1
	default:
		return 0
	}
}

// ContactRecord is a structured contact extracted from a source document or
// served from the fallback knowledge base. Records are read-only once handed
// to a specialist agent.
type ContactRecord struct {
	Kind       ContactKind `json:"kind"`
	Value      string      `json:"value"`
	Label      string      `json:"label,omitempty"` // e.g. "Poison Control"
	SourceURL  string      `json:"source_url,omitempty"`
	Confidence float64     `json:"confidence"`
	Fallback   bool        `json:"fallback"` // true when served from local data
}

// ContactCandidate is an ambiguous span handed to the AI backend for
// classification (a number that could be a phone or an ID, say).
type ContactCandidate struct {
	Value      string      `json:"value"`
	Kind       ContactKind `json:"kind"`
	Confidence float64     `json:"confidence"`
}

// SourceFailure records a document source that could not contribute contacts.
// Partial failures are reported, never hidden.
type SourceFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}
