package core

// IntentKind is the classified category of an emergency request.
type IntentKind string

const (
	IntentRescue      IntentKind = "rescue"
	IntentInformation IntentKind = "information"
	IntentResource    IntentKind = "resource"
	IntentUnknown     IntentKind = "unknown"
)

// Urgency grades how time-critical a request appears to be.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Slots carries the entities extracted alongside an intent. All fields are
// optional; zero values mean "not detected".
type Slots struct {
	Location        string  `json:"location,omitempty"`
	Hazard          Hazard  `json:"hazard,omitempty"`
	Urgency         Urgency `json:"urgency,omitempty"`
	NeedsMedical    bool    `json:"needs_medical,omitempty"`
	NeedsEvacuation bool    `json:"needs_evacuation,omitempty"`
	NeedsSupplies   bool    `json:"needs_supplies,omitempty"`
	HasDependents   bool    `json:"has_dependents,omitempty"`
}

// Intent is the classification result for exactly one utterance. It is never
// mutated after creation; re-classification produces a new value.
type Intent struct {
	Kind       IntentKind `json:"kind"`
	Confidence float64    `json:"confidence"` // in [0,1]
	Slots      Slots      `json:"slots"`
}

// UnknownIntent is the canonical zero-confidence classification used when
// neither the pattern path nor an AI backend produced a usable result.
func UnknownIntent() Intent { return Intent{Kind: IntentUnknown} }

// WithLocation returns a copy of the intent with the location slot filled.
// Used when a later turn answers an open location clarification.
func (i Intent) WithLocation(location string) Intent {
	i.Slots.Location = location
	return i
}
