package core

import "context"

// Collaborator contracts. Every collaborator is optional: a nil value or a
// failing call degrades functionality through the relevant fallback path but
// never crashes a turn. Implementations must respect context deadlines.

// Backend is the AI collaborator used for low-confidence classification and
// for resolving ambiguous contact spans during extraction.
type Backend interface {
	// Classify returns an intent (with confidence and slots) for raw text.
	Classify(ctx context.Context, text string) (Intent, error)

	// ExtractContacts resolves ambiguous spans from a document into
	// classified contact candidates. Hints carry the surrounding text of
	// each span.
	ExtractContacts(ctx context.Context, text string, hints []string) ([]ContactCandidate, error)

	// Provider names the backing service for logging.
	Provider() string
}

// SearchResult is one ranked hit from the search collaborator.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher is the external knowledge/search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// Verification is the outcome of a hazard check. Known is false when the
// verification source could not decide either way.
type Verification struct {
	Confirmed bool   `json:"confirmed"`
	Known     bool   `json:"known"`
	Detail    string `json:"detail,omitempty"`
}

// Verifier confirms a reported hazard against official data (weather alerts,
// fire detections). Failures downgrade confidence, never block a response.
type Verifier interface {
	Verify(ctx context.Context, hazard Hazard, location string) (Verification, error)
}

// Fetcher retrieves page content for contact extraction.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Sink consumes the activity event stream for display or audit. Sinks are
// fed by the reporter's drain goroutine in emission order; a slow sink delays
// other sinks but never the core.
type Sink interface {
	Record(event ActivityEvent)
}

// ContactFinder is the resource agent's public contact-lookup contract,
// consumed by the rescue agent for enrichment without re-implementing
// extraction.
type ContactFinder interface {
	FindContacts(ctx context.Context, region string, hazard Hazard, urls []string) ([]ContactRecord, []SourceFailure, error)
}

// Specialist is the single polymorphic contract all three domain handlers
// implement. The orchestrator holds a closed mapping from intent kind to
// specialist; there is no open-ended registration.
type Specialist interface {
	Name() string
	Handle(ctx context.Context, turn *Turn) (AgentResponse, error)
}

// Turn bundles the read-only inputs of one specialist invocation.
type Turn struct {
	Utterance Utterance
	Intent    Intent
	Context   *ConversationContext // snapshot, never the orchestrator's copy
}
