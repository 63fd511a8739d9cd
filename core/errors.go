package core

import "errors"

// Error taxonomy. Failures of optional collaborators are converted to
// degraded results at the point of call; these sentinels classify what
// happened so callers can pick the right fallback, not so they can abort.
var (
	// ErrEmptyUtterance is the only hard input error: an utterance with no
	// text cannot be routed and is surfaced to the caller.
	ErrEmptyUtterance = errors.New("utterance has no text")

	// ErrBackendUnavailable indicates the AI backend is not configured, is
	// down, or returned an unusable result. Triggers pattern-only
	// classification or a clarification request.
	ErrBackendUnavailable = errors.New("ai backend unavailable")

	// ErrCallTimeout indicates a network collaborator exceeded its bounded
	// timeout. Triggers that call's specific fallback and marks the
	// response as fallback-derived.
	ErrCallTimeout = errors.New("external call timed out")

	// ErrNoSources indicates every candidate source of a contact lookup was
	// unreachable. The resource agent answers from the fallback knowledge
	// base instead of propagating this.
	ErrNoSources = errors.New("no contact sources reachable")
)
