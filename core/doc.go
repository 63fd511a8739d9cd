// Package core defines the shared data model and collaborator contracts of
// the Clarion emergency-response orchestration framework: utterances, intents,
// contact records, agent responses, activity events, conversation context and
// the optional external collaborator interfaces (AI backend, search, hazard
// verification, page fetch, activity sink).
//
// Everything in this package is transport-agnostic. Values produced here are
// treated as immutable once emitted; the only mutable type is
// ConversationContext, which has a single writer (the orchestrator).
package core
