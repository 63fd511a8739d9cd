package core

import "time"

// ConversationContext accumulates per-session state across turns: prior
// intents, prior extracted contacts and any open clarification. It has a
// single writer (the orchestrator); specialists receive a Snapshot and must
// return new values instead of mutating it. No internal locking is needed.
type ConversationContext struct {
	SessionID        string          `json:"session_id"`
	Intents          []Intent        `json:"intents,omitempty"`
	Contacts         []ContactRecord `json:"contacts,omitempty"`
	PendingSlot      string          `json:"pending_slot,omitempty"` // e.g. "location"
	ActiveSpecialist string          `json:"active_specialist,omitempty"`
	Created          time.Time       `json:"created"`
	Updated          time.Time       `json:"updated"`
}

// NewConversationContext creates an empty context for a session.
func NewConversationContext(sessionID string) *ConversationContext {
	now := time.Now().UTC()
	return &ConversationContext{SessionID: sessionID, Created: now, Updated: now}
}

// LastIntent returns the most recent classification, or false when the
// session has no prior turns.
func (c *ConversationContext) LastIntent() (Intent, bool) {
	if len(c.Intents) == 0 {
		return Intent{}, false
	}
	return c.Intents[len(c.Intents)-1], true
}

// AwaitingSlot reports whether the prior turn left an open clarification for
// the named slot.
func (c *ConversationContext) AwaitingSlot(slot string) bool { return c.PendingSlot == slot }

// RecordTurn appends the turn's classification and any newly discovered
// contacts, closing an open clarification if one was pending.
func (c *ConversationContext) RecordTurn(intent Intent, resp AgentResponse) {
	c.Intents = append(c.Intents, intent)
	c.Contacts = append(c.Contacts, resp.Contacts...)
	c.PendingSlot = ""
	c.ActiveSpecialist = resp.Specialist
	c.Updated = time.Now().UTC()
}

// OpenClarification marks a slot the next utterance should be checked
// against before full re-classification.
func (c *ConversationContext) OpenClarification(slot, specialist string) {
	c.PendingSlot = slot
	c.ActiveSpecialist = specialist
	c.Updated = time.Now().UTC()
}

// Snapshot returns a deep copy safe to hand to a specialist while the
// orchestrator retains ownership of the original.
func (c *ConversationContext) Snapshot() *ConversationContext {
	cp := *c
	cp.Intents = make([]Intent, len(c.Intents))
	copy(cp.Intents, c.Intents)
	cp.Contacts = make([]ContactRecord, len(c.Contacts))
	copy(cp.Contacts, c.Contacts)
	return &cp
}

// ContextStore persists conversation contexts between turns. Implementations
// must return independent copies so the orchestrator's single-writer
// invariant holds even with a shared backing store.
type ContextStore interface {
	Get(sessionID string) (*ConversationContext, error)
	Save(ctx *ConversationContext) error
	Delete(sessionID string) error
}
