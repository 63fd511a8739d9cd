package core

import (
	"strings"
	"time"
)

// Utterance is a single transcribed user request entering the orchestrator.
// It is an immutable value: produced once by the voice/UI collaborator and
// consumed exactly once by a Route call.
type Utterance struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// NewUtterance builds an utterance stamped with the current UTC time.
func NewUtterance(sessionID, text string) Utterance {
	return Utterance{Text: text, Timestamp: time.Now().UTC(), SessionID: sessionID}
}

// Validate reports the only hard input error of the system: an utterance
// without text. Everything else degrades instead of failing.
func (u Utterance) Validate() error {
	if strings.TrimSpace(u.Text) == "" {
		return ErrEmptyUtterance
	}
	return nil
}
