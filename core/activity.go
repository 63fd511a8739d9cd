package core

import (
	"time"

	"github.com/google/uuid"
)

// Stage marks the lifecycle point an activity event describes.
type Stage string

const (
	StageStarted  Stage = "started"
	StageFinished Stage = "finished"
	StageFailed   Stage = "failed"
)

// ActivityEvent is one transparency log entry describing an agent's task
// progress. Events form an append-only sequence; for any agent a finished or
// failed event always follows its started event.
type ActivityEvent struct {
	ID          string    `json:"id"`
	Agent       string    `json:"agent"`
	Stage       Stage     `json:"stage"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewActivityEvent creates an event with a fresh ID and a UTC timestamp.
func NewActivityEvent(agent string, stage Stage, description string) ActivityEvent {
	return ActivityEvent{
		ID:          uuid.NewString(),
		Agent:       agent,
		Stage:       stage,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
}
