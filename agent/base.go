package agent

import (
	"fmt"

	"github.com/clarionhq/clarion/logging"
	"github.com/clarionhq/clarion/report"
)

// BaseAgent bundles shared identity and activity reporting. Embed it in
// concrete specialist implementations and supply a Handle method to satisfy
// the core.Specialist interface.
type BaseAgent struct {
	name        string
	description string
	reporter    *report.Reporter
	logger      logging.Logger
}

// NewBaseAgent constructs a BaseAgent with a generated description
// (customizable via SetDescription).
func NewBaseAgent(name string, reporter *report.Reporter, logger logging.Logger) BaseAgent {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Specialist %s", name),
		reporter:    reporter,
		logger:      logger,
	}
}

// Name returns the human-readable name for this specialist.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this specialist's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the specialist's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// Logger returns the specialist's logger, never nil.
func (b *BaseAgent) Logger() logging.Logger { return b.logger }

// Started records a STARTED activity event for this specialist.
func (b *BaseAgent) Started(description string) {
	if b.reporter != nil {
		b.reporter.Started(b.name, description)
	}
}

// Finished records a FINISHED activity event for this specialist.
func (b *BaseAgent) Finished(description string) {
	if b.reporter != nil {
		b.reporter.Finished(b.name, description)
	}
}

// Failed records a FAILED activity event for this specialist.
func (b *BaseAgent) Failed(description string) {
	if b.reporter != nil {
		b.reporter.Failed(b.name, description)
	}
}

// summaryOr returns s unless it is empty, in which case fallback is used.
// Specialists rely on it to uphold the non-empty summary guarantee.
func summaryOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
