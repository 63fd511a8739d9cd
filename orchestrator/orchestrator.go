package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/logging"
	"github.com/clarionhq/clarion/report"
)

// Name identifies the orchestrator in activity events.
const Name = "orchestrator"

// Specialists is the closed routing table: exactly one handler per routable
// intent kind. Unknown intents never reach a specialist.
type Specialists struct {
	Rescue      core.Specialist
	Information core.Specialist
	Resource    core.Specialist
}

// Orchestrator owns a turn end to end: classify, clarify or dispatch, merge,
// persist context, report activity. It is the conversation context's single
// writer.
type Orchestrator struct {
	classifier  *Classifier
	specialists Specialists
	store       core.ContextStore
	reporter    *report.Reporter
	logger      logging.Logger
	cfg         core.Config
}

// New wires the orchestrator. All three specialists must be set; the store
// must not be nil. A nil reporter disables activity recording.
func New(cfg core.Config, classifier *Classifier, specialists Specialists, store core.ContextStore, reporter *report.Reporter, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Orchestrator{
		classifier:  classifier,
		specialists: specialists,
		store:       store,
		reporter:    reporter,
		logger:      logger,
		cfg:         cfg,
	}
}

// Route processes one utterance. The only hard error is an empty utterance;
// every other failure mode (specialist error, specialist panic, storage
// trouble) degrades into a well-formed fallback response.
func (o *Orchestrator) Route(ctx context.Context, utt core.Utterance) (core.AgentResponse, error) {
	if err := utt.Validate(); err != nil {
		return core.AgentResponse{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.TurnTimeout)
	defer cancel()

	o.reportStarted("routing utterance")

	cctx, err := o.store.Get(utt.SessionID)
	if err != nil {
		o.logger.Warn("context load failed, starting fresh", "session_id", utt.SessionID, "error", err)
		cctx = core.NewConversationContext(utt.SessionID)
	}

	intent := o.resolveIntent(ctx, utt, cctx)
	resp := o.respond(ctx, utt, intent, cctx)

	cctx.RecordTurn(intent, resp)
	if resp.Payload != nil {
		if slot, ok := resp.Payload["pending_slot"].(string); ok && slot != "" {
			cctx.OpenClarification(slot, resp.Specialist)
		}
	}
	if err := o.store.Save(cctx); err != nil {
		o.logger.Warn("context save failed", "session_id", utt.SessionID, "error", err)
	}

	o.reportFinished(fmt.Sprintf("routed %s intent to %s", intent.Kind, resp.Specialist))
	return resp, nil
}

func (o *Orchestrator) reportStarted(description string) {
	if o.reporter != nil {
		o.reporter.Started(Name, description)
	}
}

func (o *Orchestrator) reportFinished(description string) {
	if o.reporter != nil {
		o.reporter.Finished(Name, description)
	}
}

func (o *Orchestrator) reportFailed(agent, description string) {
	if o.reporter != nil {
		o.reporter.Failed(agent, description)
	}
}

// resolveIntent classifies the utterance, treating it as the answer to an
// open location clarification when the prior turn left one and the new text
// does not read as a fresh request on its own.
func (o *Orchestrator) resolveIntent(ctx context.Context, utt core.Utterance, cctx *core.ConversationContext) core.Intent {
	intent := o.classifier.Classify(ctx, utt.Text)

	if cctx.AwaitingSlot("location") {
		if last, ok := cctx.LastIntent(); ok && intent.Confidence < aiThreshold {
			location := intent.Slots.Location
			if location == "" {
				location = strings.TrimRight(strings.TrimSpace(utt.Text), ".,!?")
			}
			o.logger.Debug("treating utterance as location answer",
				"session_id", utt.SessionID, "location", location)
			return last.WithLocation(location)
		}
	}
	return intent
}

// respond picks a specialist (or a clarification) and guarantees a response.
func (o *Orchestrator) respond(ctx context.Context, utt core.Utterance, intent core.Intent, cctx *core.ConversationContext) core.AgentResponse {
	switch intent.Kind {
	case core.IntentUnknown:
		return o.clarifyIntent()
	case core.IntentResource:
		if intent.Slots.Location == "" {
			return o.clarifyLocation()
		}
		return o.dispatch(ctx, o.specialists.Resource, utt, intent, cctx)
	case core.IntentInformation:
		return o.dispatch(ctx, o.specialists.Information, utt, intent, cctx)
	case core.IntentRescue:
		// Rescue answers even without a location; general guidance beats a
		// round-trip question when someone may be in danger.
		return o.dispatch(ctx, o.specialists.Rescue, utt, intent, cctx)
	default:
		return o.clarifyIntent()
	}
}

// dispatch invokes a specialist with panic containment. A failing or
// panicking specialist yields the generic fallback response; the error never
// escapes to the caller.
func (o *Orchestrator) dispatch(ctx context.Context, spec core.Specialist, utt core.Utterance, intent core.Intent, cctx *core.ConversationContext) (resp core.AgentResponse) {
	if spec == nil {
		o.logger.Error("no specialist registered", "intent", intent.Kind)
		return o.fallbackResponse()
	}

	defer func() {
		if p := recover(); p != nil {
			o.logger.Error("specialist panicked", "specialist", spec.Name(), "panic", p)
			o.reportFailed(spec.Name(), fmt.Sprintf("panic: %v", p))
			resp = o.fallbackResponse()
		}
	}()

	turn := &core.Turn{Utterance: utt, Intent: intent, Context: cctx.Snapshot()}
	start := time.Now()
	r, err := spec.Handle(ctx, turn)
	logging.LogDispatch(o.logger, spec.Name(), time.Since(start), r.UsedFallback, err)
	if err != nil {
		return o.fallbackResponse()
	}
	if r.SummaryText == "" {
		// Specialists should never return an empty summary; merge repairs it.
		r = core.MergeResponses(r)
	}
	return r
}

// clarifyIntent is the unknown-intent response: ask for a rephrase without
// pretending to have understood.
func (o *Orchestrator) clarifyIntent() core.AgentResponse {
	return core.AgentResponse{
		Specialist:   Name,
		SummaryText:  "I want to make sure I help with the right thing. Are you in immediate danger, looking for information about a hazard, or trying to find emergency contact numbers?",
		Confidence:   0.1,
		UsedFallback: true,
	}
}

// clarifyLocation asks for the missing location a contact lookup needs.
func (o *Orchestrator) clarifyLocation() core.AgentResponse {
	return core.AgentResponse{
		Specialist:  Name,
		SummaryText: "I can find emergency contacts for you. Which city or region are you in?",
		Payload:     map[string]any{"pending_slot": "location"},
		Confidence:  0.9,
	}
}

// fallbackResponse is the last-resort answer when a specialist could not
// produce one.
func (o *Orchestrator) fallbackResponse() core.AgentResponse {
	return core.AgentResponse{
		Specialist:   Name,
		SummaryText:  "Something went wrong while preparing a full answer. If this is a life-threatening emergency, call your local emergency number immediately.",
		Confidence:   0.1,
		UsedFallback: true,
	}
}
