// Package clarion provides a high-level façade over the orchestrator and its
// specialist agents for building emergency-response assistants. Most
// applications interact with this package by:
//  1. Creating a Clarion via New() (optionally overriding collaborators and stores)
//  2. Calling Respond for each user utterance in a session
//  3. Reading Activity for the ordered agent task stream
//
// The façade delegates routing to orchestrator.Orchestrator while keeping
// setup ergonomics concise. All defaults are safe for local development: an
// in-memory session store, the embedded fallback knowledge base, no AI
// backend and no external collaborators. Production deployments typically
// supply an AI backend, a search collaborator, a durable session store and a
// structured logger.
package clarion

import (
	"context"

	"github.com/clarionhq/clarion/agent"
	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/extract"
	"github.com/clarionhq/clarion/fetch"
	"github.com/clarionhq/clarion/kb"
	"github.com/clarionhq/clarion/logging"
	"github.com/clarionhq/clarion/orchestrator"
	"github.com/clarionhq/clarion/report"
	"github.com/clarionhq/clarion/session"
)

// Options configures the Clarion instance.
type Options struct {
	// Config carries timeouts, limits and credential availability.
	Config core.Config

	// Store persists conversation contexts (defaults to in-memory).
	Store core.ContextStore

	// Sinks receive the ordered activity event stream.
	Sinks []core.Sink

	// Collaborators. Each is optional; nil degrades through the relevant
	// fallback path.
	Backend  core.Backend
	Searcher core.Searcher
	Verifier core.Verifier
	Fetcher  core.Fetcher

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Clarion is the high-level façade aggregating the orchestrator, specialists
// and the activity reporter.
type Clarion struct {
	opts         Options
	orchestrator *orchestrator.Orchestrator
	reporter     *report.Reporter
	knowledge    *kb.KnowledgeBase
}

// New creates a Clarion instance with optional overrides. Any unset
// collaborator leaves its feature in fallback mode rather than failing.
func New(optFns ...func(o *Options)) (*Clarion, error) {
	opts := Options{
		Config: core.DefaultConfig(),
		Store:  session.NewInMemoryStore(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.NewHTTPFetcher()
	}

	knowledge, err := kb.New()
	if err != nil {
		return nil, err
	}

	reporter := report.New(opts.Logger, opts.Sinks...)

	engine := extract.NewEngine(opts.Fetcher, func(o *extract.Options) {
		o.Concurrency = opts.Config.FetchConcurrency
		o.PerURLTimeout = opts.Config.CallTimeout
		o.Backend = opts.Backend
		o.Logger = opts.Logger
	})

	resource := agent.NewResourceAgent(engine, knowledge, opts.Config, opts.Searcher, reporter, opts.Logger)
	rescue := agent.NewRescueAgent(knowledge, opts.Config, opts.Verifier, resource, reporter, opts.Logger)
	information := agent.NewInformationAgent(knowledge, opts.Config, opts.Searcher, reporter, opts.Logger)

	classifier := orchestrator.NewClassifier(opts.Config, opts.Backend, opts.Logger)
	orch := orchestrator.New(opts.Config, classifier, orchestrator.Specialists{
		Rescue:      rescue,
		Information: information,
		Resource:    resource,
	}, opts.Store, reporter, opts.Logger)

	return &Clarion{
		opts:         opts,
		orchestrator: orch,
		reporter:     reporter,
		knowledge:    knowledge,
	}, nil
}

// Respond routes one utterance for a session and returns the structured
// specialist response. The only hard error is an empty utterance.
func (c *Clarion) Respond(ctx context.Context, sessionID, text string) (core.AgentResponse, error) {
	return c.orchestrator.Route(ctx, core.NewUtterance(sessionID, text))
}

// Activity returns the ordered activity events emitted so far.
func (c *Clarion) Activity() []core.ActivityEvent {
	return c.reporter.Snapshot()
}

// KnowledgeBase exposes the embedded fallback data for inspection.
func (c *Clarion) KnowledgeBase() *kb.KnowledgeBase { return c.knowledge }

// Close flushes and stops the activity reporter.
func (c *Clarion) Close() {
	c.reporter.Close()
}
