// Package report implements the activity reporter: an append-only, causally
// ordered stream of agent task events consumed by UI sidebars and audit
// sinks. The reporter is a pure observer; emitting never blocks the core and
// carries no control-flow authority.
package report

import (
	"sync"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/logging"
)

// Reporter records activity events in emission order and forwards them to
// registered sinks from a single drain goroutine, preserving stream order
// while keeping Emit non-blocking for the caller.
type Reporter struct {
	mu      sync.Mutex
	queue   []core.ActivityEvent
	history []core.ActivityEvent
	notify  chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	sinks   []core.Sink
	logger  logging.Logger
	closed  bool
}

// New creates a reporter draining toward the given sinks. Close releases the
// drain goroutine.
func New(logger logging.Logger, sinks ...core.Sink) *Reporter {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	r := &Reporter{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		sinks:  sinks,
		logger: logger,
	}
	r.wg.Add(1)
	go r.drain()
	return r
}

// Emit appends an event to the ordered stream. It never blocks: delivery to
// sinks happens asynchronously, in order.
func (r *Reporter) Emit(ev core.ActivityEvent) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.queue = append(r.queue, ev)
	r.history = append(r.history, ev)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Started emits a STARTED event for an agent task.
func (r *Reporter) Started(agent, description string) {
	r.Emit(core.NewActivityEvent(agent, core.StageStarted, description))
}

// Finished emits a FINISHED event for an agent task.
func (r *Reporter) Finished(agent, description string) {
	r.Emit(core.NewActivityEvent(agent, core.StageFinished, description))
}

// Failed emits a FAILED event for an agent task.
func (r *Reporter) Failed(agent, description string) {
	r.Emit(core.NewActivityEvent(agent, core.StageFailed, description))
}

// Snapshot returns a copy of every event emitted so far, in order.
func (r *Reporter) Snapshot() []core.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.ActivityEvent, len(r.history))
	copy(out, r.history)
	return out
}

// Close flushes the queue to sinks and stops the drain goroutine. Emit calls
// after Close are dropped.
func (r *Reporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()

	close(r.done)
	r.wg.Wait()
}

func (r *Reporter) drain() {
	defer r.wg.Done()
	for {
		select {
		case <-r.notify:
			r.deliver()
		case <-r.done:
			r.deliver() // final flush
			return
		}
	}
}

// deliver hands queued events to sinks in order. A panicking sink is logged
// and skipped so one bad consumer cannot stall the stream.
func (r *Reporter) deliver() {
	r.mu.Lock()
	batch := r.queue
	r.queue = nil
	r.mu.Unlock()

	for _, ev := range batch {
		for _, sink := range r.sinks {
			r.record(sink, ev)
		}
	}
}

func (r *Reporter) record(sink core.Sink, ev core.ActivityEvent) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("activity sink panicked", "panic", p)
		}
	}()
	sink.Record(ev)
}

// MemorySink retains events for tests and the HTTP activity endpoint.
type MemorySink struct {
	mu     sync.Mutex
	events []core.ActivityEvent
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Record implements core.Sink.
func (s *MemorySink) Record(ev core.ActivityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of everything recorded so far, in order.
func (s *MemorySink) Events() []core.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}
