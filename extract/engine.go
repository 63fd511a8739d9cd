// Package extract implements the hybrid contact extraction engine: a
// deterministic pattern matcher over fetched page content, optionally backed
// by an AI pass that resolves ambiguous spans, with bounded-parallel
// multi-source fetching and precedence-aware deduplication.
package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/logging"
	"golang.org/x/sync/errgroup"
)

// DocState tracks a source document through the engine.
// Transitions: Fetching -> Parsed -> Extracted -> (Done | Failed).
// Failed is terminal and reported, never retried beyond the single bounded
// retry inside the fetch step.
type DocState int

const (
	StateFetching DocState = iota
	StateParsed
	StateExtracted
	StateDone
	StateFailed
)

// String returns a human-readable state name.
func (s DocState) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateParsed:
		return "parsed"
	case StateExtracted:
		return "extracted"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result aggregates what the engine produced across all sources. Records are
// the deduplicated union of every successful document; Failures name the
// sources that contributed nothing.
type Result struct {
	Records  []core.ContactRecord
	Failures []core.SourceFailure
}

// Options tune the engine.
type Options struct {
	// Concurrency bounds the number of documents processed in parallel.
	Concurrency int
	// PerURLTimeout bounds a single document's fetch+extract cycle.
	PerURLTimeout time.Duration
	// RetryBackoff is the wait before the single fetch retry.
	RetryBackoff time.Duration
	// Backend, when set, resolves ambiguous spans. Optional.
	Backend core.Backend
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Engine coordinates fetch, parse, extract and merge for a set of candidate
// URLs. No state is shared across documents beyond final result aggregation.
type Engine struct {
	fetcher core.Fetcher
	opts    Options
}

// NewEngine builds an engine over a page fetcher.
func NewEngine(fetcher core.Fetcher, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Concurrency:   5,
		PerURLTimeout: 8 * time.Second,
		RetryBackoff:  500 * time.Millisecond,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Engine{fetcher: fetcher, opts: opts}
}

// Run processes all URLs with bounded parallelism. Partial failures never
// fail the whole call: the error is non-nil only when the fetcher itself is
// missing. Record order is deterministic (source order, then extraction
// order) so pure pattern runs are idempotent.
func (e *Engine) Run(ctx context.Context, urls []string) (Result, error) {
	if e.fetcher == nil {
		return Result{}, fmt.Errorf("extract: no fetcher configured: %w", core.ErrNoSources)
	}

	type docResult struct {
		index   int
		records []core.ContactRecord
		failure *core.SourceFailure
	}

	var (
		mu      sync.Mutex
		results []docResult
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i, url := range urls {
		g.Go(func() error {
			records, failure := e.processDocument(groupCtx, url)
			mu.Lock()
			results = append(results, docResult{index: i, records: records, failure: failure})
			mu.Unlock()
			return nil // partial failure is data, not an error
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a].index < results[b].index })

	var out Result
	for _, r := range results {
		if r.failure != nil {
			out.Failures = append(out.Failures, *r.failure)
			continue
		}
		out.Records = append(out.Records, r.records...)
	}
	out.Records = Dedupe(out.Records)
	return out, nil
}

// processDocument walks one document through the state machine. The returned
// failure is nil on success.
func (e *Engine) processDocument(ctx context.Context, url string) ([]core.ContactRecord, *core.SourceFailure) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.PerURLTimeout)
	defer cancel()

	state := StateFetching
	start := time.Now()

	content, err := e.fetchWithRetry(ctx, url)
	if err != nil {
		state = StateFailed
		e.opts.Logger.Warn("document failed", "url", url, "state", state.String(), "error", err)
		return nil, &core.SourceFailure{URL: url, Reason: err.Error()}
	}
	state = StateParsed

	if strings.TrimSpace(content) == "" {
		state = StateFailed
		return nil, &core.SourceFailure{URL: url, Reason: "no content"}
	}

	records, ambiguous := ExtractPage(content, url)
	state = StateExtracted

	if e.opts.Backend != nil && len(ambiguous) > 0 {
		records = append(records, e.resolveAmbiguous(ctx, url, ambiguous)...)
	}

	state = StateDone
	e.opts.Logger.Debug("document processed",
		"url", url, "state", state.String(), "records", len(records), "duration", time.Since(start))
	return records, nil
}

// fetchWithRetry performs the fetch with exactly one bounded retry.
func (e *Engine) fetchWithRetry(ctx context.Context, url string) (string, error) {
	start := time.Now()
	content, err := e.fetcher.Fetch(ctx, url)
	logging.LogFetch(e.opts.Logger, url, time.Since(start), err)
	if err == nil {
		return content, nil
	}
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("fetch %s: %w", url, core.ErrCallTimeout)
	case <-time.After(e.opts.RetryBackoff):
	}
	start = time.Now()
	content, retryErr := e.fetcher.Fetch(ctx, url)
	logging.LogFetch(e.opts.Logger, url, time.Since(start), retryErr)
	if retryErr != nil {
		return "", fmt.Errorf("fetch %s after retry: %w", url, retryErr)
	}
	return content, nil
}

// resolveAmbiguous asks the AI backend to classify spans the patterns could
// not. Backend failure simply drops the ambiguous spans: the deterministic
// records stand on their own.
func (e *Engine) resolveAmbiguous(ctx context.Context, url string, spans []AmbiguousSpan) []core.ContactRecord {
	hints := make([]string, 0, len(spans))
	var text strings.Builder
	for _, s := range spans {
		hints = append(hints, s.Context)
		text.WriteString(s.Text)
		text.WriteString("\n")
	}
	candidates, err := e.opts.Backend.ExtractContacts(ctx, text.String(), hints)
	if err != nil {
		e.opts.Logger.Warn("ambiguous span resolution failed", "url", url, "error", err)
		return nil
	}
	var out []core.ContactRecord
	for _, c := range candidates {
		value := c.Value
		if c.Kind == core.ContactPhone || c.Kind == core.ContactEmergencyPhone {
			value = NormalizePhone(value, "US")
			if value == "" {
				continue
			}
		}
		out = append(out, core.ContactRecord{
			Kind:       c.Kind,
			Value:      value,
			SourceURL:  url,
			Confidence: c.Confidence,
		})
	}
	return out
}

// Dedupe merges records by normalized value. When duplicate values carry
// conflicting kinds, the higher-precedence kind wins (EMERGENCY_PHONE over
// PHONE); equal precedence keeps the higher-confidence record. First-seen
// order is preserved for determinism.
func Dedupe(records []core.ContactRecord) []core.ContactRecord {
	index := map[string]int{}
	var out []core.ContactRecord
	for _, r := range records {
		key := dedupeKey(r)
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, r)
			continue
		}
		existing := out[at]
		if r.Kind.Precedence() > existing.Kind.Precedence() ||
			(r.Kind.Precedence() == existing.Kind.Precedence() && r.Confidence > existing.Confidence) {
			out[at] = r
		}
	}
	return out
}

func dedupeKey(r core.ContactRecord) string {
	value := strings.ToLower(strings.Join(strings.Fields(r.Value), " "))
	switch r.Kind {
	case core.ContactPhone, core.ContactEmergencyPhone:
		// Phones share one value space so kind conflicts can collapse.
		return "phone|" + value
	default:
		return string(r.Kind) + "|" + value
	}
}
