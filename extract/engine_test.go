package extract

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/clarionhq/clarion/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubFetcher serves canned content per URL and counts attempts.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
	// failFirst makes the first attempt per URL fail, exercising the retry.
	failFirst bool
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: map[string]string{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if f.failFirst && f.calls[url] == 1 {
		return "", errors.New("transient")
	}
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	return f.pages[url], nil
}

func (f *stubFetcher) attempts(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func TestEngineUnionOfSuccesses(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://a.example/contact"] = "Emergency hotline: (555) 123-4567"
	fetcher.pages["https://b.example/contact"] = "Reach us at help@b.example"
	fetcher.errs["https://down.example"] = errors.New("connection refused")

	engine := NewEngine(fetcher, func(o *Options) {
		o.RetryBackoff = time.Millisecond
	})

	result, err := engine.Run(context.Background(),
		[]string{"https://a.example/contact", "https://down.example", "https://b.example/contact"})
	require.NoError(t, err, "partial failure is data, not an error")

	require.Len(t, result.Records, 2)
	assert.Equal(t, core.ContactEmergencyPhone, result.Records[0].Kind)
	assert.Equal(t, core.ContactEmail, result.Records[1].Kind)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "https://down.example", result.Failures[0].URL)
	assert.Contains(t, result.Failures[0].Reason, "connection refused")
}

func TestEngineRetriesOnce(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.failFirst = true
	fetcher.pages["https://flaky.example"] = "Emergency: 911"

	engine := NewEngine(fetcher, func(o *Options) {
		o.RetryBackoff = time.Millisecond
	})

	result, err := engine.Run(context.Background(), []string{"https://flaky.example"})
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.attempts("https://flaky.example"))
	require.Len(t, result.Records, 1)
	assert.Empty(t, result.Failures)
}

func TestEnginePersistentFailureIsReportedAfterOneRetry(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.errs["https://broken.example"] = errors.New("boom")

	engine := NewEngine(fetcher, func(o *Options) {
		o.RetryBackoff = time.Millisecond
	})

	result, err := engine.Run(context.Background(), []string{"https://broken.example"})
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.attempts("https://broken.example"), "exactly one retry")
	assert.Empty(t, result.Records)
	require.Len(t, result.Failures, 1)
}

func TestEngineDeterministicWithoutBackend(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://a.example"] = "Emergency hotline: (555) 123-4567\nmail: ops@a.example"
	fetcher.pages["https://b.example"] = "Office: (555) 987-6543"

	engine := NewEngine(fetcher, func(o *Options) {
		o.Concurrency = 2
		o.RetryBackoff = time.Millisecond
	})

	urls := []string{"https://a.example", "https://b.example"}
	first, err := engine.Run(context.Background(), urls)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), urls)
	require.NoError(t, err)

	assert.Equal(t, first, second, "pure pattern extraction must be idempotent")
}

func TestEngineEmptyContentIsFailure(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://empty.example"] = "   \n  "

	engine := NewEngine(fetcher)
	result, err := engine.Run(context.Background(), []string{"https://empty.example"})
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "no content", result.Failures[0].Reason)
}

func TestEngineNilFetcher(t *testing.T) {
	engine := &Engine{}
	_, err := engine.Run(context.Background(), []string{"https://a.example"})
	assert.ErrorIs(t, err, core.ErrNoSources)
}
