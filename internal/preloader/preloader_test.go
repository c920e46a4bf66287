package preloader_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lexiboost/lexiboost/internal/generator"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/preloader"
	"github.com/lexiboost/lexiboost/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator counts Generate calls and can be told to delay or fail.
type countingGenerator struct {
	calls atomic.Int64
	delay time.Duration
	err   error
}

func (g *countingGenerator) Generate(ctx context.Context, word, level string) (*generator.Explanation, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.err != nil {
		return nil, g.err
	}
	return &generator.Explanation{
		Word:          word,
		DefinitionEN:  "definition of " + word,
		DefinitionZH:  "定义",
		DistractorsEN: []string{"a", "b", "c"},
		DistractorsZH: []string{"甲", "乙", "丙"},
	}, nil
}

func startPool(t *testing.T, workers int) *worker.Pool {
	t.Helper()
	pool := worker.NewPool(workers, 32)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	return pool
}

var testWord = models.Word{ID: 1, Word: "harbor", Level: "k12"}

func TestGetOrGenerate_SingleFlight(t *testing.T) {
	gen := &countingGenerator{delay: 50 * time.Millisecond}
	p := preloader.New(gen, startPool(t, 4), preloader.Config{
		Timeout: time.Second,
		TTL:     time.Minute,
	})

	const n = 20
	questions := make([]*models.Question, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			questions[i] = p.GetOrGenerate(context.Background(), 7, 0, testWord)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), gen.calls.Load(), "generation cost is paid at most once per slot")
	for _, q := range questions {
		require.NotNil(t, q)
		assert.Equal(t, questions[0], q, "all callers observe the same payload")
	}
}

func TestGetOrGenerate_DistinctSlotsGenerateSeparately(t *testing.T) {
	gen := &countingGenerator{}
	p := preloader.New(gen, startPool(t, 4), preloader.Config{Timeout: time.Second, TTL: time.Minute})

	p.GetOrGenerate(context.Background(), 7, 0, testWord)
	p.GetOrGenerate(context.Background(), 7, 1, testWord)
	p.GetOrGenerate(context.Background(), 8, 0, testWord)

	assert.Equal(t, int64(3), gen.calls.Load())
}

func TestGetOrGenerate_FallbackOnError(t *testing.T) {
	gen := &countingGenerator{err: errors.New("upstream exploded")}
	p := preloader.New(gen, startPool(t, 2), preloader.Config{Timeout: time.Second, TTL: time.Minute})

	q := p.GetOrGenerate(context.Background(), 1, 0, testWord)

	require.NotNil(t, q)
	assert.True(t, q.Fallback)
	assert.Len(t, q.Choices, 4)
	assert.Contains(t, q.Choices, q.CorrectAnswer)
	assert.NotEmpty(t, q.Sentence)

	st := p.Stats()
	assert.Equal(t, int64(1), st.Failed)
	assert.Equal(t, int64(0), st.Generated)
}

func TestGetOrGenerate_FallbackOnTimeout(t *testing.T) {
	gen := &countingGenerator{delay: 2 * time.Second}
	p := preloader.New(gen, startPool(t, 2), preloader.Config{Timeout: 50 * time.Millisecond, TTL: time.Minute})

	start := time.Now()
	q := p.GetOrGenerate(context.Background(), 1, 0, testWord)

	require.NotNil(t, q)
	assert.True(t, q.Fallback)
	assert.Less(t, time.Since(start), time.Second, "timeout is bounded by configuration")
}

func TestPrefetch_WarmsSlotAhead(t *testing.T) {
	gen := &countingGenerator{}
	p := preloader.New(gen, startPool(t, 2), preloader.Config{Timeout: time.Second, TTL: time.Minute})

	p.Prefetch(3, 1, testWord)

	require.Eventually(t, func() bool {
		return p.SessionStatus(3).Ready == 1
	}, time.Second, 5*time.Millisecond)

	q := p.GetOrGenerate(context.Background(), 3, 1, testWord)
	require.NotNil(t, q)
	assert.False(t, q.Fallback)
	assert.Equal(t, int64(1), gen.calls.Load(), "serving a prefetched slot does not regenerate")
}

func TestEvictSession_DropsEntries(t *testing.T) {
	gen := &countingGenerator{}
	p := preloader.New(gen, startPool(t, 2), preloader.Config{Timeout: time.Second, TTL: time.Minute})

	p.GetOrGenerate(context.Background(), 5, 0, testWord)
	p.GetOrGenerate(context.Background(), 5, 1, testWord)
	p.GetOrGenerate(context.Background(), 6, 0, testWord)
	require.Equal(t, int64(3), gen.calls.Load())

	p.EvictSession(5)

	st := p.SessionStatus(5)
	assert.Zero(t, st.Ready+st.Pending+st.Failed)
	assert.Equal(t, 1, p.SessionStatus(6).Ready, "other sessions are untouched")

	// A re-request after eviction generates again.
	p.GetOrGenerate(context.Background(), 5, 0, testWord)
	assert.Equal(t, int64(4), gen.calls.Load())
}

func TestGetOrGenerate_ExpiredEntryRegenerates(t *testing.T) {
	gen := &countingGenerator{}
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	p := preloader.New(gen, startPool(t, 2), preloader.Config{
		Timeout: time.Second,
		TTL:     5 * time.Minute,
		Now:     now,
	})

	p.GetOrGenerate(context.Background(), 1, 0, testWord)
	require.Equal(t, int64(1), gen.calls.Load())

	// Within TTL: cache hit.
	p.GetOrGenerate(context.Background(), 1, 0, testWord)
	assert.Equal(t, int64(1), gen.calls.Load())

	mu.Lock()
	current = current.Add(10 * time.Minute)
	mu.Unlock()

	p.GetOrGenerate(context.Background(), 1, 0, testWord)
	assert.Equal(t, int64(2), gen.calls.Load(), "stale entries are regenerated")
}

func TestGetOrGenerate_CancelledCallerGetsFallback(t *testing.T) {
	gen := &countingGenerator{delay: time.Second}
	p := preloader.New(gen, startPool(t, 2), preloader.Config{Timeout: 5 * time.Second, TTL: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	q := p.GetOrGenerate(ctx, 1, 0, testWord)

	require.NotNil(t, q)
	assert.True(t, q.Fallback)
}
