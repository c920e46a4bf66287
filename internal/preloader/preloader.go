package preloader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lexiboost/lexiboost/internal/generator"
	"github.com/lexiboost/lexiboost/internal/logger"
	"github.com/lexiboost/lexiboost/internal/models"
	"github.com/lexiboost/lexiboost/internal/worker"
)

// Status of a cache entry.
type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// key identifies one slot of one session. Session keyspaces are disjoint, so
// cross-session coordination reduces to the shared worker pool.
type key struct {
	sessionID int64
	slot      int
}

// entry is the single-flight unit: the first requester creates it and owns
// the generation; everyone else waits on done. Once done is closed, question
// is immutable and always servable (a fallback when status is failed).
type entry struct {
	status    Status
	question  *models.Question
	word      models.Word
	expiresAt time.Time
	done      chan struct{}
}

// Config tunes the preloader.
type Config struct {
	// Timeout bounds each content generation attempt.
	Timeout time.Duration
	// TTL bounds how long a ready entry may be served before regeneration.
	TTL time.Duration
	// PrefetchDepth is how many slots ahead of the current one to warm.
	PrefetchDepth int
	// Now is the clock; nil means time.Now. Injected for tests.
	Now func() time.Time
}

// Stats counts generation outcomes across all sessions.
type Stats struct {
	Generated int64 `json:"generated"`
	Failed    int64 `json:"failed"`
	Served    int64 `json:"served"`
}

// SessionStatus describes the cache state for one session.
type SessionStatus struct {
	Ready      int `json:"ready"`
	Pending    int `json:"pending"`
	Failed     int `json:"failed"`
	QueueDepth int `json:"queue_depth"`
}

// Preloader hides content-generation latency behind a per-slot cache. Content
// for a slot is computed at most once (single-flight), ahead of need when
// possible, and degraded to a deterministic fallback when the generator fails
// or times out. GetOrGenerate never returns an error to the quiz flow.
type Preloader struct {
	gen     generator.Generator
	pool    *worker.Pool
	timeout time.Duration
	ttl     time.Duration
	depth   int
	now     func() time.Time
	log     *logger.Logger

	mu      sync.Mutex
	entries map[key]*entry

	generated atomic.Int64
	failed    atomic.Int64
	served    atomic.Int64
}

func New(gen generator.Generator, pool *worker.Pool, cfg Config) *Preloader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.PrefetchDepth < 0 {
		cfg.PrefetchDepth = 0
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Preloader{
		gen:     gen,
		pool:    pool,
		timeout: cfg.Timeout,
		ttl:     cfg.TTL,
		depth:   cfg.PrefetchDepth,
		now:     now,
		log:     logger.Default().WithPrefix("preloader"),
		entries: make(map[key]*entry),
	}
}

// PrefetchDepth returns how many slots ahead the preloader warms.
func (p *Preloader) PrefetchDepth() int {
	return p.depth
}

// GetOrGenerate returns the content for a slot, triggering generation on a
// miss and joining the in-flight generation on a concurrent hit. It always
// returns a servable question; generator failures degrade to a fallback and
// are never surfaced to the caller.
func (p *Preloader) GetOrGenerate(ctx context.Context, sessionID int64, slot int, word models.Word) *models.Question {
	e := p.ensure(sessionID, slot, word)

	select {
	case <-e.done:
	case <-ctx.Done():
		// The caller gave up before generation finished. Serve the fallback
		// now; the in-flight generation completes into the cache regardless.
		p.log.Debug("caller cancelled waiting on slot %d of session %d", slot, sessionID)
		return generator.FallbackQuestion(word, p.now())
	}

	p.mu.Lock()
	q := e.question
	p.mu.Unlock()
	p.served.Add(1)
	return q
}

// Prefetch warms a slot in the background without waiting for the result.
func (p *Preloader) Prefetch(sessionID int64, slot int, word models.Word) {
	p.ensure(sessionID, slot, word)
}

// ensure returns the entry for the key, creating it and scheduling generation
// when absent or expired. The map lock makes entry creation the single-flight
// point: exactly one generation is scheduled per live key.
func (p *Preloader) ensure(sessionID int64, slot int, word models.Word) *entry {
	k := key{sessionID: sessionID, slot: slot}

	p.mu.Lock()
	e, ok := p.entries[k]
	if ok && e.status != StatusPending && p.now().After(e.expiresAt) {
		p.log.Debug("entry expired, regenerating: session=%d slot=%d", sessionID, slot)
		ok = false
	}
	if ok {
		p.mu.Unlock()
		return e
	}
	e = &entry{
		status: StatusPending,
		word:   word,
		done:   make(chan struct{}),
	}
	p.entries[k] = e
	p.mu.Unlock()

	// Submit may block when the pool queue is full; the entry already exists,
	// so callers wait on it rather than duplicating work.
	go p.pool.Submit(&generateJob{p: p, key: k, entry: e})
	return e
}

// EvictSession drops all cache entries for a session. In-flight generations
// for evicted slots finish into orphaned entries and are discarded.
func (p *Preloader) EvictSession(sessionID int64) {
	p.mu.Lock()
	n := 0
	for k := range p.entries {
		if k.sessionID == sessionID {
			delete(p.entries, k)
			n++
		}
	}
	p.mu.Unlock()
	if n > 0 {
		p.log.Debug("evicted %d cache entries for session %d", n, sessionID)
	}
}

// SessionStatus reports the cache state for one session.
func (p *Preloader) SessionStatus(sessionID int64) SessionStatus {
	var st SessionStatus
	p.mu.Lock()
	for k, e := range p.entries {
		if k.sessionID != sessionID {
			continue
		}
		switch e.status {
		case StatusReady:
			st.Ready++
		case StatusPending:
			st.Pending++
		case StatusFailed:
			st.Failed++
		}
	}
	p.mu.Unlock()
	st.QueueDepth = p.pool.QueueDepth()
	return st
}

// Stats returns cumulative generation counters.
func (p *Preloader) Stats() Stats {
	return Stats{
		Generated: p.generated.Load(),
		Failed:    p.failed.Load(),
		Served:    p.served.Load(),
	}
}

// generateJob produces the content for one cache entry on the worker pool.
type generateJob struct {
	p     *Preloader
	key   key
	entry *entry
}

func (j *generateJob) Name() string {
	return fmt.Sprintf("generate-s%d-q%d", j.key.sessionID, j.key.slot)
}

func (j *generateJob) Run(ctx context.Context) error {
	p := j.p
	word := j.entry.word

	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	exp, err := p.gen.Generate(genCtx, word.Word, word.Level)
	now := p.now()

	p.mu.Lock()
	if err != nil {
		j.entry.status = StatusFailed
		j.entry.question = generator.FallbackQuestion(word, now)
		p.failed.Add(1)
	} else {
		j.entry.status = StatusReady
		j.entry.question = generator.BuildQuestion(word, exp, now)
		p.generated.Add(1)
	}
	j.entry.expiresAt = now.Add(p.ttl)
	p.mu.Unlock()
	close(j.entry.done)

	if err != nil {
		return fmt.Errorf("generate %q: %w", word.Word, err)
	}
	return nil
}
