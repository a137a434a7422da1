package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"vocab-sprint/internal/words"
)

// CandidateCache caches word-service lookups with TTL to avoid hitting the API on every round.
type CandidateCache struct {
	lookup words.Lookup
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedCandidates
}

type cachedCandidates struct {
	candidates []words.Candidate
	expiresAt  time.Time
}

func NewCandidateCache(lookup words.Lookup, ttl time.Duration) *CandidateCache {
	return NewCandidateCacheWithClock(lookup, ttl, time.Now)
}

// NewCandidateCacheWithClock allows tests to control expiry.
func NewCandidateCacheWithClock(lookup words.Lookup, ttl time.Duration, clock func() time.Time) *CandidateCache {
	return &CandidateCache{
		lookup: lookup,
		ttl:    ttl,
		clock:  clock,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCandidates),
	}
}

func (c *CandidateCache) Candidates(ctx context.Context, q words.Query) ([]words.Candidate, error) {
	key := q.Key()
	if cached, ok := c.fresh(key); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		if cached, ok := c.fresh(key); ok {
			return cached, nil
		}

		candidates, err := c.lookup.Candidates(ctx, q)
		if err != nil {
			return nil, err
		}
		// empty answers are not cached so the next round asks again
		if len(candidates) > 0 && c.ttl > 0 {
			c.mu.Lock()
			c.cache[key] = cachedCandidates{
				candidates: candidates,
				expiresAt:  c.clock().Add(c.ttlWithJitter()),
			}
			c.mu.Unlock()
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]words.Candidate), nil
}

func (c *CandidateCache) fresh(key string) ([]words.Candidate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return nil, false
	}
	return entry.candidates, true
}

func (c *CandidateCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
