package redis

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"vocab-sprint/internal/words"
)

// CandidateCache caches word-service lookups in Redis and falls back to the lookup on a miss.
// Candidates are stored as JSON: SET words:candidates:{pattern}:{max} [...] EX ttl
type CandidateCache struct {
	client *redis.Client
	lookup words.Lookup
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCandidateCache(client *redis.Client, lookup words.Lookup, ttl time.Duration) *CandidateCache {
	return &CandidateCache{
		client: client,
		lookup: lookup,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CandidateCache) Candidates(ctx context.Context, q words.Query) ([]words.Candidate, error) {
	key := c.key(q)
	if cached, ok := c.cached(ctx, key); ok {
		return cached, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, ok := c.cached(ctx, key); ok {
			return cached, nil
		}

		candidates, err := c.lookup.Candidates(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 && c.ttl > 0 {
			payload, err := json.Marshal(candidates)
			if err == nil {
				err = c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err()
			}
			if err != nil {
				log.Printf("cache candidates failed: %v", err)
			}
		}
		return candidates, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]words.Candidate), nil
}

func (c *CandidateCache) cached(ctx context.Context, key string) ([]words.Candidate, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("read cached candidates failed: %v", err)
		}
		return nil, false
	}
	var candidates []words.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil || len(candidates) == 0 {
		return nil, false
	}
	return candidates, true
}

func (c *CandidateCache) key(q words.Query) string {
	return "words:candidates:" + q.Key()
}

func (c *CandidateCache) ttlWithJitter() time.Duration {
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
