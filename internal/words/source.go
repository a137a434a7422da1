package words

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"vocab-sprint/internal/domain"
)

// PoolSize is the number of words every session plays through.
const PoolSize = 50

var (
	// ErrLookupFailed marks a pool built from the fallback list because the word service failed.
	ErrLookupFailed = errors.New("word lookup failed, using fallback list")
	// ErrNoCandidates marks a pool built from the fallback list because the word service returned nothing usable.
	ErrNoCandidates = errors.New("word lookup returned no usable words, using fallback list")
	// ErrScarceCandidates marks a pool that repeats words because too few candidates came back.
	ErrScarceCandidates = errors.New("too few candidate words, repeating")
)

// Query describes the candidate lookup sent to the word service.
type Query struct {
	Pattern string
	Max     int
}

// Key identifies the query for caching.
func (q Query) Key() string {
	return fmt.Sprintf("%s:%d", q.Pattern, q.Max)
}

// DefaultQuery asks for up to 300 six-letter words with frequency metadata.
func DefaultQuery() Query {
	return Query{Pattern: "??????", Max: 300}
}

// Lookup fetches raw candidates from a word service (or a cache in front of one).
type Lookup interface {
	Candidates(ctx context.Context, q Query) ([]Candidate, error)
}

// FallbackLoader supplies the local word list used when the lookup is unusable.
type FallbackLoader interface {
	LoadFallback(ctx context.Context) ([]string, error)
}

// Pool is the resolved word list for one session. Warning is informational only.
type Pool struct {
	Words    []string
	Fallback bool
	Warning  error
}

// Source resolves word pools. It never fails: upstream problems degrade to the fallback list.
type Source struct {
	lookup   Lookup
	fallback FallbackLoader
	query    Query
	timeout  time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSource(lookup Lookup, fallback FallbackLoader, query Query, timeout time.Duration) *Source {
	return NewSourceWithRand(lookup, fallback, query, timeout, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSourceWithRand is used by tests for a deterministic shuffle.
func NewSourceWithRand(lookup Lookup, fallback FallbackLoader, query Query, timeout time.Duration, rnd *rand.Rand) *Source {
	return &Source{
		lookup:   lookup,
		fallback: fallback,
		query:    query,
		timeout:  timeout,
		rnd:      rnd,
	}
}

// FetchPool returns exactly PoolSize words for the tier.
func (s *Source) FetchPool(ctx context.Context, difficulty domain.Difficulty) Pool {
	lookupCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		lookupCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	candidates, err := s.lookup.Candidates(lookupCtx, s.query)
	if err != nil {
		log.Printf("word lookup failed: %v", err)
		return s.fallbackPool(ctx, fmt.Errorf("%w: %v", ErrLookupFailed, err))
	}

	usable := usableCandidates(candidates)
	if len(usable) == 0 {
		return s.fallbackPool(ctx, ErrNoCandidates)
	}

	s.mu.Lock()
	selected := SelectWords(usable, difficulty, PoolSize, s.rnd)
	s.mu.Unlock()

	pool := Pool{Words: selected}
	if len(selected) < PoolSize {
		pool.Words = padCyclic(selected, PoolSize)
		pool.Warning = fmt.Errorf("%w: got %d", ErrScarceCandidates, len(selected))
	}
	return pool
}

func (s *Source) fallbackPool(ctx context.Context, reason error) Pool {
	list := DefaultFallbackWords()
	if s.fallback != nil {
		loaded, err := s.fallback.LoadFallback(ctx)
		switch {
		case err != nil:
			log.Printf("fallback word bank unavailable, using built-in list: %v", err)
		case len(loaded) > 0:
			list = loaded
		}
	}
	return Pool{
		Words:    padCyclic(list, PoolSize),
		Fallback: true,
		Warning:  reason,
	}
}

// SelectWords filters candidates by tier, backfills from the remaining candidates in
// upstream order when short, then shuffles and truncates to size.
func SelectWords(candidates []Candidate, difficulty domain.Difficulty, size int, rnd *rand.Rand) []string {
	taken := make([]bool, len(candidates))
	out := make([]string, 0, size)
	for i, c := range candidates {
		if InTier(difficulty, c.Frequency()) {
			taken[i] = true
			out = append(out, c.Word)
		}
	}
	for i, c := range candidates {
		if len(out) >= size {
			break
		}
		if !taken[i] {
			out = append(out, c.Word)
		}
	}

	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	if len(out) > size {
		out = out[:size]
	}
	return out
}

// FilterByTier returns the candidates in the tier, preserving order.
func FilterByTier(candidates []Candidate, difficulty domain.Difficulty) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if InTier(difficulty, c.Frequency()) {
			out = append(out, c)
		}
	}
	return out
}

// InTier applies the frequency thresholds: easy > 40, medium (5, 40], hard <= 5.
func InTier(difficulty domain.Difficulty, freq float64) bool {
	switch difficulty {
	case domain.DifficultyEasy:
		return freq > 40
	case domain.DifficultyMedium:
		return freq > 5 && freq <= 40
	default:
		return freq <= 5
	}
}

func usableCandidates(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		c.Word = strings.TrimSpace(c.Word)
		if c.Word == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// padCyclic repeats list until it has exactly size entries.
func padCyclic(list []string, size int) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, size)
	for i := range out {
		out[i] = list[i%len(list)]
	}
	return out
}
