package words

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"vocab-sprint/internal/domain"
)

type stubLookup struct {
	candidates []Candidate
	err        error
	calls      int
}

func (l *stubLookup) Candidates(_ context.Context, _ Query) ([]Candidate, error) {
	l.calls++
	return l.candidates, l.err
}

type stubFallback struct {
	words []string
	err   error
}

func (f stubFallback) LoadFallback(context.Context) ([]string, error) {
	return f.words, f.err
}

func newTestSource(lookup Lookup, fallback FallbackLoader) *Source {
	return NewSourceWithRand(lookup, fallback, DefaultQuery(), time.Second, rand.New(rand.NewSource(1)))
}

// syntheticCandidates builds n candidates per frequency value.
func syntheticCandidates(n int, freqs ...string) []Candidate {
	var out []Candidate
	for _, f := range freqs {
		for i := 0; i < n; i++ {
			out = append(out, Candidate{Word: fmt.Sprintf("w%s_%02d", f, i), Tags: []string{"f:" + f}})
		}
	}
	return out
}

func TestFrequency(t *testing.T) {
	cases := []struct {
		tags []string
		want float64
	}{
		{nil, 0},
		{[]string{"syn"}, 0},
		{[]string{"n", "f:12.5"}, 12.5},
		{[]string{"f:oops"}, 0},
		{[]string{"f:3", "f:90"}, 3},
	}
	for _, tc := range cases {
		if got := (Candidate{Word: "x", Tags: tc.tags}).Frequency(); got != tc.want {
			t.Errorf("Frequency(%v) = %v, want %v", tc.tags, got, tc.want)
		}
	}
}

func TestFilterByTierPartition(t *testing.T) {
	candidates := []Candidate{
		{Word: "common", Tags: []string{"f:120"}},
		{Word: "edge40", Tags: []string{"f:40"}},
		{Word: "middle", Tags: []string{"f:12"}},
		{Word: "edge05", Tags: []string{"f:5"}},
		{Word: "rarely", Tags: []string{"f:0.4"}},
		{Word: "notags"},
	}
	want := map[domain.Difficulty][]string{
		domain.DifficultyEasy:   {"common"},
		domain.DifficultyMedium: {"edge40", "middle"},
		domain.DifficultyHard:   {"edge05", "rarely", "notags"},
	}
	for difficulty, expected := range want {
		got := FilterByTier(candidates, difficulty)
		if len(got) != len(expected) {
			t.Fatalf("%s: got %d words, want %d", difficulty, len(got), len(expected))
		}
		for i, c := range got {
			if c.Word != expected[i] {
				t.Errorf("%s[%d] = %q, want %q", difficulty, i, c.Word, expected[i])
			}
		}
	}
}

func TestFetchPoolAlwaysFifty(t *testing.T) {
	responses := map[string]*stubLookup{
		"plenty":   {candidates: syntheticCandidates(100, "60", "20", "1")},
		"scarce":   {candidates: syntheticCandidates(3, "60")},
		"empty":    {candidates: nil},
		"blank":    {candidates: []Candidate{{Word: "  "}}},
		"error":    {err: errors.New("boom")},
		"one tier": {candidates: syntheticCandidates(30, "1")},
	}
	for name, lookup := range responses {
		for _, difficulty := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
			pool := newTestSource(lookup, nil).FetchPool(context.Background(), difficulty)
			if len(pool.Words) != PoolSize {
				t.Errorf("%s/%s: got %d words, want %d", name, difficulty, len(pool.Words), PoolSize)
			}
		}
	}
}

func TestFetchPoolBackfillsFromUnfiltered(t *testing.T) {
	// 20 easy words, 60 hard words: easy needs 30 backfilled entries.
	candidates := append(syntheticCandidates(20, "80"), syntheticCandidates(60, "2")...)
	pool := newTestSource(&stubLookup{candidates: candidates}, nil).FetchPool(context.Background(), domain.DifficultyEasy)

	if pool.Fallback || pool.Warning != nil {
		t.Fatalf("unexpected fallback/warning: %+v", pool)
	}
	if len(pool.Words) != PoolSize {
		t.Fatalf("got %d words, want %d", len(pool.Words), PoolSize)
	}
	seen := map[string]bool{}
	easy := 0
	for _, w := range pool.Words {
		if seen[w] {
			t.Fatalf("duplicate word %q", w)
		}
		seen[w] = true
		if len(w) > 3 && w[:3] == "w80" {
			easy++
		}
	}
	if easy != 20 {
		t.Fatalf("expected all 20 easy matches kept, got %d", easy)
	}
	// backfill follows upstream order: the first 30 hard words.
	for i := 0; i < 30; i++ {
		if w := fmt.Sprintf("w2_%02d", i); !seen[w] {
			t.Errorf("expected backfilled %q", w)
		}
	}
}

func TestFetchPoolTruncatesLargeTier(t *testing.T) {
	candidates := syntheticCandidates(120, "3")
	pool := newTestSource(&stubLookup{candidates: candidates}, nil).FetchPool(context.Background(), domain.DifficultyHard)
	if len(pool.Words) != PoolSize {
		t.Fatalf("got %d, want %d", len(pool.Words), PoolSize)
	}
	seen := map[string]bool{}
	for _, w := range pool.Words {
		if seen[w] {
			t.Fatalf("duplicate %q", w)
		}
		seen[w] = true
	}
}

func TestSelectWordsShuffles(t *testing.T) {
	candidates := syntheticCandidates(50, "90")
	got := SelectWords(candidates, domain.DifficultyEasy, PoolSize, rand.New(rand.NewSource(7)))
	sorted := append([]string(nil), got...)
	sort.Strings(sorted)
	inOrder := true
	for i := range got {
		if got[i] != candidates[i].Word {
			inOrder = false
		}
		if sorted[i] != candidates[i].Word {
			t.Fatalf("selection is not a permutation of the input")
		}
	}
	if inOrder {
		t.Fatalf("expected a shuffled order")
	}
}

func TestFetchPoolFallsBackOnError(t *testing.T) {
	pool := newTestSource(&stubLookup{err: errors.New("dial tcp: refused")}, nil).FetchPool(context.Background(), domain.DifficultyMedium)
	if !pool.Fallback {
		t.Fatalf("expected fallback pool")
	}
	if !errors.Is(pool.Warning, ErrLookupFailed) {
		t.Fatalf("expected lookup warning, got %v", pool.Warning)
	}
	want := DefaultFallbackWords()
	for i, w := range pool.Words {
		if w != want[i] {
			t.Fatalf("word %d = %q, want %q", i, w, want[i])
		}
	}
	if pool.Words[0] != "Adventure" || pool.Words[4] != "Energy" || pool.Words[49] != "Practice" {
		t.Fatalf("unexpected fallback list %v", pool.Words)
	}
}

func TestFetchPoolFallsBackOnEmpty(t *testing.T) {
	pool := newTestSource(&stubLookup{}, nil).FetchPool(context.Background(), domain.DifficultyHard)
	if !pool.Fallback || !errors.Is(pool.Warning, ErrNoCandidates) {
		t.Fatalf("expected empty-response fallback, got %+v", pool)
	}
}

func TestFetchPoolUsesLoadedFallback(t *testing.T) {
	fallback := stubFallback{words: []string{"alpha", "beta", "gamma"}}
	pool := newTestSource(&stubLookup{err: errors.New("down")}, fallback).FetchPool(context.Background(), domain.DifficultyEasy)
	if len(pool.Words) != PoolSize {
		t.Fatalf("got %d words", len(pool.Words))
	}
	if pool.Words[0] != "alpha" || pool.Words[3] != "alpha" || pool.Words[49] != "beta" {
		t.Fatalf("expected cyclic padding, got %v", pool.Words)
	}

	broken := stubFallback{err: errors.New("db down")}
	pool = newTestSource(&stubLookup{err: errors.New("down")}, broken).FetchPool(context.Background(), domain.DifficultyEasy)
	if pool.Words[0] != "Adventure" {
		t.Fatalf("expected built-in list when loader fails, got %q", pool.Words[0])
	}
}

func TestFetchPoolRepeatsScarceCandidates(t *testing.T) {
	pool := newTestSource(&stubLookup{candidates: syntheticCandidates(4, "50")}, nil).FetchPool(context.Background(), domain.DifficultyEasy)
	if pool.Fallback {
		t.Fatalf("scarce upstream data should not switch to the fallback list")
	}
	if !errors.Is(pool.Warning, ErrScarceCandidates) {
		t.Fatalf("expected scarcity warning, got %v", pool.Warning)
	}
	if pool.Words[0] != pool.Words[4] {
		t.Fatalf("expected cyclic repetition, got %v", pool.Words[:8])
	}
}
