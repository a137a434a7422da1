package memory

import (
	"context"

	"vocab-sprint/internal/words"
)

// StaticFallbackLoader serves a fixed fallback word list (useful for tests/demos).
type StaticFallbackLoader struct {
	words []string
}

// NewStaticFallbackLoader uses the built-in list when list is empty.
func NewStaticFallbackLoader(list []string) *StaticFallbackLoader {
	if len(list) == 0 {
		list = words.DefaultFallbackWords()
	}
	return &StaticFallbackLoader{words: append([]string(nil), list...)}
}

func (l *StaticFallbackLoader) LoadFallback(_ context.Context) ([]string, error) {
	return append([]string(nil), l.words...), nil
}
