package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// FallbackLoader reads the local fallback word bank from Postgres.
type FallbackLoader struct {
	pool *pgxpool.Pool
}

func NewFallbackLoader(pool *pgxpool.Pool) *FallbackLoader {
	return &FallbackLoader{pool: pool}
}

// LoadFallback returns the bank in position order. An empty table yields an empty list.
func (l *FallbackLoader) LoadFallback(ctx context.Context) ([]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT word FROM fallback_words ORDER BY position, word`)
	if err != nil {
		return nil, fmt.Errorf("load fallback words: %w", err)
	}
	defer rows.Close()

	var list []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, fmt.Errorf("scan fallback word: %w", err)
		}
		list = append(list, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load fallback words: %w", err)
	}
	return list, nil
}
