// Package pgx persists facts, aliases, clusters, and derived snapshot rows
// in Postgres through a pgx connection pool.
package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"factnet/pkg/store"
)

type Storage struct {
	pool *pgxpool.Pool
}

var _ store.FactStorage = (*Storage)(nil)

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

// Ping verifies the pool is usable before the server starts serving.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
