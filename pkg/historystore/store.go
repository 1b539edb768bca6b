// Package historystore persists a row per cumulative-stats publish to
// Postgres/TimescaleDB, so an operator can query the history of
// total_stats.json over time without re-parsing PCAPs. It is adapted from
// the teacher's pkg/database client: same pgxpool construction, same
// health-check-on-connect discipline, repurposed from flow-record batch
// inserts to single-row NetworkStats snapshots.
package historystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
)

// Store is a history sink backed by a Postgres connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn and ensures the history table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create history store pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history store: %w", err)
	}

	const createTable = `
CREATE TABLE IF NOT EXISTS stats_history (
	published_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	total_packets     BIGINT NOT NULL,
	total_bytes       BIGINT NOT NULL,
	by_protocol       JSONB NOT NULL
)`
	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create stats_history table: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Insert records one cumulative-stats snapshot. It satisfies
// pkg/aggregate.HistorySink.
func (s *Store) Insert(stats netmodel.NetworkStats) error {
	byProtocol, err := json.Marshal(stats.ByProtocol)
	if err != nil {
		return fmt.Errorf("marshal by_protocol: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const insert = `INSERT INTO stats_history (total_packets, total_bytes, by_protocol) VALUES ($1, $2, $3)`
	if _, err := s.pool.Exec(ctx, insert, stats.TotalPackets, stats.TotalBytesPacket, byProtocol); err != nil {
		return fmt.Errorf("insert stats history row: %w", err)
	}
	return nil
}
