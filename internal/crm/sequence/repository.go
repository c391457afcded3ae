package sequence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Counters provides atomic, scope-partitioned sequence counters.
type Counters interface {
	// Reserve atomically advances the counter for (prefix, scope) by n and
	// returns the first value of the reserved block.
	Reserve(ctx context.Context, prefix, scope string, n int64) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type counters struct {
	db dbtx
}

// NewCounters constructs a Postgres-backed Counters.
func NewCounters(db dbtx) Counters {
	return &counters{db: db}
}

// Reserve uses an upsert with an atomic increment so concurrent callers can
// never observe the same value. This replaces the read-max-then-increment
// pattern, which loses uniqueness under concurrent creations.
func (c *counters) Reserve(ctx context.Context, prefix, scope string, n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("sequence: reserve size must be positive, got %d", n)
	}
	var last int64
	err := c.db.QueryRow(ctx, `
		INSERT INTO crm_sequences (prefix, scope_key, seq)
		VALUES ($1, $2, $3)
		ON CONFLICT (prefix, scope_key)
		DO UPDATE SET seq = crm_sequences.seq + $3
		RETURNING seq
	`, prefix, scope, n).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("sequence: reserve %s/%s: %w", prefix, scope, err)
	}
	return last - n + 1, nil
}
