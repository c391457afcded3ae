package sequence

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingCounters struct {
	*memCounters
	calls atomic.Int64
}

func (c *countingCounters) Reserve(ctx context.Context, prefix, scope string, n int64) (int64, error) {
	c.calls.Add(1)
	return c.memCounters.Reserve(ctx, prefix, scope, n)
}

func TestBatchOneRoundTripPerScope(t *testing.T) {
	counters := &countingCounters{memCounters: newMemCounters()}
	batch := NewBatch(counters, PrefixCustomer)
	ctx := context.Background()

	require.NoError(t, batch.ReserveScope(ctx, "NVA", 3))
	require.NoError(t, batch.ReserveScope(ctx, "TVH", 2))

	for want := int64(1); want <= 3; want++ {
		got, err := batch.Next("NVA")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for want := int64(1); want <= 2; want++ {
		got, err := batch.Next("TVH")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.Equal(t, int64(2), counters.calls.Load())
}

func TestBatchExhaustedBlock(t *testing.T) {
	batch := NewBatch(newMemCounters(), PrefixCustomer)
	require.NoError(t, batch.ReserveScope(context.Background(), "NVA", 1))

	_, err := batch.Next("NVA")
	require.NoError(t, err)
	_, err = batch.Next("NVA")
	assert.Error(t, err)
}

func TestBatchUnreservedScope(t *testing.T) {
	batch := NewBatch(newMemCounters(), PrefixCustomer)
	_, err := batch.Next("NVA")
	assert.Error(t, err)
}

func TestBatchContinuesExistingSequence(t *testing.T) {
	counters := newMemCounters()
	gen := NewGenerator(counters)
	ctx := context.Background()

	_, err := gen.CustomerID(ctx, "NVA")
	require.NoError(t, err)

	batch := NewBatch(counters, PrefixCustomer)
	require.NoError(t, batch.ReserveScope(ctx, "NVA", 2))

	got, err := batch.Next("NVA")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}
