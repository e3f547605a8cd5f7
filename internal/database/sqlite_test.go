package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "samples.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)

	require.NoError(t, store.WriteSamples(ctx, []Sample{
		{Metric: "Latency", Strategy: "A2", Held: 32, Varying: 1, Value: 0.21},
		{Metric: "Latency", Strategy: "A1", Held: 32, Varying: 1, Value: 0.26},
		{Metric: "CacheMiss", Strategy: "A1", Held: 1, Varying: 32, Value: 1000},
	}))
	// Upsert replaces the stored value.
	require.NoError(t, store.WriteSamples(ctx, []Sample{
		{Metric: "Latency", Strategy: "A1", Held: 32, Varying: 1, Value: 0.3},
	}))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	samples, err := store.QuerySamples(ctx, "Latency")
	require.NoError(t, err)
	require.Equal(t, []Sample{
		{Metric: "Latency", Strategy: "A1", Held: 32, Varying: 1, Value: 0.3},
		{Metric: "Latency", Strategy: "A2", Held: 32, Varying: 1, Value: 0.21},
	}, samples)

	none, err := store.QuerySamples(ctx, "Throughput")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("  ")
	require.EqualError(t, err, "storage path is required")
}
