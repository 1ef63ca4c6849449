package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// Set PAINT_N_PASS_POSTGRES_DSN to run against a scratch database.
func TestPostgresStore_Contract(t *testing.T) {
	dsn := os.Getenv("PAINT_N_PASS_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PAINT_N_PASS_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.pool.Exec(ctx, `DELETE FROM games`)
	require.NoError(t, err)

	runStoreContract(t, store)
}
