package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meme-market-sim/internal/storage"
	"meme-market-sim/internal/storage/postgres"
)

func TestBalanceStore_CreditAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewBalanceStore(pool)
	ctx := context.Background()

	// Unknown trader reads as zero
	bal, err := store.Get(ctx, "trader-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bal)

	require.NoError(t, store.Credit(ctx, "trader-1", 100))
	require.NoError(t, store.Credit(ctx, "trader-1", 50))

	bal, err = store.Get(ctx, "trader-1")
	require.NoError(t, err)
	assert.Equal(t, 150.0, bal)
}

func TestBalanceStore_Debit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewBalanceStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Credit(ctx, "trader-1", 100))

	require.NoError(t, store.Debit(ctx, "trader-1", 40))

	bal, err := store.Get(ctx, "trader-1")
	require.NoError(t, err)
	assert.Equal(t, 60.0, bal)

	// Overdraft is rejected and leaves the balance untouched
	err = store.Debit(ctx, "trader-1", 60.01)
	assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

	bal, err = store.Get(ctx, "trader-1")
	require.NoError(t, err)
	assert.Equal(t, 60.0, bal)

	// Draining to exactly zero is allowed
	require.NoError(t, store.Debit(ctx, "trader-1", 60))

	bal, err = store.Get(ctx, "trader-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bal)
}

func TestBalanceStore_Debit_UnknownTrader(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewBalanceStore(pool)
	ctx := context.Background()

	err := store.Debit(ctx, "trader-missing", 10)
	assert.ErrorIs(t, err, storage.ErrInsufficientFunds)
}
