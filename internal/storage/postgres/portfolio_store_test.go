package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
	"meme-market-sim/internal/storage/postgres"
)

func TestPortfolioStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPortfolioStore(pool)
	ctx := context.Background()

	p := &domain.Portfolio{
		TraderID:        "trader-1",
		TokenID:         "tok-1",
		TokenBalance:    100,
		AverageBuyPrice: 0.02,
		TotalInvested:   2.0,
		FirstPurchase:   1000,
		LastTransaction: 1000,
	}
	require.NoError(t, store.Upsert(ctx, p))

	got, err := store.Get(ctx, "trader-1", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.TokenBalance)
	assert.Equal(t, 0.02, got.AverageBuyPrice)
	assert.Equal(t, 2.0, got.TotalInvested)
	assert.Equal(t, int64(1000), got.FirstPurchase)

	// Second upsert on the same (trader, token) replaces the row
	p.TokenBalance = 250
	p.TotalInvested = 5.5
	p.RealizedProfit = 1.25
	p.LastTransaction = 2000
	require.NoError(t, store.Upsert(ctx, p))

	got, err = store.Get(ctx, "trader-1", "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 250.0, got.TokenBalance)
	assert.Equal(t, 5.5, got.TotalInvested)
	assert.Equal(t, 1.25, got.RealizedProfit)
	assert.Equal(t, int64(2000), got.LastTransaction)

	_, err = store.Get(ctx, "trader-1", "tok-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPortfolioStore_GetByTrader(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPortfolioStore(pool)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Upsert(ctx, &domain.Portfolio{
			TraderID:     "trader-1",
			TokenID:      fmt.Sprintf("tok-%d", i),
			TokenBalance: float64(i * 10),
		}))
	}
	// Sold-out position is excluded from listings
	require.NoError(t, store.Upsert(ctx, &domain.Portfolio{
		TraderID:     "trader-1",
		TokenID:      "tok-empty",
		TokenBalance: 0,
	}))
	require.NoError(t, store.Upsert(ctx, &domain.Portfolio{
		TraderID:     "trader-2",
		TokenID:      "tok-1",
		TokenBalance: 5,
	}))

	got, err := store.GetByTrader(ctx, "trader-1")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, p := range got {
		assert.Equal(t, "trader-1", p.TraderID)
		assert.Greater(t, p.TokenBalance, 0.0)
	}

	got, err = store.GetByTrader(ctx, "trader-none")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPortfolioStore_CountHolders(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewPortfolioStore(pool)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		require.NoError(t, store.Upsert(ctx, &domain.Portfolio{
			TraderID:     fmt.Sprintf("trader-%d", i),
			TokenID:      "tok-1",
			TokenBalance: 10,
		}))
	}
	// Zero balance does not count as holding
	require.NoError(t, store.Upsert(ctx, &domain.Portfolio{
		TraderID:     "trader-5",
		TokenID:      "tok-1",
		TokenBalance: 0,
	}))

	n, err := store.CountHolders(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = store.CountHolders(ctx, "tok-missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
