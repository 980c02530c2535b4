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

// makeTrade returns a successful buy with consistent pool-after state.
func makeTrade(txHash, tokenID, traderID string, ts int64) *domain.Trade {
	return &domain.Trade{
		TxHash:         txHash,
		TokenID:        tokenID,
		TraderID:       traderID,
		Type:           domain.TradeTypeBuy,
		TokenAmount:    1000,
		CashAmount:     10,
		PricePerToken:  0.01,
		PriceImpact:    0.2,
		TradingFee:     0.03,
		PoolTokenAfter: 999_000,
		PoolBaseAfter:  10_010,
		PriceAfter:     10_010.0 / 999_000.0,
		IsSuccessful:   true,
		Timestamp:      ts,
	}
}

func TestTradeStore_AppendAndGetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()

	tr := makeTrade("0xabc", "tok-1", "trader-1", 1000)
	require.NoError(t, store.Append(ctx, tr))

	got, err := store.GetRecent(ctx, "tok-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0xabc", got[0].TxHash)
	assert.Equal(t, domain.TradeTypeBuy, got[0].Type)
	assert.Equal(t, 1000.0, got[0].TokenAmount)
	assert.Equal(t, 10.0, got[0].CashAmount)
	assert.Equal(t, 0.03, got[0].TradingFee)
	assert.InDelta(t, 10_010.0/999_000.0, got[0].PriceAfter, 1e-12)
	assert.True(t, got[0].IsSuccessful)
}

func TestTradeStore_Append_Duplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, makeTrade("0xabc", "tok-1", "trader-1", 1000)))

	err := store.Append(ctx, makeTrade("0xabc", "tok-2", "trader-2", 2000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTradeStore_Append_FailedTrade(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()

	tr := makeTrade("0xfail", "tok-1", "trader-1", 1000)
	tr.IsSuccessful = false
	tr.FailureReason = "insufficient funds"
	tr.TokenAmount = 0
	require.NoError(t, store.Append(ctx, tr))

	got, err := store.GetRecent(ctx, "tok-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsSuccessful)
	assert.Equal(t, "insufficient funds", got[0].FailureReason)
}

func TestTradeStore_GetRecent_OrderingAndFilter(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		tokenID := "tok-1"
		if i%2 == 0 {
			tokenID = "tok-2"
		}
		tr := makeTrade(fmt.Sprintf("0x%03d", i), tokenID, "trader-1", int64(i*1000))
		require.NoError(t, store.Append(ctx, tr))
	}

	// Newest first, per-token filter
	got, err := store.GetRecent(ctx, "tok-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(5000), got[0].Timestamp)
	assert.Equal(t, int64(3000), got[1].Timestamp)
	assert.Equal(t, int64(1000), got[2].Timestamp)

	// Empty token id means all tokens
	got, err = store.GetRecent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = store.GetRecent(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5000), got[0].Timestamp)
	assert.Equal(t, int64(4000), got[1].Timestamp)
}

func TestTradeStore_GetByTrader(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTradeStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, makeTrade("0x001", "tok-1", "trader-1", 1000)))
	require.NoError(t, store.Append(ctx, makeTrade("0x002", "tok-2", "trader-1", 2000)))
	require.NoError(t, store.Append(ctx, makeTrade("0x003", "tok-1", "trader-2", 3000)))

	got, err := store.GetByTrader(ctx, "trader-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0x002", got[0].TxHash)
	assert.Equal(t, "0x001", got[1].TxHash)

	got, err = store.GetByTrader(ctx, "trader-none", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
