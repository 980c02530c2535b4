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

// makeToken returns a valid token for tests with sensible pool defaults.
func makeToken(id, symbol string) *domain.Token {
	return &domain.Token{
		ID:                id,
		CreatorID:         "creator-1",
		Name:              "Test Token",
		Symbol:            symbol,
		TotalSupply:       1_000_000,
		CirculatingSupply: 900_000,
		InitialPrice:      0.01,
		CurrentPrice:      0.01,
		PoolTokenReserve:  900_000,
		PoolBaseReserve:   9_000,
		AllTimeHigh:       0.01,
		AllTimeLow:        0.01,
		TotalHolders:      1,
		CreatedAt:         1000,
		LastUpdated:       1000,
	}
}

func TestTokenStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenStore(pool)
	ctx := context.Background()

	tok := makeToken("tok-1", "wagmi")
	require.NoError(t, store.Insert(ctx, tok))

	got, err := store.GetByID(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.ID)
	assert.Equal(t, "creator-1", got.CreatorID)
	// Symbols are stored uppercase
	assert.Equal(t, "WAGMI", got.Symbol)
	assert.Equal(t, 1_000_000.0, got.TotalSupply)
	assert.Equal(t, 900_000.0, got.PoolTokenReserve)
	assert.Equal(t, 9_000.0, got.PoolBaseReserve)
	assert.False(t, got.IsRugged)

	_, err = store.GetByID(ctx, "tok-missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_Insert_DuplicateID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, makeToken("tok-1", "AAA")))

	err := store.Insert(ctx, makeToken("tok-1", "BBB"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenStore_Insert_DuplicateSymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, makeToken("tok-1", "AAA")))

	// Same symbol in different case still collides
	err := store.Insert(ctx, makeToken("tok-2", "aaa"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenStore_GetBySymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, makeToken("tok-1", "PEPE")))

	// Lookup is case-insensitive
	got, err := store.GetBySymbol(ctx, "pepe")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", got.ID)

	_, err = store.GetBySymbol(ctx, "DOGE")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_Update(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenStore(pool)
	ctx := context.Background()

	tok := makeToken("tok-1", "AAA")
	require.NoError(t, store.Insert(ctx, tok))

	tok.CurrentPrice = 0.05
	tok.PoolTokenReserve = 500_000
	tok.PoolBaseReserve = 25_000
	tok.Volume24h = 12_345
	tok.PriceChange24h = 400
	tok.AllTimeHigh = 0.05
	tok.TotalTransactions = 7
	tok.IsRugged = true
	tok.LastUpdated = 2000
	require.NoError(t, store.Update(ctx, tok))

	got, err := store.GetByID(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, 0.05, got.CurrentPrice)
	assert.Equal(t, 500_000.0, got.PoolTokenReserve)
	assert.Equal(t, 25_000.0, got.PoolBaseReserve)
	assert.Equal(t, 12_345.0, got.Volume24h)
	assert.Equal(t, 7, got.TotalTransactions)
	assert.True(t, got.IsRugged)
	assert.Equal(t, int64(2000), got.LastUpdated)

	err = store.Update(ctx, makeToken("tok-missing", "ZZZ"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenStore_ListActive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenStore(pool)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		tok := makeToken(fmt.Sprintf("tok-%d", i), fmt.Sprintf("SYM%d", i))
		tok.CreatedAt = int64(i * 1000)
		if i == 3 {
			tok.IsRugged = true
		}
		require.NoError(t, store.Insert(ctx, tok))
	}

	// Rugged tokens are excluded, newest first
	got, err := store.ListActive(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "tok-5", got[0].ID)
	assert.Equal(t, "tok-4", got[1].ID)
	assert.Equal(t, "tok-2", got[2].ID)
	assert.Equal(t, "tok-1", got[3].ID)

	got, err = store.ListActive(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "tok-5", got[0].ID)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestTokenStore_CountByCreator(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenStore(pool)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		tok := makeToken(fmt.Sprintf("tok-%d", i), fmt.Sprintf("SYM%d", i))
		if i == 3 {
			tok.CreatorID = "creator-2"
		}
		require.NoError(t, store.Insert(ctx, tok))
	}

	n, err := store.CountByCreator(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.CountByCreator(ctx, "creator-none")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
