package clickhouse_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meme-market-sim/internal/domain"
	"meme-market-sim/internal/storage"
	chstore "meme-market-sim/internal/storage/clickhouse"
)

func TestPriceHistoryStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	err := store.InsertBulk(ctx, nil)
	assert.NoError(t, err)

	points := []*domain.PricePoint{
		{
			TokenID:      "tok-1",
			TimestampMs:  1000,
			Price:        0.015,
			TokenReserve: 900_000,
			BaseReserve:  13_500,
			Volume24h:    42_000,
		},
	}

	err = store.InsertBulk(ctx, points)
	require.NoError(t, err)

	got, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tok-1", got[0].TokenID)
	assert.Equal(t, int64(1000), got[0].TimestampMs)
	assert.Equal(t, 0.015, got[0].Price)
	assert.Equal(t, 900_000.0, got[0].TokenReserve)
	assert.Equal(t, 13_500.0, got[0].BaseReserve)
	assert.Equal(t, 42_000.0, got[0].Volume24h)
}

func TestPriceHistoryStore_InsertBulk_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PricePoint{
		{TokenID: "", TimestampMs: 1000, Price: 0.01},
	})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.InsertBulk(ctx, []*domain.PricePoint{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestPriceHistoryStore_GetByToken_Ordering(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	// Insert out of order, across two tokens
	points := []*domain.PricePoint{
		{TokenID: "tok-1", TimestampMs: 3000, Price: 0.03},
		{TokenID: "tok-2", TimestampMs: 1500, Price: 2.0},
		{TokenID: "tok-1", TimestampMs: 1000, Price: 0.01},
		{TokenID: "tok-1", TimestampMs: 2000, Price: 0.02},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1000), got[0].TimestampMs)
	assert.Equal(t, int64(2000), got[1].TimestampMs)
	assert.Equal(t, int64(3000), got[2].TimestampMs)

	got, err = store.GetByToken(ctx, "tok-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Price)

	// Unknown token returns empty
	got, err = store.GetByToken(ctx, "tok-missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPriceHistoryStore_GetByTimeRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	var points []*domain.PricePoint
	for i := 1; i <= 5; i++ {
		points = append(points, &domain.PricePoint{
			TokenID:     "tok-1",
			TimestampMs: int64(i * 1000),
			Price:       float64(i) * 0.01,
		})
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	// Inclusive on both ends
	got, err := store.GetByTimeRange(ctx, "tok-1", 2000, 4000)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2000), got[0].TimestampMs)
	assert.Equal(t, int64(4000), got[2].TimestampMs)

	// Range outside the data
	got, err = store.GetByTimeRange(ctx, "tok-1", 10_000, 20_000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPriceHistoryStore_LargeBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewPriceHistoryStore(conn)
	ctx := context.Background()

	var points []*domain.PricePoint
	for i := 0; i < 500; i++ {
		points = append(points, &domain.PricePoint{
			TokenID:      fmt.Sprintf("tok-%d", i%20),
			TimestampMs:  int64(i * 100),
			Price:        0.01,
			TokenReserve: 1_000_000,
			BaseReserve:  10_000,
		})
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetByToken(ctx, "tok-0")
	require.NoError(t, err)
	assert.Len(t, got, 25)
}
