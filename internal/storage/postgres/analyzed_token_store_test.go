package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/storage"
	"solana-early-bidders/internal/storage/postgres"
)

func testToken(mint, name string, analyzedAt int64) *domain.AnalyzedToken {
	return &domain.AnalyzedToken{
		Mint:              mint,
		Name:              name,
		Symbol:            "TT",
		Acronym:           "TT",
		FirstBuyTime:      1700000000,
		TotalUniqueBuyers: 3,
		CreditsUsed:       101,
		AnalyzedAt:        analyzedAt,
	}
}

func TestAnalyzedTokenStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewAnalyzedTokenStore(pool)

	id, err := store.Upsert(ctx, testToken("mint1", "Token One", 1700000001000))
	require.NoError(t, err)
	require.NotZero(t, id)

	byID, err := store.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "mint1", byID.Mint)
	assert.Equal(t, "Token One", byID.Name)
	assert.Equal(t, 101, byID.CreditsUsed)
	assert.NotZero(t, byID.CreatedAt)

	byMint, err := store.GetByMint(ctx, "mint1")
	require.NoError(t, err)
	assert.Equal(t, id, byMint.ID)
}

func TestAnalyzedTokenStore_UpsertReplacesByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewAnalyzedTokenStore(pool)

	id1, err := store.Upsert(ctx, testToken("mint1", "First Run", 1000))
	require.NoError(t, err)

	id2, err := store.Upsert(ctx, testToken("mint1", "Second Run", 2000))
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "re-analysis must reuse the row")

	rec, err := store.GetByMint(ctx, "mint1")
	require.NoError(t, err)
	assert.Equal(t, "Second Run", rec.Name)
	assert.Equal(t, int64(2000), rec.AnalyzedAt)
}

func TestAnalyzedTokenStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewAnalyzedTokenStore(pool)

	_, err := store.GetByID(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetByMint(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAnalyzedTokenStore_ListAndSearch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewAnalyzedTokenStore(pool)

	_, err := store.Upsert(ctx, testToken("MintPepe1111", "Pepe Classic", 1000))
	require.NoError(t, err)
	_, err = store.Upsert(ctx, testToken("MintDoge2222", "Doge", 2000))
	require.NoError(t, err)

	list, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "MintDoge2222", list[0].Mint, "newest first")

	page, err := store.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "MintPepe1111", page[0].Mint)

	found, err := store.Search(ctx, "pepe", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "MintPepe1111", found[0].Mint)
}
