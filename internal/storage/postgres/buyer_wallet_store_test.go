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

// createTestToken inserts a parent analyzed_tokens row and returns its ID.
func createTestToken(t *testing.T, ctx context.Context, pool *postgres.Pool, mint string) int64 {
	t.Helper()

	store := postgres.NewAnalyzedTokenStore(pool)
	id, err := store.Upsert(ctx, testToken(mint, "Wallet Test Token", 1000))
	require.NoError(t, err)
	return id
}

func TestBuyerWalletStore_ReplaceAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tokenID := createTestToken(t, ctx, pool, "wallet-mint-1")
	store := postgres.NewBuyerWalletStore(pool)

	wallets := []*domain.BuyerWallet{
		{Wallet: "walletA", FirstBuyTime: 1000, TotalUSD: 60, TransactionCount: 1, AverageUSD: 60},
		{Wallet: "walletB", FirstBuyTime: 1010, TotalUSD: 120, TransactionCount: 2, AverageUSD: 60},
	}
	require.NoError(t, store.ReplaceForToken(ctx, tokenID, wallets))

	got, err := store.GetByTokenID(ctx, tokenID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "walletA", got[0].Wallet)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, tokenID, got[0].TokenID)
	assert.Nil(t, got[0].BalanceUSD)
	assert.NotZero(t, got[0].CreatedAt)
}

func TestBuyerWalletStore_ReplaceOverwrites(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tokenID := createTestToken(t, ctx, pool, "wallet-mint-2")
	store := postgres.NewBuyerWalletStore(pool)

	require.NoError(t, store.ReplaceForToken(ctx, tokenID, []*domain.BuyerWallet{
		{Wallet: "walletA"}, {Wallet: "walletB"},
	}))
	require.NoError(t, store.ReplaceForToken(ctx, tokenID, []*domain.BuyerWallet{
		{Wallet: "walletC"},
	}))

	got, err := store.GetByTokenID(ctx, tokenID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "walletC", got[0].Wallet)
}

func TestBuyerWalletStore_DuplicateWalletInBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tokenID := createTestToken(t, ctx, pool, "wallet-mint-3")
	store := postgres.NewBuyerWalletStore(pool)

	err := store.ReplaceForToken(ctx, tokenID, []*domain.BuyerWallet{
		{Wallet: "walletA"}, {Wallet: "walletA"},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The failed batch must not leave partial rows.
	got, err := store.GetByTokenID(ctx, tokenID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuyerWalletStore_UpdateBalance(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	tokenID := createTestToken(t, ctx, pool, "wallet-mint-4")
	store := postgres.NewBuyerWalletStore(pool)

	require.NoError(t, store.ReplaceForToken(ctx, tokenID, []*domain.BuyerWallet{
		{Wallet: "walletA"},
	}))

	require.NoError(t, store.UpdateBalance(ctx, tokenID, "walletA", 1234.5))

	got, err := store.GetByTokenID(ctx, tokenID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].BalanceUSD)
	assert.InDelta(t, 1234.5, *got[0].BalanceUSD, 0.0001)

	err = store.UpdateBalance(ctx, tokenID, "missing", 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
