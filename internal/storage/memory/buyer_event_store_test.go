package memory

import (
	"context"
	"testing"

	"solana-early-bidders/internal/domain"
)

func eventRow(mint, wallet string, usd float64) *domain.BuyerEventRow {
	return &domain.BuyerEventRow{
		Mint:             mint,
		Wallet:           wallet,
		FirstBuyTime:     1700000000,
		TotalUSD:         usd,
		TransactionCount: 1,
		AnalyzedAt:       1700000000000,
	}
}

func TestBuyerEventStore_MultiTokenWallets(t *testing.T) {
	store := NewBuyerEventStore()
	ctx := context.Background()

	rows := []*domain.BuyerEventRow{
		eventRow("mint1", "walletA", 100),
		eventRow("mint2", "walletA", 200),
		eventRow("mint3", "walletA", 50),
		eventRow("mint1", "walletB", 60),
		eventRow("mint2", "walletB", 60),
		eventRow("mint1", "walletC", 500),
	}
	if err := store.InsertBatch(ctx, rows); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	got, err := store.MultiTokenWallets(ctx, 2, 10)
	if err != nil {
		t.Fatalf("MultiTokenWallets failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 wallets across >= 2 tokens, got %d", len(got))
	}
	if got[0].Wallet != "walletA" || got[0].TokenCount != 3 {
		t.Errorf("top wallet = %+v, want walletA across 3 tokens", got[0])
	}
	if got[1].Wallet != "walletB" || got[1].TokenCount != 2 {
		t.Errorf("second wallet = %+v, want walletB across 2 tokens", got[1])
	}
	if got[0].TotalUSD != 350 {
		t.Errorf("walletA total = %.2f, want 350.00", got[0].TotalUSD)
	}
}

func TestBuyerEventStore_RepeatAnalysisCountsOnce(t *testing.T) {
	store := NewBuyerEventStore()
	ctx := context.Background()

	// Two analysis runs of the same mint archive the wallet twice; it
	// still counts as one token.
	rows := []*domain.BuyerEventRow{
		eventRow("mint1", "walletA", 100),
		eventRow("mint1", "walletA", 100),
	}
	if err := store.InsertBatch(ctx, rows); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	got, err := store.MultiTokenWallets(ctx, 2, 10)
	if err != nil {
		t.Fatalf("MultiTokenWallets failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("repeat analysis inflated token count: %+v", got)
	}
}

func TestBuyerEventStore_Limit(t *testing.T) {
	store := NewBuyerEventStore()
	ctx := context.Background()

	rows := []*domain.BuyerEventRow{
		eventRow("mint1", "walletA", 1),
		eventRow("mint1", "walletB", 1),
		eventRow("mint1", "walletC", 1),
	}
	if err := store.InsertBatch(ctx, rows); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	got, err := store.MultiTokenWallets(ctx, 1, 2)
	if err != nil {
		t.Fatalf("MultiTokenWallets failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limit not applied: got %d wallets", len(got))
	}
}
