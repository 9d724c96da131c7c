package balance

import (
	"context"
	"math"
	"testing"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/helius/stub"
	"solana-early-bidders/internal/storage/memory"
)

const (
	walletA = "4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM"
	walletB = "CiDwVBFgWV9E5MvXWoLgnEgn2hK7rJikbvfWavzAQz3"
	walletC = "GcdayuLaLyrdmUu324nahyv33G5poQdLUEZ1nEytDgb"
)

func seedWallets(t *testing.T, store *memory.BuyerWalletStore, tokenID int64, wallets ...string) {
	t.Helper()
	rows := make([]*domain.BuyerWallet, 0, len(wallets))
	for _, w := range wallets {
		rows = append(rows, &domain.BuyerWallet{Wallet: w, TotalUSD: 100, TransactionCount: 1})
	}
	if err := store.ReplaceForToken(context.Background(), tokenID, rows); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestRefreshTokenUpdatesBalances(t *testing.T) {
	client := stub.NewClient()
	client.Balances[walletA] = 2_500_000_000 // 2.5 SOL = $500 at $200
	client.Balances[walletB] = 500_000_000   // 0.5 SOL = $100

	store := memory.NewBuyerWalletStore()
	seedWallets(t, store, 7, walletA, walletB)

	r := NewRefresher(client, store, 0, 2, nil, nil, false)
	updated, credits, err := r.RefreshToken(context.Background(), 7)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}
	if credits != 2 {
		t.Errorf("credits = %d, want 2", credits)
	}

	rows, err := store.GetByTokenID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	byWallet := make(map[string]*domain.BuyerWallet, len(rows))
	for _, row := range rows {
		byWallet[row.Wallet] = row
	}
	if got := byWallet[walletA].BalanceUSD; got == nil || math.Abs(*got-500) > 1e-9 {
		t.Errorf("walletA balance = %v, want 500", got)
	}
	if got := byWallet[walletB].BalanceUSD; got == nil || math.Abs(*got-100) > 1e-9 {
		t.Errorf("walletB balance = %v, want 100", got)
	}
}

func TestRefreshTokenSkipsFailedLookups(t *testing.T) {
	client := stub.NewClient()
	client.Balances[walletA] = 1_000_000_000
	// walletC has no configured balance, the lookup fails.

	store := memory.NewBuyerWalletStore()
	seedWallets(t, store, 3, walletA, walletC)

	r := NewRefresher(client, store, 0, 1, nil, nil, false)
	updated, _, err := r.RefreshToken(context.Background(), 3)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	rows, _ := store.GetByTokenID(context.Background(), 3)
	for _, row := range rows {
		if row.Wallet == walletC && row.BalanceUSD != nil {
			t.Errorf("failed wallet got a balance: %v", *row.BalanceUSD)
		}
	}
}

func TestRefreshTokenCustomPrice(t *testing.T) {
	client := stub.NewClient()
	client.Balances[walletA] = 1_000_000_000 // 1 SOL

	store := memory.NewBuyerWalletStore()
	seedWallets(t, store, 1, walletA)

	r := NewRefresher(client, store, 150, 0, nil, nil, false)
	if _, _, err := r.RefreshToken(context.Background(), 1); err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}

	rows, _ := store.GetByTokenID(context.Background(), 1)
	if got := rows[0].BalanceUSD; got == nil || math.Abs(*got-150) > 1e-9 {
		t.Errorf("balance = %v, want 150", got)
	}
}

func TestRefreshTokenNoWallets(t *testing.T) {
	r := NewRefresher(stub.NewClient(), memory.NewBuyerWalletStore(), 0, 0, nil, nil, false)
	updated, credits, err := r.RefreshToken(context.Background(), 99)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if updated != 0 || credits != 0 {
		t.Errorf("expected no work, got updated=%d credits=%d", updated, credits)
	}
}
