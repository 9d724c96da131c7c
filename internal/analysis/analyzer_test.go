package analysis

import (
	"context"
	"fmt"
	"testing"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/helius"
	"solana-early-bidders/internal/helius/stub"
)

// rawBuy builds a raw transaction whose normalization yields one native
// transfer from buyer and one token transfer of the test mint.
func rawBuy(sig string, blockTime int64, buyer string, usd float64) helius.RawTransaction {
	bt := blockTime
	ui := 1000.0
	lamports := uint64(usdLamports(usd))
	return helius.RawTransaction{
		Signature: sig,
		BlockTime: &bt,
		Meta: &helius.RawMeta{
			PreBalances:  []uint64{lamports + 5_000_000, 0, 2_039_280},
			PostBalances: []uint64{5_000_000, lamports, 2_039_280},
			PostTokenBalances: []helius.RawTokenBalance{{
				AccountIndex: 2,
				Mint:         testMint,
				UITokenAmount: &helius.RawTokenAmount{
					Amount:   "1000000000",
					Decimals: 6,
					UIAmount: &ui,
				},
			}},
		},
		Transaction: &helius.RawInnerTx{Message: &helius.RawMessage{
			AccountKeys: []helius.AccountKey{
				{Pubkey: buyer},
				{Pubkey: "Poo1Vau1t1111111111111111111111111111111111"},
				{Pubkey: "TokenAcct111111111111111111111111111111111"},
			},
		}},
	}
}

func seedBuys(c *stub.Client, txs ...helius.RawTransaction) {
	for i := range txs {
		c.AscendingTxs = append(c.AscendingTxs, txs[i])
		c.Details[txs[i].Signature] = &txs[i]
	}
	for i := len(txs) - 1; i >= 0; i-- {
		bt := *txs[i].BlockTime
		c.SignaturesDesc = append(c.SignaturesDesc, helius.SignatureInfo{
			Signature: txs[i].Signature,
			BlockTime: &bt,
		})
	}
}

func TestAnalyzeRanksEarliestBuyers(t *testing.T) {
	client := stub.NewClient()
	client.Metadata = &domain.TokenMetadata{Name: "Test Token", Symbol: "TT"}
	seedBuys(client,
		rawBuy("sig-0", 1000, walletB, 120),
		rawBuy("sig-1", 1010, walletA, 60),
		rawBuy("sig-2", 1020, walletC, 90),
	)

	analyzer := NewAnalyzer(client, 0, nil, false)
	result := analyzer.Analyze(context.Background(), Params{Mint: testMint})

	if result.Error != "" {
		t.Fatalf("unexpected error: %s", result.Error)
	}
	if result.FirstTransactionTime != 1000 {
		t.Errorf("first transaction time = %d, want 1000", result.FirstTransactionTime)
	}
	if result.WindowEnd != 1000+int64(DefaultWindowHours)*3600 {
		t.Errorf("window end = %d", result.WindowEnd)
	}
	if result.TotalTransactionsAnalyzed != 3 {
		t.Errorf("transactions analyzed = %d, want 3", result.TotalTransactionsAnalyzed)
	}
	if result.TotalUniqueBuyers != 3 {
		t.Errorf("unique buyers = %d, want 3", result.TotalUniqueBuyers)
	}

	wantOrder := []string{walletB, walletA, walletC}
	if len(result.Buyers) != 3 {
		t.Fatalf("expected 3 buyers, got %d", len(result.Buyers))
	}
	for i, want := range wantOrder {
		if result.Buyers[i].Wallet != want {
			t.Errorf("buyers[%d] = %s, want %s", i, result.Buyers[i].Wallet, want)
		}
	}

	// Metadata lookup plus one ascending batch.
	wantCredits := helius.CostMetadataLookup + helius.CostAscendingBatch
	if result.CreditsUsed != wantCredits {
		t.Errorf("credits = %d, want %d", result.CreditsUsed, wantCredits)
	}
	if result.TokenInfo == nil || result.TokenInfo.Name != "Test Token" {
		t.Errorf("token info not carried through: %+v", result.TokenInfo)
	}
}

func TestAnalyzeNoTransactions(t *testing.T) {
	client := stub.NewClient()

	analyzer := NewAnalyzer(client, 0, nil, false)
	result := analyzer.Analyze(context.Background(), Params{Mint: testMint})

	if result.Error != ErrMsgNoTransactions {
		t.Fatalf("error = %q, want %q", result.Error, ErrMsgNoTransactions)
	}
	if len(result.Buyers) != 0 {
		t.Errorf("expected no buyers")
	}
	// The empty ascending call was still issued and still costs.
	if result.CreditsUsed != helius.CostAscendingBatch {
		t.Errorf("credits = %d, want %d", result.CreditsUsed, helius.CostAscendingBatch)
	}
}

func TestAnalyzeNoUsableTimestamp(t *testing.T) {
	client := stub.NewClient()
	client.AscendingTxs = []helius.RawTransaction{
		{Signature: "sig-0", Meta: &helius.RawMeta{}},
		{Signature: "sig-1", Meta: &helius.RawMeta{}},
	}

	analyzer := NewAnalyzer(client, 0, nil, false)
	result := analyzer.Analyze(context.Background(), Params{Mint: testMint})

	if result.Error != ErrMsgNoTimestamp {
		t.Fatalf("error = %q, want %q", result.Error, ErrMsgNoTimestamp)
	}
	if result.CreditsUsed != helius.CostAscendingBatch {
		t.Errorf("credits = %d, want %d", result.CreditsUsed, helius.CostAscendingBatch)
	}
}

func TestAnalyzeSurvivesPrimaryStrategyFailure(t *testing.T) {
	client := stub.NewClient()
	client.FailAscending = true
	seedBuys(client,
		rawBuy("sig-0", 1000, walletA, 75),
		rawBuy("sig-1", 1010, walletB, 85),
	)

	analyzer := NewAnalyzer(client, 0, nil, false)
	result := analyzer.Analyze(context.Background(), Params{Mint: testMint})

	if result.Error != "" {
		t.Fatalf("fallback did not absorb the failure: %s", result.Error)
	}
	if len(result.Buyers) != 2 {
		t.Fatalf("expected 2 buyers via fallback, got %d", len(result.Buyers))
	}

	// One signature batch plus per-signature detail fetches; the failed
	// ascending call charged nothing before dying.
	wantCredits := helius.CostSignatureBatch + 2*helius.CostTransactionDetail
	if result.CreditsUsed != wantCredits {
		t.Errorf("credits = %d, want %d", result.CreditsUsed, wantCredits)
	}
}

func TestAnalyzeTruncatesToMaxWallets(t *testing.T) {
	client := stub.NewClient()
	wallets := []string{walletA, walletB, walletC, walletD}
	var txs []helius.RawTransaction
	for i, w := range wallets {
		txs = append(txs, rawBuy(fmt.Sprintf("sig-%d", i), int64(1000+i*10), w, 100))
	}
	seedBuys(client, txs...)

	analyzer := NewAnalyzer(client, 0, nil, false)
	result := analyzer.Analyze(context.Background(), Params{Mint: testMint, MaxWallets: 2})

	if result.TotalUniqueBuyers != 4 {
		t.Errorf("unique buyers = %d, want 4", result.TotalUniqueBuyers)
	}
	if len(result.Buyers) != 2 {
		t.Fatalf("expected 2 buyers after truncation, got %d", len(result.Buyers))
	}
	// Truncation keeps the earliest, never reorders.
	if result.Buyers[0].Wallet != walletA || result.Buyers[1].Wallet != walletB {
		t.Errorf("truncation dropped the wrong buyers: %s, %s",
			result.Buyers[0].Wallet, result.Buyers[1].Wallet)
	}
}

func TestAnalyzeMinUSDFromParams(t *testing.T) {
	client := stub.NewClient()
	seedBuys(client,
		rawBuy("sig-0", 1000, walletA, 60),
		rawBuy("sig-1", 1010, walletB, 30),
	)

	analyzer := NewAnalyzer(client, 0, nil, false)
	result := analyzer.Analyze(context.Background(), Params{Mint: testMint, MinUSD: 50})

	if len(result.Buyers) != 1 || result.Buyers[0].Wallet != walletA {
		t.Fatalf("expected only %s above $50, got %d buyers", walletA, len(result.Buyers))
	}
}
