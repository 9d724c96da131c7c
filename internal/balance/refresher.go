// Package balance refreshes the current native holdings of persisted
// early-buyer wallets.
package balance

import (
	"context"
	"log"
	"sync"

	"solana-early-bidders/internal/extract"
	"solana-early-bidders/internal/helius"
	"solana-early-bidders/internal/observability"
	"solana-early-bidders/internal/storage"
)

// DefaultConcurrency bounds the number of in-flight balance lookups.
const DefaultConcurrency = 4

// Refresher fetches live wallet balances and writes the USD valuation
// back to the wallet store.
type Refresher struct {
	client      helius.Client
	wallets     storage.BuyerWalletStore
	solPriceUSD float64
	concurrency int
	metrics     *observability.Metrics // optional
	logger      *log.Logger
	verbose     bool
}

// NewRefresher creates a refresher. A zero or negative solPriceUSD
// falls back to the extractor's fixed rate; metrics may be nil.
func NewRefresher(client helius.Client, wallets storage.BuyerWalletStore, solPriceUSD float64, concurrency int, metrics *observability.Metrics, logger *log.Logger, verbose bool) *Refresher {
	if solPriceUSD <= 0 {
		solPriceUSD = extract.DefaultSOLPriceUSD
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Refresher{
		client:      client,
		wallets:     wallets,
		solPriceUSD: solPriceUSD,
		concurrency: concurrency,
		metrics:     metrics,
		logger:      logger,
		verbose:     verbose,
	}
}

// RefreshToken re-values every persisted wallet of one analyzed token.
// Individual lookup failures are skipped; the returned counts cover the
// rows actually updated and the credits spent, including failed calls.
func (r *Refresher) RefreshToken(ctx context.Context, tokenID int64) (int, int, error) {
	rows, err := r.wallets.GetByTokenID(ctx, tokenID)
	if err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}

	var (
		mu      sync.Mutex
		updated int
		credits int
	)
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, row := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(wallet string) {
			defer wg.Done()
			defer func() { <-sem }()

			lamports, cost, err := r.client.GetNativeBalance(ctx, wallet)
			mu.Lock()
			credits += cost
			mu.Unlock()
			if err != nil {
				r.log("balance lookup failed for %s: %v", wallet, err)
				return
			}

			usd := float64(lamports) / extract.LamportsPerSOL * r.solPriceUSD
			if err := r.wallets.UpdateBalance(ctx, tokenID, wallet, usd); err != nil {
				r.log("balance update failed for %s: %v", wallet, err)
				return
			}

			mu.Lock()
			updated++
			mu.Unlock()
			if r.metrics != nil {
				r.metrics.BalanceRefreshes.Inc()
			}
		}(row.Wallet)
	}
	wg.Wait()

	r.log("refreshed %d/%d wallets for token %d (%d credits)", updated, len(rows), tokenID, credits)
	return updated, credits, nil
}

func (r *Refresher) log(format string, args ...interface{}) {
	if r.verbose {
		r.logger.Printf("[balance] "+format, args...)
	}
}
