// Package analysis runs the early-bidder pipeline: retrieve the earliest
// transactions of a mint, extract buy events, and aggregate them into a
// ranked list of the wallets that bought soonest and largest.
package analysis

import (
	"sort"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/extract"
)

// Aggregator folds an oldest-first transaction stream into per-wallet
// buy totals under a time-window and a per-event minimum-spend policy.
// Not safe for concurrent use; each analysis owns its own instance.
type Aggregator struct {
	extractor *extract.LargestNativeSenderHeuristic
	mint      string
	minUSD    float64
	windowEnd int64

	buyers map[string]*domain.BuyerAggregate
}

// NewAggregator creates an aggregator for one analysis window.
// windowEnd is the unix-seconds cutoff; transactions after it are
// ignored. minUSD applies to each individual event, not to the wallet's
// running total.
func NewAggregator(extractor *extract.LargestNativeSenderHeuristic, mint string, minUSD float64, windowEnd int64) *Aggregator {
	return &Aggregator{
		extractor: extractor,
		mint:      mint,
		minUSD:    minUSD,
		windowEnd: windowEnd,
		buyers:    make(map[string]*domain.BuyerAggregate),
	}
}

// Consume folds one transaction into the running totals. Transactions
// without a timestamp, outside the window, without a qualifying buy,
// from an off-curve wallet, or below the per-event threshold contribute
// nothing.
func (a *Aggregator) Consume(tx *domain.NormalizedTransaction) {
	if tx == nil || !tx.HasTimestamp() {
		return
	}
	if tx.BlockTime > a.windowEnd {
		return
	}

	event, ok := a.extractor.ExtractBuy(tx, a.mint)
	if !ok {
		return
	}

	// Off-curve addresses are derived accounts that cannot sign and so
	// cannot be real buyers.
	if !extract.OnCurve(event.Wallet) {
		return
	}

	if event.USDAmount < a.minUSD {
		return
	}

	agg, ok := a.buyers[event.Wallet]
	if !ok {
		agg = &domain.BuyerAggregate{
			Wallet:       event.Wallet,
			FirstBuyTime: event.BlockTime,
		}
		a.buyers[event.Wallet] = agg
	}

	agg.TotalUSD += event.USDAmount
	agg.TransactionCount++
	if event.BlockTime < agg.FirstBuyTime {
		agg.FirstBuyTime = event.BlockTime
	}
}

// Finalize computes averages and returns all aggregates sorted ascending
// by first buy time. The aggregator must not be consumed further after.
func (a *Aggregator) Finalize() []*domain.BuyerAggregate {
	result := make([]*domain.BuyerAggregate, 0, len(a.buyers))
	for _, agg := range a.buyers {
		agg.AverageUSD = agg.TotalUSD / float64(agg.TransactionCount)
		result = append(result, agg)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].FirstBuyTime < result[j].FirstBuyTime
	})
	return result
}
