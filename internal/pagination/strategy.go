// Package pagination retrieves an oldest-first stream of normalized
// transactions for an address, bounded by a requested count. Two
// interchangeable strategies trade off cost and reliability: the
// ascending batch fetch is cheap per transaction but depends on a
// single enhanced RPC method; the signature scan is expensive but only
// needs the two basic RPC calls. A fallback decorator selects between
// them.
package pagination

import (
	"context"
	"log"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/helius"
	"solana-early-bidders/internal/observability"
)

// Strategy produces up to limit normalized transactions for an address,
// oldest first, optionally filtered to blockTime >= sinceTime (0 means
// no filter). Credits consumed by every call actually issued are
// recorded on the meter, including calls made before a failure.
type Strategy interface {
	Fetch(ctx context.Context, address string, limit int, sinceTime int64, meter *helius.Meter) ([]*domain.NormalizedTransaction, error)
}

// Fallback tries the primary strategy and, on any error, restarts the
// fetch from scratch with the secondary. Partial progress of the failed
// primary is discarded; its recorded credit spend is not.
type Fallback struct {
	primary   Strategy
	secondary Strategy
	logger    *log.Logger
	verbose   bool
}

// NewFallback creates a fallback decorator over two strategies.
func NewFallback(primary, secondary Strategy, logger *log.Logger, verbose bool) *Fallback {
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
		verbose:   verbose,
	}
}

// New creates the default strategy chain for a client: ascending batch
// fetch with a signature-scan fallback.
func New(client helius.Client, logger *log.Logger, verbose bool) *Fallback {
	return NewFallback(
		NewAscending(client, logger, verbose),
		NewSignatureScan(client, logger, verbose),
		logger,
		verbose,
	)
}

// Compile-time interface check.
var _ Strategy = (*Fallback)(nil)

// Fetch implements Strategy.
func (f *Fallback) Fetch(ctx context.Context, address string, limit int, sinceTime int64, meter *helius.Meter) ([]*domain.NormalizedTransaction, error) {
	txs, err := f.primary.Fetch(ctx, address, limit, sinceTime, meter)
	if err == nil {
		return txs, nil
	}

	f.log("primary strategy failed for %s, falling back: %v", address, err)
	observability.RecordFallbackActivation()
	return f.secondary.Fetch(ctx, address, limit, sinceTime, meter)
}

func (f *Fallback) log(format string, args ...interface{}) {
	if f.verbose {
		f.logger.Printf("[pagination] "+format, args...)
	}
}
