package pagination

import (
	"context"
	"log"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/helius"
	"solana-early-bidders/internal/normalize"
	"solana-early-bidders/internal/observability"
)

// signatureScanCap bounds the total number of signatures accumulated
// during the backward scan.
const signatureScanCap = 50_000

// SignatureScan is the fallback strategy: it pages backwards through
// getSignaturesForAddress, reverses to oldest-first, truncates to the
// requested count, then fetches full detail per signature. Much less
// efficient than the ascending fetch but only depends on the two basic
// RPC methods.
type SignatureScan struct {
	client  helius.Client
	logger  *log.Logger
	verbose bool
}

// NewSignatureScan creates the signature scan strategy.
func NewSignatureScan(client helius.Client, logger *log.Logger, verbose bool) *SignatureScan {
	if logger == nil {
		logger = log.Default()
	}
	return &SignatureScan{client: client, logger: logger, verbose: verbose}
}

// Compile-time interface check.
var _ Strategy = (*SignatureScan)(nil)

// Fetch implements Strategy.
func (s *SignatureScan) Fetch(ctx context.Context, address string, limit int, sinceTime int64, meter *helius.Meter) ([]*domain.NormalizedTransaction, error) {
	signatures, err := s.collectSignatures(ctx, address, sinceTime, meter)
	if err != nil {
		return nil, err
	}

	// Backward pagination yields newest first; reverse before truncating
	// so the earliest transactions survive.
	reverse(signatures)
	if limit > 0 && len(signatures) > limit {
		signatures = signatures[:limit]
	}

	s.log("fetching detail for %d earliest signatures of %s", len(signatures), address)

	var result []*domain.NormalizedTransaction
	for _, sig := range signatures {
		raw, cost, err := s.client.GetTransaction(ctx, sig.Signature)
		meter.Add(cost)
		if err != nil {
			// Individual detail failures never abort the batch.
			continue
		}
		tx := normalize.Transaction(raw)
		if tx == nil {
			observability.RecordNormalizationDrop()
			continue
		}
		observability.RecordTransactionNormalized()
		result = append(result, tx)
	}

	return result, nil
}

// collectSignatures pages backwards through the signature history up to
// the safety cap, optionally stopping once timestamps precede sinceTime.
func (s *SignatureScan) collectSignatures(ctx context.Context, address string, sinceTime int64, meter *helius.Meter) ([]helius.SignatureInfo, error) {
	var all []helius.SignatureInfo
	var before string

	for {
		sigs, cost, err := s.client.GetSignatures(ctx, address, helius.SignatureBatchSize, before)
		meter.Add(cost)
		if err != nil {
			return nil, err
		}
		if len(sigs) == 0 {
			break
		}

		if sinceTime > 0 {
			kept, pastCreation := filterSince(sigs, sinceTime)
			all = append(all, kept...)
			if pastCreation {
				s.log("reached creation time after %d signatures", len(all))
				break
			}
			if len(kept) == 0 && before != "" {
				break
			}
		} else {
			all = append(all, sigs...)
		}

		if len(sigs) < helius.SignatureBatchSize {
			break // reached the beginning of history
		}
		if len(all) >= signatureScanCap {
			s.log("reached signature safety cap of %d", signatureScanCap)
			break
		}

		before = sigs[len(sigs)-1].Signature
	}

	return all, nil
}

// filterSince keeps signatures at or after sinceTime and reports whether
// the batch crossed below it.
func filterSince(sigs []helius.SignatureInfo, sinceTime int64) ([]helius.SignatureInfo, bool) {
	var kept []helius.SignatureInfo
	for _, sig := range sigs {
		if sig.BlockTime == nil {
			continue
		}
		if *sig.BlockTime >= sinceTime {
			kept = append(kept, sig)
			continue
		}
		return kept, true
	}
	return kept, false
}

func reverse(sigs []helius.SignatureInfo) {
	for i, j := 0, len(sigs)-1; i < j; i, j = i+1, j-1 {
		sigs[i], sigs[j] = sigs[j], sigs[i]
	}
}

func (s *SignatureScan) log(format string, args ...interface{}) {
	if s.verbose {
		s.logger.Printf("[pagination/scan] "+format, args...)
	}
}
