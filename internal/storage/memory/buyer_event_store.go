package memory

import (
	"context"
	"sort"
	"sync"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/storage"
)

// BuyerEventStore is an in-memory implementation of storage.BuyerEventStore.
type BuyerEventStore struct {
	mu   sync.RWMutex
	rows []*domain.BuyerEventRow
}

// NewBuyerEventStore creates a new in-memory buyer event archive.
func NewBuyerEventStore() *BuyerEventStore {
	return &BuyerEventStore{}
}

var _ storage.BuyerEventStore = (*BuyerEventStore)(nil)

// InsertBatch appends one analysis run's buyer observations.
func (s *BuyerEventStore) InsertBatch(_ context.Context, rows []*domain.BuyerEventRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		if r == nil || r.Wallet == "" || r.Mint == "" {
			return storage.ErrInvalidInput
		}
		rec := *r
		s.rows = append(s.rows, &rec)
	}
	return nil
}

// MultiTokenWallets retrieves wallets seen across at least minTokens
// distinct mints. Repeat analyses of one mint count once.
func (s *BuyerEventStore) MultiTokenWallets(_ context.Context, minTokens, limit int) ([]*domain.MultiTokenWallet, error) {
	if minTokens < 1 {
		minTokens = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	mints := make(map[string]map[string]struct{})
	totals := make(map[string]float64)
	for _, r := range s.rows {
		if mints[r.Wallet] == nil {
			mints[r.Wallet] = make(map[string]struct{})
		}
		if _, seen := mints[r.Wallet][r.Mint]; !seen {
			mints[r.Wallet][r.Mint] = struct{}{}
			totals[r.Wallet] += r.TotalUSD
		}
	}

	var result []*domain.MultiTokenWallet
	for wallet, set := range mints {
		if len(set) < minTokens {
			continue
		}
		result = append(result, &domain.MultiTokenWallet{
			Wallet:     wallet,
			TokenCount: len(set),
			TotalUSD:   totals[wallet],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TokenCount != result[j].TokenCount {
			return result[i].TokenCount > result[j].TokenCount
		}
		return result[i].TotalUSD > result[j].TotalUSD
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
