package memory

import (
	"context"
	"sync"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/storage"
)

// BuyerWalletStore is an in-memory implementation of storage.BuyerWalletStore.
type BuyerWalletStore struct {
	mu      sync.RWMutex
	nextID  int64
	byToken map[int64][]*domain.BuyerWallet // ordered by rank
}

// NewBuyerWalletStore creates a new in-memory buyer wallet store.
func NewBuyerWalletStore() *BuyerWalletStore {
	return &BuyerWalletStore{
		nextID:  1,
		byToken: make(map[int64][]*domain.BuyerWallet),
	}
}

var _ storage.BuyerWalletStore = (*BuyerWalletStore)(nil)

// ReplaceForToken atomically replaces the ranked wallet list of a token.
func (s *BuyerWalletStore) ReplaceForToken(_ context.Context, tokenID int64, wallets []*domain.BuyerWallet) error {
	if tokenID <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := make([]*domain.BuyerWallet, 0, len(wallets))
	for i, w := range wallets {
		if w == nil || w.Wallet == "" {
			return storage.ErrInvalidInput
		}
		rec := *w
		rec.ID = s.nextID
		rec.TokenID = tokenID
		rec.Rank = i + 1
		s.nextID++
		replaced = append(replaced, &rec)
	}

	s.byToken[tokenID] = replaced
	return nil
}

// GetByTokenID retrieves a token's wallets ordered by rank ASC.
func (s *BuyerWalletStore) GetByTokenID(_ context.Context, tokenID int64) ([]*domain.BuyerWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := s.byToken[tokenID]
	result := make([]*domain.BuyerWallet, 0, len(wallets))
	for _, w := range wallets {
		rec := *w
		result = append(result, &rec)
	}
	return result, nil
}

// UpdateBalance sets the refreshed balance of one wallet row.
func (s *BuyerWalletStore) UpdateBalance(_ context.Context, tokenID int64, wallet string, balanceUSD float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.byToken[tokenID] {
		if w.Wallet == wallet {
			balance := balanceUSD
			w.BalanceUSD = &balance
			return nil
		}
	}
	return storage.ErrNotFound
}
