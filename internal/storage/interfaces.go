package storage

import (
	"context"

	"solana-early-bidders/internal/domain"
)

// AnalyzedTokenStore provides access to analyzed_tokens storage.
type AnalyzedTokenStore interface {
	// Upsert inserts or replaces the analysis record for a mint and
	// returns the record ID. Re-analyzing a token overwrites its row.
	Upsert(ctx context.Context, t *domain.AnalyzedToken) (int64, error)

	// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.AnalyzedToken, error)

	// GetByMint retrieves the record for a mint. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.AnalyzedToken, error)

	// List retrieves records ordered by analyzed_at DESC.
	List(ctx context.Context, limit, offset int) ([]*domain.AnalyzedToken, error)

	// Search retrieves records whose mint, name, symbol or acronym
	// contains the query, case-insensitive, ordered by analyzed_at DESC.
	Search(ctx context.Context, query string, limit int) ([]*domain.AnalyzedToken, error)
}

// BuyerWalletStore provides access to early_buyer_wallets storage.
type BuyerWalletStore interface {
	// ReplaceForToken atomically replaces the ranked wallet list of a
	// token. Ranks are assigned from the slice order, starting at 1.
	ReplaceForToken(ctx context.Context, tokenID int64, wallets []*domain.BuyerWallet) error

	// GetByTokenID retrieves a token's wallets ordered by rank ASC.
	GetByTokenID(ctx context.Context, tokenID int64) ([]*domain.BuyerWallet, error)

	// UpdateBalance sets the refreshed balance of one wallet row.
	// Returns ErrNotFound if the token has no such wallet.
	UpdateBalance(ctx context.Context, tokenID int64, wallet string, balanceUSD float64) error
}

// BuyerEventStore is the append-only early-buyer observation archive.
type BuyerEventStore interface {
	// InsertBatch appends one analysis run's buyer observations.
	InsertBatch(ctx context.Context, rows []*domain.BuyerEventRow) error

	// MultiTokenWallets retrieves wallets that appeared as early buyers
	// of at least minTokens distinct mints, ordered by token count DESC.
	MultiTokenWallets(ctx context.Context, minTokens, limit int) ([]*domain.MultiTokenWallet, error)
}
