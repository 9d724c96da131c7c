package postgres

import (
	"context"
	"fmt"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/storage"
)

// BuyerWalletStore implements storage.BuyerWalletStore using PostgreSQL.
type BuyerWalletStore struct {
	pool *Pool
}

// NewBuyerWalletStore creates a new BuyerWalletStore.
func NewBuyerWalletStore(pool *Pool) *BuyerWalletStore {
	return &BuyerWalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BuyerWalletStore = (*BuyerWalletStore)(nil)

// ReplaceForToken atomically replaces the ranked wallet list of a token.
func (s *BuyerWalletStore) ReplaceForToken(ctx context.Context, tokenID int64, wallets []*domain.BuyerWallet) error {
	if tokenID <= 0 {
		return storage.ErrInvalidInput
	}
	for _, w := range wallets {
		if w == nil || w.Wallet == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace wallets: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM early_buyer_wallets WHERE token_id = $1`, tokenID); err != nil {
		return fmt.Errorf("delete old wallets: %w", err)
	}

	insert := `
		INSERT INTO early_buyer_wallets (
			token_id, wallet, rank, first_buy_time,
			total_usd, transaction_count, average_usd, balance_usd
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i, w := range wallets {
		_, err := tx.Exec(ctx, insert,
			tokenID,
			w.Wallet,
			i+1,
			w.FirstBuyTime,
			w.TotalUSD,
			w.TransactionCount,
			w.AverageUSD,
			w.BalanceUSD,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert wallet %s: %w", w.Wallet, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace wallets: %w", err)
	}
	return nil
}

// GetByTokenID retrieves a token's wallets ordered by rank ASC.
func (s *BuyerWalletStore) GetByTokenID(ctx context.Context, tokenID int64) ([]*domain.BuyerWallet, error) {
	query := `
		SELECT id, token_id, wallet, rank, first_buy_time,
		       total_usd, transaction_count, average_usd, balance_usd, created_at
		FROM early_buyer_wallets
		WHERE token_id = $1
		ORDER BY rank ASC
	`

	rows, err := s.pool.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("get wallets by token id: %w", err)
	}
	defer rows.Close()

	var wallets []*domain.BuyerWallet
	for rows.Next() {
		var w domain.BuyerWallet
		err := rows.Scan(
			&w.ID,
			&w.TokenID,
			&w.Wallet,
			&w.Rank,
			&w.FirstBuyTime,
			&w.TotalUSD,
			&w.TransactionCount,
			&w.AverageUSD,
			&w.BalanceUSD,
			&w.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}

// UpdateBalance sets the refreshed balance of one wallet row.
func (s *BuyerWalletStore) UpdateBalance(ctx context.Context, tokenID int64, wallet string, balanceUSD float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE early_buyer_wallets SET balance_usd = $1 WHERE token_id = $2 AND wallet = $3`,
		balanceUSD, tokenID, wallet,
	)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
