package clickhouse

import (
	"context"
	"fmt"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/storage"
)

// BuyerEventStore implements storage.BuyerEventStore using ClickHouse.
// The table is append-only; MergeTree enforces no uniqueness and the
// analytics query deduplicates per (wallet, mint).
type BuyerEventStore struct {
	conn *Conn
}

// NewBuyerEventStore creates a new BuyerEventStore.
func NewBuyerEventStore(conn *Conn) *BuyerEventStore {
	return &BuyerEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BuyerEventStore = (*BuyerEventStore)(nil)

// InsertBatch appends one analysis run's buyer observations.
func (s *BuyerEventStore) InsertBatch(ctx context.Context, rows []*domain.BuyerEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		if r == nil || r.Wallet == "" || r.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO buyer_events (
			mint, wallet, first_buy_time, total_usd, transaction_count, analyzed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.Mint, r.Wallet, r.FirstBuyTime,
			r.TotalUSD, r.TransactionCount, uint64(r.AnalyzedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// MultiTokenWallets retrieves wallets seen as early buyers of at least
// minTokens distinct mints. Repeat analyses of one mint count once.
func (s *BuyerEventStore) MultiTokenWallets(ctx context.Context, minTokens, limit int) ([]*domain.MultiTokenWallet, error) {
	if minTokens < 1 {
		minTokens = 1
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT wallet, toInt32(count()) AS token_count, sum(usd) AS total_usd
		FROM (
			SELECT wallet, mint, any(total_usd) AS usd
			FROM buyer_events
			GROUP BY wallet, mint
		)
		GROUP BY wallet
		HAVING token_count >= ?
		ORDER BY token_count DESC, total_usd DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, int32(minTokens), limit)
	if err != nil {
		return nil, fmt.Errorf("query multi-token wallets: %w", err)
	}
	defer rows.Close()

	var result []*domain.MultiTokenWallet
	for rows.Next() {
		var w domain.MultiTokenWallet
		var count int32
		if err := rows.Scan(&w.Wallet, &count, &w.TotalUSD); err != nil {
			return nil, fmt.Errorf("scan multi-token wallet row: %w", err)
		}
		w.TokenCount = int(count)
		result = append(result, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate multi-token wallet rows: %w", err)
	}

	return result, nil
}
