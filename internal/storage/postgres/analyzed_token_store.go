package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/storage"
)

// AnalyzedTokenStore implements storage.AnalyzedTokenStore using PostgreSQL.
type AnalyzedTokenStore struct {
	pool *Pool
}

// NewAnalyzedTokenStore creates a new AnalyzedTokenStore.
func NewAnalyzedTokenStore(pool *Pool) *AnalyzedTokenStore {
	return &AnalyzedTokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AnalyzedTokenStore = (*AnalyzedTokenStore)(nil)

const analyzedTokenColumns = `
	id, mint, name, symbol, acronym, first_buy_time,
	total_unique_buyers, credits_used, analyzed_at, created_at
`

// Upsert inserts or replaces the analysis record for a mint and returns
// the record ID.
func (s *AnalyzedTokenStore) Upsert(ctx context.Context, t *domain.AnalyzedToken) (int64, error) {
	if t == nil || t.Mint == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO analyzed_tokens (
			mint, name, symbol, acronym, first_buy_time,
			total_unique_buyers, credits_used, analyzed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (mint) DO UPDATE SET
			name = excluded.name,
			symbol = excluded.symbol,
			acronym = excluded.acronym,
			first_buy_time = excluded.first_buy_time,
			total_unique_buyers = excluded.total_unique_buyers,
			credits_used = excluded.credits_used,
			analyzed_at = excluded.analyzed_at
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		t.Mint,
		t.Name,
		t.Symbol,
		t.Acronym,
		t.FirstBuyTime,
		t.TotalUniqueBuyers,
		t.CreditsUsed,
		t.AnalyzedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert analyzed token: %w", err)
	}
	return id, nil
}

// GetByID retrieves a record by its ID. Returns ErrNotFound if not exists.
func (s *AnalyzedTokenStore) GetByID(ctx context.Context, id int64) (*domain.AnalyzedToken, error) {
	query := `SELECT ` + analyzedTokenColumns + ` FROM analyzed_tokens WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, id)
	t, err := scanAnalyzedToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get analyzed token by id: %w", err)
	}
	return t, nil
}

// GetByMint retrieves the record for a mint. Returns ErrNotFound if not exists.
func (s *AnalyzedTokenStore) GetByMint(ctx context.Context, mint string) (*domain.AnalyzedToken, error) {
	query := `SELECT ` + analyzedTokenColumns + ` FROM analyzed_tokens WHERE mint = $1`

	row := s.pool.QueryRow(ctx, query, mint)
	t, err := scanAnalyzedToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get analyzed token by mint: %w", err)
	}
	return t, nil
}

// List retrieves records ordered by analyzed_at DESC.
func (s *AnalyzedTokenStore) List(ctx context.Context, limit, offset int) ([]*domain.AnalyzedToken, error) {
	query := `
		SELECT ` + analyzedTokenColumns + `
		FROM analyzed_tokens
		ORDER BY analyzed_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list analyzed tokens: %w", err)
	}
	defer rows.Close()

	return scanAnalyzedTokens(rows)
}

// Search retrieves records whose mint, name, symbol or acronym contains
// the query, case-insensitive.
func (s *AnalyzedTokenStore) Search(ctx context.Context, query string, limit int) ([]*domain.AnalyzedToken, error) {
	sql := `
		SELECT ` + analyzedTokenColumns + `
		FROM analyzed_tokens
		WHERE mint ILIKE $1 OR name ILIKE $1 OR symbol ILIKE $1 OR acronym ILIKE $1
		ORDER BY analyzed_at DESC, id DESC
		LIMIT $2
	`
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, sql, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search analyzed tokens: %w", err)
	}
	defer rows.Close()

	return scanAnalyzedTokens(rows)
}

// scanAnalyzedToken scans a single row into an AnalyzedToken.
func scanAnalyzedToken(row pgx.Row) (*domain.AnalyzedToken, error) {
	var t domain.AnalyzedToken
	err := row.Scan(
		&t.ID,
		&t.Mint,
		&t.Name,
		&t.Symbol,
		&t.Acronym,
		&t.FirstBuyTime,
		&t.TotalUniqueBuyers,
		&t.CreditsUsed,
		&t.AnalyzedAt,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanAnalyzedTokens scans multiple rows into a slice of AnalyzedToken.
func scanAnalyzedTokens(rows pgx.Rows) ([]*domain.AnalyzedToken, error) {
	var tokens []*domain.AnalyzedToken

	for rows.Next() {
		t, err := scanAnalyzedToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analyzed token row: %w", err)
		}
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyzed token rows: %w", err)
	}

	return tokens, nil
}
