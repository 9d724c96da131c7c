package domain

// AnalyzedToken represents a persisted analysis run for one token.
// Corresponds to analyzed_tokens table in PostgreSQL.
type AnalyzedToken struct {
	ID                int64  // BIGSERIAL primary key
	Mint              string // token mint address
	Name              string // token name, "Unknown" if metadata unavailable
	Symbol            string // token symbol
	Acronym           string // short display acronym derived from the name
	FirstBuyTime      int64  // unix seconds of first observed transaction, 0 if unknown
	TotalUniqueBuyers int
	CreditsUsed       int   // metered API cost of the run
	AnalyzedAt        int64 // unix milliseconds
	CreatedAt         int64 // record creation timestamp (ms)
}

// BuyerWallet represents one ranked early buyer persisted for a token.
// Corresponds to early_buyer_wallets table in PostgreSQL.
type BuyerWallet struct {
	ID               int64    // BIGSERIAL primary key
	TokenID          int64    // FK to analyzed_tokens
	Wallet           string   // wallet address
	Rank             int      // 1-based position in the earliest-first ordering
	FirstBuyTime     int64    // unix seconds
	TotalUSD         float64
	TransactionCount int
	AverageUSD       float64
	BalanceUSD       *float64 // last refreshed wallet balance (nullable)
	CreatedAt        int64    // record creation timestamp (ms)
}

// BuyerEventRow is one early-buyer observation archived to ClickHouse.
// The archive is append-only and powers cross-token wallet analytics.
type BuyerEventRow struct {
	Mint             string
	Wallet           string
	FirstBuyTime     int64 // unix seconds
	TotalUSD         float64
	TransactionCount int32
	AnalyzedAt       int64 // unix milliseconds
}

// MultiTokenWallet is a wallet that appeared as an early buyer across
// several analyzed tokens.
type MultiTokenWallet struct {
	Wallet     string
	TokenCount int
	TotalUSD   float64
}
