package domain

// BuyEvent is a single inferred purchase of the target token.
// Produced by the extractor, consumed immediately by the aggregator.
type BuyEvent struct {
	Wallet    string  // paying wallet address
	USDAmount float64 // fiat value of the native amount spent
	BlockTime int64   // unix seconds of the transaction
}

// BuyerAggregate accumulates qualifying buys for one wallet.
type BuyerAggregate struct {
	Wallet           string  `json:"wallet_address"`
	FirstBuyTime     int64   `json:"first_buy_time"` // unix seconds, only ever decreases
	TotalUSD         float64 `json:"total_usd"`
	TransactionCount int     `json:"transaction_count"`
	AverageUSD       float64 `json:"average_buy_usd"` // TotalUSD / TransactionCount, set on finalize
}

// AnalysisResult is the immutable outcome of one early-bidder analysis.
type AnalysisResult struct {
	Mint                      string            `json:"token_address"`
	TokenInfo                 *TokenMetadata    `json:"token_info,omitempty"`
	FirstTransactionTime      int64             `json:"first_transaction_time,omitempty"` // unix seconds
	WindowEnd                 int64             `json:"analysis_window_end,omitempty"`    // unix seconds
	Buyers                    []*BuyerAggregate `json:"early_bidders"`                    // ascending by FirstBuyTime, truncated
	TotalUniqueBuyers         int               `json:"total_unique_buyers"`
	TotalTransactionsAnalyzed int               `json:"total_transactions_analyzed"`
	CreditsUsed               int               `json:"api_credits_used"`
	Error                     string            `json:"error,omitempty"` // non-throwing no-data outcome
}
