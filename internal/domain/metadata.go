package domain

// TokenMetadata represents token metadata resolved from the ledger API.
// Both the primary token-metadata endpoint and the DAS fallback are
// normalized into this shape.
type TokenMetadata struct {
	Mint      string `json:"mint"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	FetchedAt int64  `json:"fetched_at"` // unix milliseconds
}
