// Package helius provides the metered Helius RPC and Enhanced API client
// used by the analysis pipeline. Every remote operation declares a fixed
// credit cost and returns it alongside the data so callers can account
// for consumed credits exactly.
package helius

import (
	"context"
	"encoding/json"

	"solana-early-bidders/internal/domain"
)

// Declared credit costs per call type. Batch calls cost more per call but
// amortize over up to AscendingBatchSize items.
const (
	CostMetadataLookup    = 1   // token-metadata or DAS getAsset
	CostSignatureBatch    = 1   // getSignaturesForAddress, any batch size
	CostTransactionDetail = 1   // getTransaction
	CostAscendingBatch    = 100 // getTransactionsForAddress, regardless of batch size
	CostBalanceLookup     = 1   // native balance fetch
)

// AscendingBatchSize is the maximum number of full-detail transactions
// returned by one getTransactionsForAddress call.
const AscendingBatchSize = 100

// SignatureBatchSize is the maximum batch size for getSignaturesForAddress.
const SignatureBatchSize = 1000

// Client defines the metered ledger transport used by the pipeline.
// Each method returns the declared credit cost of the calls it issued;
// a call that fails before the server answers costs nothing.
type Client interface {
	// GetTokenMetadata resolves token metadata, trying the primary
	// endpoint first and falling back to the DAS asset lookup.
	// Both failing is non-fatal: returns (nil, 0, nil).
	GetTokenMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, int, error)

	// GetSignatures retrieves up to limit signatures for an address,
	// newest first, optionally starting before a cursor signature.
	GetSignatures(ctx context.Context, address string, limit int, before string) ([]SignatureInfo, int, error)

	// GetTransaction retrieves full transaction detail by signature.
	// Returns nil if the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*RawTransaction, int, error)

	// GetTransactionsAscending retrieves full-detail transactions for an
	// address in ascending block-time order, optionally filtered to
	// blockTime >= sinceTime, following pageToken across calls.
	GetTransactionsAscending(ctx context.Context, address string, limit int, sinceTime int64, pageToken string) ([]RawTransaction, string, int, error)

	// GetNativeBalance retrieves the native balance of a wallet in lamports.
	GetNativeBalance(ctx context.Context, wallet string) (uint64, int, error)
}

// SignatureInfo is one entry from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string      `json:"signature"`
	Slot      int64       `json:"slot"`
	BlockTime *int64      `json:"blockTime"`
	Err       interface{} `json:"err"`
}

// RawTransaction is the jsonParsed transaction payload as returned by the
// ledger. It is consumed once by the normalizer and never persisted.
type RawTransaction struct {
	Signature   string      `json:"signature,omitempty"` // present in getTransactionsForAddress payloads
	Slot        int64       `json:"slot"`
	BlockTime   *int64      `json:"blockTime"`
	Meta        *RawMeta    `json:"meta"`
	Transaction *RawInnerTx `json:"transaction"`
}

// RawMeta carries the balance snapshots used for transfer derivation.
type RawMeta struct {
	Err               interface{}       `json:"err"`
	PreBalances       []uint64          `json:"preBalances"`
	PostBalances      []uint64          `json:"postBalances"`
	PreTokenBalances  []RawTokenBalance `json:"preTokenBalances"`
	PostTokenBalances []RawTokenBalance `json:"postTokenBalances"`
}

// RawInnerTx wraps the transaction message.
type RawInnerTx struct {
	Message *RawMessage `json:"message"`
}

// RawMessage contains the transaction account list.
type RawMessage struct {
	AccountKeys []AccountKey `json:"accountKeys"`
}

// AccountKey is one entry of the account list. The jsonParsed encoding
// returns either a bare string or an object with a pubkey field.
type AccountKey struct {
	Pubkey string
}

// UnmarshalJSON accepts both encodings of an account key.
func (k *AccountKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		k.Pubkey = s
		return nil
	}
	var obj struct {
		Pubkey string `json:"pubkey"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	k.Pubkey = obj.Pubkey
	return nil
}

// RawTokenBalance is one pre/post token balance entry.
type RawTokenBalance struct {
	AccountIndex  int             `json:"accountIndex"`
	Mint          string          `json:"mint"`
	Owner         string          `json:"owner,omitempty"`
	UITokenAmount *RawTokenAmount `json:"uiTokenAmount"`
}

// RawTokenAmount carries both the raw integer amount and the ui amount.
// UIAmount may be null; callers must reconstruct from Amount and Decimals.
type RawTokenAmount struct {
	Amount   string   `json:"amount"`
	Decimals int      `json:"decimals"`
	UIAmount *float64 `json:"uiAmount"`
}
