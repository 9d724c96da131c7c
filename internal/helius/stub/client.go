// Package stub provides an in-memory helius.Client for testing.
package stub

import (
	"context"
	"errors"
	"strconv"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/helius"
)

// ErrUnavailable simulates a transport failure.
var ErrUnavailable = errors.New("stub: endpoint unavailable")

// CallCounts tracks how often each client operation was invoked.
type CallCounts struct {
	Metadata    int
	Signatures  int
	Transaction int
	Ascending   int
	Balance     int
}

// Client implements helius.Client from fixed in-memory data.
type Client struct {
	// Metadata returned for any mint; nil means unresolvable.
	Metadata *domain.TokenMetadata

	// AscendingTxs is the full oldest-first transaction history served
	// by GetTransactionsAscending.
	AscendingTxs []helius.RawTransaction

	// SignaturesDesc is the full newest-first signature history served
	// by GetSignatures.
	SignaturesDesc []helius.SignatureInfo

	// Details maps signature to full transaction payloads.
	Details map[string]*helius.RawTransaction

	// Balances maps wallet address to native balance in lamports.
	Balances map[string]uint64

	// FailAscending makes GetTransactionsAscending fail, which the
	// fallback decorator must recover from.
	FailAscending bool

	// FailAscendingAfter makes GetTransactionsAscending fail once that
	// many calls have succeeded, simulating a mid-pagination outage.
	FailAscendingAfter int

	// FailSignatures makes GetSignatures fail.
	FailSignatures bool

	// FailDetails marks individual signatures whose detail fetch fails.
	FailDetails map[string]bool

	// Calls counts operations issued against the stub.
	Calls CallCounts
}

// NewClient creates an empty stub client.
func NewClient() *Client {
	return &Client{
		Details:     make(map[string]*helius.RawTransaction),
		Balances:    make(map[string]uint64),
		FailDetails: make(map[string]bool),
	}
}

// Compile-time interface check.
var _ helius.Client = (*Client)(nil)

// GetTokenMetadata returns the configured metadata, nil-and-free when unset.
func (c *Client) GetTokenMetadata(_ context.Context, mint string) (*domain.TokenMetadata, int, error) {
	c.Calls.Metadata++
	if c.Metadata == nil {
		return nil, 0, nil
	}
	meta := *c.Metadata
	meta.Mint = mint
	return &meta, helius.CostMetadataLookup, nil
}

// GetSignatures serves pages of the newest-first signature history.
func (c *Client) GetSignatures(_ context.Context, _ string, limit int, before string) ([]helius.SignatureInfo, int, error) {
	c.Calls.Signatures++
	if c.FailSignatures {
		return nil, 0, ErrUnavailable
	}

	start := 0
	if before != "" {
		for i, sig := range c.SignaturesDesc {
			if sig.Signature == before {
				start = i + 1
				break
			}
		}
	}
	if start >= len(c.SignaturesDesc) {
		return nil, helius.CostSignatureBatch, nil
	}

	end := start + limit
	if limit <= 0 || end > len(c.SignaturesDesc) {
		end = len(c.SignaturesDesc)
	}
	return c.SignaturesDesc[start:end], helius.CostSignatureBatch, nil
}

// GetTransaction returns a configured detail payload, nil if absent.
func (c *Client) GetTransaction(_ context.Context, signature string) (*helius.RawTransaction, int, error) {
	c.Calls.Transaction++
	if c.FailDetails[signature] {
		return nil, 0, ErrUnavailable
	}
	return c.Details[signature], helius.CostTransactionDetail, nil
}

// GetTransactionsAscending serves pages of the oldest-first history with
// numeric pagination tokens.
func (c *Client) GetTransactionsAscending(_ context.Context, _ string, limit int, sinceTime int64, pageToken string) ([]helius.RawTransaction, string, int, error) {
	c.Calls.Ascending++
	if c.FailAscending {
		return nil, "", 0, ErrUnavailable
	}
	if c.FailAscendingAfter > 0 && c.Calls.Ascending > c.FailAscendingAfter {
		return nil, "", 0, ErrUnavailable
	}

	filtered := c.AscendingTxs
	if sinceTime > 0 {
		filtered = nil
		for _, tx := range c.AscendingTxs {
			if tx.BlockTime != nil && *tx.BlockTime >= sinceTime {
				filtered = append(filtered, tx)
			}
		}
	}

	start := 0
	if pageToken != "" {
		start, _ = strconv.Atoi(pageToken)
	}
	if start >= len(filtered) {
		return nil, "", helius.CostAscendingBatch, nil
	}

	if limit <= 0 || limit > helius.AscendingBatchSize {
		limit = helius.AscendingBatchSize
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	next := ""
	if end < len(filtered) {
		next = strconv.Itoa(end)
	}
	return filtered[start:end], next, helius.CostAscendingBatch, nil
}

// GetNativeBalance returns a configured balance, failing when absent.
func (c *Client) GetNativeBalance(_ context.Context, wallet string) (uint64, int, error) {
	c.Calls.Balance++
	lamports, ok := c.Balances[wallet]
	if !ok {
		return 0, 0, ErrUnavailable
	}
	return lamports, helius.CostBalanceLookup, nil
}
