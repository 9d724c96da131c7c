package domain

// Transfer represents a single balance movement extracted from one
// transaction by diffing pre/post balances.
type Transfer struct {
	From   string  // sender address, empty if the balance only increased
	To     string  // recipient address, empty if the balance only decreased
	Amount float64 // absolute delta; lamports for native, ui amount for tokens
	Mint   string  // token mint address, empty for native SOL transfers
}

// NormalizedTransaction is the structural record of one on-chain
// transaction, independent of why the transaction happened.
type NormalizedTransaction struct {
	Signature       string     // globally unique transaction signature
	BlockTime       int64      // unix seconds, 0 if the ledger did not report one
	NativeTransfers []Transfer // SOL balance deltas per account
	TokenTransfers  []Transfer // token balance deltas per account
}

// HasTimestamp reports whether the transaction carries a usable block time.
func (t *NormalizedTransaction) HasTimestamp() bool {
	return t.BlockTime > 0
}
