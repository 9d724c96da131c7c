// Package extract decides whether a normalized transaction represents a
// buy of a target token and, if so, which wallet paid and how much.
package extract

import "solana-early-bidders/internal/domain"

const (
	// DustThresholdLamports is the minimum native transfer treated as a
	// payment; smaller amounts are fees and rent churn.
	DustThresholdLamports = 100_000

	// LamportsPerSOL converts base units to whole SOL.
	LamportsPerSOL = 1_000_000_000

	// DefaultSOLPriceUSD is the fixed conversion rate used when no rate
	// is supplied. Live price lookup is deliberately out of scope.
	DefaultSOLPriceUSD = 200.0
)

// LargestNativeSenderHeuristic infers the paying wallet of a buy.
//
// Token transfers land on the recipient's associated token account, not
// the spending wallet's main account, so the recipient cannot be taken
// as the buyer. Instead the payer is the sender of the largest native
// transfer in the same transaction above the dust threshold. This is a
// best-effort guess, not a ledger-verified fact: multi-hop or
// aggregator-routed swaps can misattribute the payer. When several
// token transfers of the target mint have different recipients, the
// first match wins.
type LargestNativeSenderHeuristic struct {
	SOLPriceUSD float64
}

// NewHeuristic creates the buyer heuristic with the given SOL/USD rate.
// A zero or negative rate falls back to DefaultSOLPriceUSD.
func NewHeuristic(solPriceUSD float64) *LargestNativeSenderHeuristic {
	if solPriceUSD <= 0 {
		solPriceUSD = DefaultSOLPriceUSD
	}
	return &LargestNativeSenderHeuristic{SOLPriceUSD: solPriceUSD}
}

// ExtractBuy returns the inferred buy event for tx, or false if the
// transaction does not represent a qualifying buy of mint.
func (h *LargestNativeSenderHeuristic) ExtractBuy(tx *domain.NormalizedTransaction, mint string) (domain.BuyEvent, bool) {
	if tx == nil {
		return domain.BuyEvent{}, false
	}

	for _, transfer := range tx.TokenTransfers {
		if transfer.Mint != mint || transfer.To == "" {
			continue
		}

		// Someone received the target token; find who paid for it.
		var buyer string
		var largest float64

		for _, native := range tx.NativeTransfers {
			if native.From == "" {
				continue // rent refunds and account closes have no sender
			}
			if native.Amount > DustThresholdLamports && native.Amount > largest {
				largest = native.Amount
				buyer = native.From
			}
		}

		if buyer == "" {
			continue
		}

		return domain.BuyEvent{
			Wallet:    buyer,
			USDAmount: largest / LamportsPerSOL * h.SOLPriceUSD,
			BlockTime: tx.BlockTime,
		}, true
	}

	return domain.BuyEvent{}, false
}
