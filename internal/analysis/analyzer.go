package analysis

import (
	"context"
	"log"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/extract"
	"solana-early-bidders/internal/helius"
	"solana-early-bidders/internal/pagination"
)

// Default analysis parameters.
const (
	DefaultMinUSD          = 50.0
	DefaultWindowHours     = 999999 // effectively unlimited
	DefaultMaxTransactions = 500
	DefaultMaxWallets      = 10
)

// No-data outcomes reported on the result instead of an error return.
const (
	ErrMsgNoTransactions = "No transactions found"
	ErrMsgNoTimestamp    = "Could not determine first transaction time"
)

// Params configures one analysis run. Zero values are replaced by the
// package defaults.
type Params struct {
	Mint            string
	MinUSD          float64 // per-event threshold
	WindowHours     int     // window from the first observed transaction
	MaxTransactions int     // most transactions to retrieve
	MaxCredits      int     // soft credit ceiling, 0 = unlimited
	MaxWallets      int     // most buyers to return
}

func (p *Params) applyDefaults() {
	if p.MinUSD <= 0 {
		p.MinUSD = DefaultMinUSD
	}
	if p.WindowHours <= 0 {
		p.WindowHours = DefaultWindowHours
	}
	if p.MaxTransactions <= 0 {
		p.MaxTransactions = DefaultMaxTransactions
	}
	if p.MaxWallets <= 0 {
		p.MaxWallets = DefaultMaxWallets
	}
}

// Analyzer is the public entry point of the pipeline. One Analyzer may
// serve concurrent analyses; each run owns its own meter and aggregator.
type Analyzer struct {
	client    helius.Client
	strategy  pagination.Strategy
	extractor *extract.LargestNativeSenderHeuristic
	logger    *log.Logger
	verbose   bool
}

// NewAnalyzer creates an analyzer over a metered client. solPriceUSD
// sets the fixed SOL/USD rate, 0 for the default.
func NewAnalyzer(client helius.Client, solPriceUSD float64, logger *log.Logger, verbose bool) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{
		client:    client,
		strategy:  pagination.New(client, logger, verbose),
		extractor: extract.NewHeuristic(solPriceUSD),
		logger:    logger,
		verbose:   verbose,
	}
}

// Analyze finds the early bidders of a mint. It never returns an error:
// transport failure and no-data outcomes are reported on the result's
// Error field, and credits consumed are reported exactly in every case.
func (a *Analyzer) Analyze(ctx context.Context, params Params) *domain.AnalysisResult {
	params.applyDefaults()
	meter := helius.NewMeter(params.MaxCredits)

	a.log("analyzing token %s", params.Mint)

	// Metadata failure is non-fatal; the result just lacks TokenInfo.
	tokenInfo, cost, _ := a.client.GetTokenMetadata(ctx, params.Mint)
	meter.Add(cost)
	if tokenInfo != nil {
		a.log("token info: %s (%s), used %d credits", tokenInfo.Name, tokenInfo.Symbol, cost)
	} else {
		a.log("token info: unknown (metadata not available)")
	}

	a.log("fetching up to %d earliest transactions", params.MaxTransactions)

	txs, err := a.strategy.Fetch(ctx, params.Mint, params.MaxTransactions, 0, meter)
	if err != nil {
		// Both strategies failed. Same outcome as an empty history; the
		// spend so far still counts.
		a.log("transaction retrieval failed for %s: %v", params.Mint, err)
		txs = nil
	}

	a.log("retrieved %d earliest transactions, used %d credits total", len(txs), meter.Used())

	if len(txs) == 0 {
		return a.noDataResult(params.Mint, tokenInfo, ErrMsgNoTransactions, meter)
	}

	// Transactions arrive oldest first; the first usable timestamp
	// anchors the analysis window.
	var firstTxTime int64
	for _, tx := range txs {
		if tx.HasTimestamp() {
			firstTxTime = tx.BlockTime
			break
		}
	}
	if firstTxTime == 0 {
		return a.noDataResult(params.Mint, tokenInfo, ErrMsgNoTimestamp, meter)
	}

	windowEnd := firstTxTime + int64(params.WindowHours)*3600

	agg := NewAggregator(a.extractor, params.Mint, params.MinUSD, windowEnd)
	for _, tx := range txs {
		agg.Consume(tx)
	}

	buyers := agg.Finalize()
	uniqueBuyers := len(buyers)
	if len(buyers) > params.MaxWallets {
		// Keep the earliest buyers, drop the later ones.
		buyers = buyers[:params.MaxWallets]
	}

	a.log("found %d early bidders (>= $%.0f), %d credits used", uniqueBuyers, params.MinUSD, meter.Used())

	return &domain.AnalysisResult{
		Mint:                      params.Mint,
		TokenInfo:                 tokenInfo,
		FirstTransactionTime:      firstTxTime,
		WindowEnd:                 windowEnd,
		Buyers:                    buyers,
		TotalUniqueBuyers:         uniqueBuyers,
		TotalTransactionsAnalyzed: len(txs),
		CreditsUsed:               meter.Used(),
	}
}

func (a *Analyzer) noDataResult(mint string, tokenInfo *domain.TokenMetadata, msg string, meter *helius.Meter) *domain.AnalysisResult {
	a.log("%s: %s", mint, msg)
	return &domain.AnalysisResult{
		Mint:        mint,
		TokenInfo:   tokenInfo,
		Buyers:      []*domain.BuyerAggregate{},
		CreditsUsed: meter.Used(),
		Error:       msg,
	}
}

func (a *Analyzer) log(format string, args ...interface{}) {
	if a.verbose {
		a.logger.Printf("[analysis] "+format, args...)
	}
}
