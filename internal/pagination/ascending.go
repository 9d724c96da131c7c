package pagination

import (
	"context"
	"log"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/helius"
	"solana-early-bidders/internal/normalize"
	"solana-early-bidders/internal/observability"
)

// ascendingFetchCap bounds one ascending fetch regardless of the
// requested limit.
const ascendingFetchCap = 500

// Ascending is the efficient strategy: server-side ascending sort with
// optional blockTime filtering, following the pagination token across
// batch calls. Each call costs helius.CostAscendingBatch regardless of
// how many transactions it returns.
type Ascending struct {
	client  helius.Client
	logger  *log.Logger
	verbose bool
}

// NewAscending creates the ascending batch strategy.
func NewAscending(client helius.Client, logger *log.Logger, verbose bool) *Ascending {
	if logger == nil {
		logger = log.Default()
	}
	return &Ascending{client: client, logger: logger, verbose: verbose}
}

// Compile-time interface check.
var _ Strategy = (*Ascending)(nil)

// Fetch implements Strategy.
func (a *Ascending) Fetch(ctx context.Context, address string, limit int, sinceTime int64, meter *helius.Meter) ([]*domain.NormalizedTransaction, error) {
	remaining := limit
	if remaining <= 0 || remaining > ascendingFetchCap {
		remaining = ascendingFetchCap
	}

	var result []*domain.NormalizedTransaction
	var pageToken string

	for remaining > 0 {
		batchLimit := remaining
		if batchLimit > helius.AscendingBatchSize {
			batchLimit = helius.AscendingBatchSize
		}

		raws, nextToken, cost, err := a.client.GetTransactionsAscending(ctx, address, batchLimit, sinceTime, pageToken)
		meter.Add(cost)
		if err != nil {
			return nil, err
		}

		a.log("batch of %d transactions for %s (token=%q)", len(raws), address, nextToken)

		for i := range raws {
			tx := normalize.Transaction(&raws[i])
			if tx == nil {
				observability.RecordNormalizationDrop()
				continue
			}
			observability.RecordTransactionNormalized()
			result = append(result, tx)
		}

		remaining -= len(raws)

		// No pagination token or a short batch means end of data.
		if nextToken == "" || len(raws) == 0 || len(raws) < batchLimit {
			break
		}
		pageToken = nextToken
	}

	return result, nil
}

func (a *Ascending) log(format string, args ...interface{}) {
	if a.verbose {
		a.logger.Printf("[pagination/asc] "+format, args...)
	}
}
