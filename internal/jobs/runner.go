// Package jobs runs analyses off the request path on a bounded worker
// pool, persists finished results and notifies subscribers.
package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"solana-early-bidders/internal/analysis"
	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/idhash"
	"solana-early-bidders/internal/notify"
	"solana-early-bidders/internal/observability"
	"solana-early-bidders/internal/storage"
)

// Status is the lifecycle state of an analysis job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job tracks one queued analysis request.
type Job struct {
	ID          string                 `json:"job_id"`
	Mint        string                 `json:"token_address"`
	Status      Status                 `json:"status"`
	Result      *domain.AnalysisResult `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	TokenID     int64                  `json:"token_id,omitempty"`
	CreatedAt   int64                  `json:"created_at"`   // unix milliseconds
	CompletedAt int64                  `json:"completed_at"` // unix milliseconds, 0 while pending
}

// ErrQueueFull is returned when the job queue cannot accept more work.
var ErrQueueFull = errors.New("job queue full")

// Stores groups the persistence targets of a finished analysis. Events
// may be nil when no archive is configured.
type Stores struct {
	Tokens  storage.AnalyzedTokenStore
	Wallets storage.BuyerWalletStore
	Events  storage.BuyerEventStore
}

// Runner is the bounded analysis worker pool.
type Runner struct {
	analyzer *analysis.Analyzer
	stores   Stores
	hub      *notify.Hub            // optional
	metrics  *observability.Metrics // optional
	logger   *log.Logger
	verbose  bool

	queue chan *pending

	mu     sync.RWMutex
	jobs   map[string]*Job
	byMint map[string]string // mint -> active job ID
}

type pending struct {
	job    *Job
	params analysis.Params
}

// NewRunner creates a runner with the given worker count and queue
// depth. Hub and metrics may be nil.
func NewRunner(analyzer *analysis.Analyzer, stores Stores, hub *notify.Hub, metrics *observability.Metrics, workers, queueDepth int, logger *log.Logger, verbose bool) *Runner {
	if workers <= 0 {
		workers = 2
	}
	if queueDepth <= 0 {
		queueDepth = 32
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		analyzer: analyzer,
		stores:   stores,
		hub:      hub,
		metrics:  metrics,
		logger:   logger,
		verbose:  verbose,
		queue:    make(chan *pending, queueDepth),
		jobs:     make(map[string]*Job),
		byMint:   make(map[string]string),
	}
}

// Start launches the worker pool. Workers exit when ctx is cancelled.
func (r *Runner) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		go r.worker(ctx)
	}
}

// Submit queues an analysis. If the mint already has a queued or
// running job, that job's ID is returned instead of starting another.
func (r *Runner) Submit(params analysis.Params) (string, error) {
	if params.Mint == "" {
		return "", storage.ErrInvalidInput
	}

	now := time.Now().UnixMilli()

	r.mu.Lock()
	if activeID, ok := r.byMint[params.Mint]; ok {
		r.mu.Unlock()
		return activeID, nil
	}

	job := &Job{
		ID:        idhash.ComputeJobID(params.Mint, now),
		Mint:      params.Mint,
		Status:    StatusQueued,
		CreatedAt: now,
	}
	r.jobs[job.ID] = job
	r.byMint[params.Mint] = job.ID
	r.mu.Unlock()

	select {
	case r.queue <- &pending{job: job, params: params}:
	default:
		r.mu.Lock()
		delete(r.jobs, job.ID)
		delete(r.byMint, params.Mint)
		r.mu.Unlock()
		return "", ErrQueueFull
	}

	if r.metrics != nil {
		r.metrics.QueuedJobs.Inc()
	}
	r.log("queued job %s for %s", job.ID, params.Mint)
	return job.ID, nil
}

// Get retrieves a job snapshot by ID.
func (r *Runner) Get(jobID string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

func (r *Runner) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-r.queue:
			if r.metrics != nil {
				r.metrics.QueuedJobs.Dec()
			}
			r.run(ctx, p)
		}
	}
}

func (r *Runner) run(ctx context.Context, p *pending) {
	r.setStatus(p.job.ID, StatusRunning)
	if r.metrics != nil {
		r.metrics.ActiveJobs.Inc()
		r.metrics.AnalysesStarted.Inc()
		defer r.metrics.ActiveJobs.Dec()
	}
	if r.hub != nil {
		r.hub.AnalysisStarted(p.job.ID, p.params.Mint, "")
	}

	started := time.Now()
	result := r.analyzer.Analyze(ctx, p.params)

	if r.metrics != nil {
		r.metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
		r.metrics.CreditsConsumed.Add(float64(result.CreditsUsed))
	}

	if result.Error != "" {
		r.finish(p.job.ID, func(job *Job) {
			job.Status = StatusFailed
			job.Result = result
			job.Error = result.Error
		})
		if r.metrics != nil {
			r.metrics.AnalysesFailed.Inc()
		}
		r.log("job %s failed: %s (%d credits)", p.job.ID, result.Error, result.CreditsUsed)
		return
	}

	tokenID, err := r.persist(ctx, result)
	if err != nil {
		r.finish(p.job.ID, func(job *Job) {
			job.Status = StatusFailed
			job.Result = result
			job.Error = err.Error()
		})
		if r.metrics != nil {
			r.metrics.AnalysesFailed.Inc()
		}
		r.log("job %s persist failed: %v", p.job.ID, err)
		return
	}

	r.finish(p.job.ID, func(job *Job) {
		job.Status = StatusCompleted
		job.Result = result
		job.TokenID = tokenID
	})
	if r.metrics != nil {
		r.metrics.AnalysesCompleted.Inc()
		r.metrics.BuyersFound.Observe(float64(result.TotalUniqueBuyers))
	}

	name, symbol := tokenNames(result)
	if r.hub != nil {
		r.hub.AnalysisCompleted(p.job.ID, name, symbol, analysis.Acronym(name, symbol), len(result.Buyers), tokenID)
	}
	r.log("job %s completed: %d buyers, %d credits", p.job.ID, result.TotalUniqueBuyers, result.CreditsUsed)
}

// persist writes the result to the relational stores and appends the
// buyer observations to the archive.
func (r *Runner) persist(ctx context.Context, result *domain.AnalysisResult) (int64, error) {
	name, symbol := tokenNames(result)
	now := time.Now().UnixMilli()

	tokenID, err := r.stores.Tokens.Upsert(ctx, &domain.AnalyzedToken{
		Mint:              result.Mint,
		Name:              name,
		Symbol:            symbol,
		Acronym:           analysis.Acronym(name, symbol),
		FirstBuyTime:      result.FirstTransactionTime,
		TotalUniqueBuyers: result.TotalUniqueBuyers,
		CreditsUsed:       result.CreditsUsed,
		AnalyzedAt:        now,
	})
	if err != nil {
		return 0, err
	}

	wallets := make([]*domain.BuyerWallet, 0, len(result.Buyers))
	archive := make([]*domain.BuyerEventRow, 0, len(result.Buyers))
	for _, b := range result.Buyers {
		wallets = append(wallets, &domain.BuyerWallet{
			Wallet:           b.Wallet,
			FirstBuyTime:     b.FirstBuyTime,
			TotalUSD:         b.TotalUSD,
			TransactionCount: b.TransactionCount,
			AverageUSD:       b.AverageUSD,
		})
		archive = append(archive, &domain.BuyerEventRow{
			Mint:             result.Mint,
			Wallet:           b.Wallet,
			FirstBuyTime:     b.FirstBuyTime,
			TotalUSD:         b.TotalUSD,
			TransactionCount: int32(b.TransactionCount),
			AnalyzedAt:       now,
		})
	}

	if err := r.stores.Wallets.ReplaceForToken(ctx, tokenID, wallets); err != nil {
		return 0, err
	}

	// Archive failures must not fail the job; the relational result is
	// already durable.
	if r.stores.Events != nil && len(archive) > 0 {
		if err := r.stores.Events.InsertBatch(ctx, archive); err != nil {
			r.log("archive insert failed for %s: %v", result.Mint, err)
		}
	}

	return tokenID, nil
}

func (r *Runner) setStatus(jobID string, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = status
	}
}

// finish applies a terminal mutation and releases the mint for new jobs.
func (r *Runner) finish(jobID string, mutate func(*Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return
	}
	mutate(job)
	job.CompletedAt = time.Now().UnixMilli()
	delete(r.byMint, job.Mint)
}

func tokenNames(result *domain.AnalysisResult) (string, string) {
	if result.TokenInfo == nil {
		return "Unknown", ""
	}
	name := result.TokenInfo.Name
	if name == "" {
		name = "Unknown"
	}
	return name, result.TokenInfo.Symbol
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		r.logger.Printf("[jobs] "+format, args...)
	}
}
