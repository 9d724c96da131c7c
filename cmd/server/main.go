// Package main runs the early-bidder analysis service: an HTTP API that
// queues token analyses on a worker pool, persists results and streams
// job progress over WebSocket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-early-bidders/internal/analysis"
	"solana-early-bidders/internal/balance"
	"solana-early-bidders/internal/extract"
	"solana-early-bidders/internal/helius"
	"solana-early-bidders/internal/jobs"
	"solana-early-bidders/internal/notify"
	"solana-early-bidders/internal/observability"
	"solana-early-bidders/internal/storage"
	chstore "solana-early-bidders/internal/storage/clickhouse"
	"solana-early-bidders/internal/storage/memory"
	"solana-early-bidders/internal/storage/migrations"
	pgstore "solana-early-bidders/internal/storage/postgres"
)

func main() {
	// Load .env file if exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	apiKey := flag.String("api-key", os.Getenv("HELIUS_API_KEY"), "Helius API key")
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional archive)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	solPrice := flag.Float64("sol-price-usd", envFloat("SOL_PRICE_USD", 0), "Fixed SOL/USD rate, 0 = built-in default")
	workers := flag.Int("workers", envInt("ANALYSIS_WORKERS", 2), "Analysis worker count")
	queueDepth := flag.Int("queue-depth", envInt("QUEUE_DEPTH", 32), "Analysis queue depth")
	refreshConcurrency := flag.Int("refresh-concurrency", balance.DefaultConcurrency, "Concurrent balance lookups")
	verbose := flag.Bool("verbose", false, "Verbose logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *apiKey == "" {
		logger.Fatal("--api-key or HELIUS_API_KEY is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create components
	client := helius.NewHTTPClient(*apiKey)
	metrics := observability.DefaultMetrics
	hub := notify.NewHub(logger, *verbose)
	hub.OnConnect = func() { metrics.WSClients.Inc() }
	hub.OnDisconnect = func() { metrics.WSClients.Dec() }

	analyzer := analysis.NewAnalyzer(client, *solPrice, logger, *verbose)
	runner := jobs.NewRunner(analyzer, stores.jobStores(), hub, metrics, *workers, *queueDepth, logger, *verbose)
	runner.Start(ctx, *workers)

	refresher := balance.NewRefresher(client, stores.wallets, *solPrice, *refreshConcurrency, metrics, logger, *verbose)

	api := &apiServer{
		stores:    stores,
		runner:    runner,
		refresher: refresher,
		hub:       hub,
		logger:    logger,
	}

	srv := &http.Server{
		Addr:         *listenAddr,
		Handler:      api.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
	}()

	logger.Printf("Listening on %s", *listenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// allStores holds the storage implementations selected at startup.
type allStores struct {
	tokens  storage.AnalyzedTokenStore
	wallets storage.BuyerWalletStore
	events  storage.BuyerEventStore // nil when no archive is configured
}

func (s *allStores) jobStores() jobs.Stores {
	return jobs.Stores{Tokens: s.tokens, Wallets: s.wallets, Events: s.events}
}

// createStores selects the storage backends and applies migrations.
// The ClickHouse archive is optional in either mode.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool, logger *log.Logger) (*allStores, func(), error) {
	stores := &allStores{}
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if useMemory {
		stores.tokens = memory.NewAnalyzedTokenStore()
		stores.wallets = memory.NewBuyerWalletStore()
		stores.events = memory.NewBuyerEventStore()
		return stores, cleanup, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	cleanups = append(cleanups, pool.Close)

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	stores.tokens = pgstore.NewAnalyzedTokenStore(pool)
	stores.wallets = pgstore.NewBuyerWalletStore(pool)

	if clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		cleanups = append(cleanups, func() { conn.Close() })
		stores.events = chstore.NewBuyerEventStore(conn)
	} else {
		logger.Println("No ClickHouse DSN configured, cross-token archive disabled")
	}

	return stores, cleanup, nil
}

// apiServer holds the HTTP handler dependencies.
type apiServer struct {
	stores    *allStores
	runner    *jobs.Runner
	refresher *balance.Refresher
	hub       *notify.Hub
	logger    *log.Logger
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleJob)
	mux.HandleFunc("GET /api/tokens", s.handleTokens)
	mux.HandleFunc("GET /api/tokens/{id}", s.handleToken)
	mux.HandleFunc("GET /api/wallets/multi-token", s.handleMultiToken)
	mux.HandleFunc("POST /api/wallets/refresh-balances", s.handleRefreshBalances)
	mux.Handle("GET /ws", s.hub)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	return mux
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	Mint            string  `json:"token_address"`
	MinUSD          float64 `json:"min_usd"`
	WindowHours     int     `json:"window_hours"`
	MaxTransactions int     `json:"max_transactions"`
	MaxCredits      int     `json:"max_credits"`
	MaxWallets      int     `json:"max_wallets"`
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Mint = strings.TrimSpace(req.Mint)
	if !extract.IsValidAddress(req.Mint) {
		writeError(w, http.StatusBadRequest, "invalid token address")
		return
	}

	jobID, err := s.runner.Submit(analysis.Params{
		Mint:            req.Mint,
		MinUSD:          req.MinUSD,
		WindowHours:     req.WindowHours,
		MaxTransactions: req.MaxTransactions,
		MaxCredits:      req.MaxCredits,
		MaxWallets:      req.MaxWallets,
	})
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "analysis queue is full")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, _ := s.runner.Get(jobID)
	writeJSON(w, http.StatusAccepted, job)
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.runner.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *apiServer) handleTokens(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		tokens interface{}
		err    error
	)
	if query != "" {
		tokens, err = s.stores.tokens.Search(r.Context(), query, limit)
	} else {
		tokens, err = s.stores.tokens.List(r.Context(), limit, offset)
	}
	if err != nil {
		s.logger.Printf("token list failed: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

// tokenDetailResponse is GET /api/tokens/{id}: the analysis record, its
// ranked wallets and a ready-to-import Axiom tracker list.
type tokenDetailResponse struct {
	Token   interface{} `json:"token"`
	Wallets interface{} `json:"wallets"`
	Axiom   interface{} `json:"axiom_export"`
}

func (s *apiServer) handleToken(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid token ID")
		return
	}

	token, err := s.stores.tokens.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "token not found")
			return
		}
		s.logger.Printf("token lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	wallets, err := s.stores.wallets.GetByTokenID(r.Context(), id)
	if err != nil {
		s.logger.Printf("wallet lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	writeJSON(w, http.StatusOK, tokenDetailResponse{
		Token:   token,
		Wallets: wallets,
		Axiom:   analysis.AxiomExportFromWallets(wallets, token.Name, token.Symbol, 0),
	})
}

func (s *apiServer) handleMultiToken(w http.ResponseWriter, r *http.Request) {
	if s.stores.events == nil {
		writeError(w, http.StatusNotImplemented, "cross-token archive is not configured")
		return
	}

	minTokens := queryInt(r, "min_tokens", 2)
	limit := queryInt(r, "limit", 100)

	wallets, err := s.stores.events.MultiTokenWallets(r.Context(), minTokens, limit)
	if err != nil {
		s.logger.Printf("multi-token query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, wallets)
}

// refreshRequest is the POST /api/wallets/refresh-balances body.
type refreshRequest struct {
	TokenID int64 `json:"token_id"`
}

func (s *apiServer) handleRefreshBalances(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TokenID <= 0 {
		writeError(w, http.StatusBadRequest, "token_id is required")
		return
	}

	updated, credits, err := s.refresher.RefreshToken(r.Context(), req.TokenID)
	if err != nil {
		s.logger.Printf("balance refresh failed: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"wallets_updated":  updated,
		"api_credits_used": credits,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
