// Package main runs a single early-bidder analysis from the command
// line and prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"solana-early-bidders/internal/analysis"
	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/extract"
	"solana-early-bidders/internal/helius"
)

func main() {
	_ = godotenv.Load()

	// Parse flags
	apiKey := flag.String("api-key", os.Getenv("HELIUS_API_KEY"), "Helius API key")
	minUSD := flag.Float64("min-usd", 0, "Minimum USD per buy event, 0 = default")
	windowHours := flag.Int("window-hours", 0, "Analysis window from the first transaction, 0 = default")
	maxTransactions := flag.Int("max-transactions", 0, "Most transactions to retrieve, 0 = default")
	maxCredits := flag.Int("max-credits", 0, "Soft API credit ceiling, 0 = unlimited")
	maxWallets := flag.Int("max-wallets", 0, "Most buyers to return, 0 = default")
	solPrice := flag.Float64("sol-price-usd", 0, "Fixed SOL/USD rate, 0 = built-in default")
	axiomOnly := flag.Bool("axiom", false, "Print only the Axiom wallet-tracker export")
	verbose := flag.Bool("verbose", false, "Verbose logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags)

	mint := flag.Arg(0)
	if mint == "" {
		logger.Fatal("usage: analyze [flags] <mint-address>")
	}
	if !extract.IsValidAddress(mint) {
		logger.Fatalf("Invalid mint address: %s", mint)
	}
	if *apiKey == "" {
		logger.Fatal("--api-key or HELIUS_API_KEY is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	client := helius.NewHTTPClient(*apiKey)
	analyzer := analysis.NewAnalyzer(client, *solPrice, logger, *verbose)

	result := analyzer.Analyze(ctx, analysis.Params{
		Mint:            mint,
		MinUSD:          *minUSD,
		WindowHours:     *windowHours,
		MaxTransactions: *maxTransactions,
		MaxCredits:      *maxCredits,
		MaxWallets:      *maxWallets,
	})

	if *axiomOnly {
		printJSON(logger, axiomFromResult(result))
		return
	}

	printJSON(logger, struct {
		*domain.AnalysisResult
		Axiom []domain.AxiomEntry `json:"axiom_export"`
	}{
		AnalysisResult: result,
		Axiom:          axiomFromResult(result),
	})

	if result.Error != "" {
		os.Exit(1)
	}
}

func axiomFromResult(result *domain.AnalysisResult) []domain.AxiomEntry {
	name, symbol := "Unknown", ""
	if result.TokenInfo != nil {
		name, symbol = result.TokenInfo.Name, result.TokenInfo.Symbol
	}
	return analysis.AxiomExport(result.Buyers, name, symbol, 0)
}

func printJSON(logger *log.Logger, v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(output))
}
