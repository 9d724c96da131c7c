package analysis

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"solana-early-bidders/internal/domain"
)

// DefaultExportLimit caps the wallet-tracker export size.
const DefaultExportLimit = 10

var acronymSplit = regexp.MustCompile(`[\s\-_.]+`)

// Filler words skipped when building an acronym from a multi-word name.
var acronymStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "and": true, "or": true,
}

// Acronym derives a short tag from a token name, falling back to the
// symbol. Multi-word names yield initials ("Dogecoin Super Mega Moon
// Edition" becomes "DSMME"); short names pass through unchanged.
func Acronym(name, symbol string) string {
	if name == "" || name == "Unknown" {
		if symbol != "" {
			return strings.ToUpper(symbol)
		}
		return "UNKN"
	}

	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) <= 4 {
		return strings.ToUpper(name)
	}

	var words []string
	for _, w := range acronymSplit.Split(name, -1) {
		if w != "" && !acronymStopWords[strings.ToLower(w)] {
			words = append(words, w)
		}
	}

	if len(words) > 1 {
		var b strings.Builder
		for _, w := range words {
			b.WriteString(strings.ToUpper(string([]rune(w)[0])))
		}
		return b.String()
	}

	// Single word. Prefer a short symbol, else the name's first five
	// characters.
	if symbol != "" && len(symbol) <= 5 {
		return strings.ToUpper(symbol)
	}
	if len(runes) > 5 {
		runes = runes[:5]
	}
	return strings.ToUpper(string(runes))
}

// AxiomExport converts a ranked buyer list into Axiom wallet-tracker
// import entries named "(rank/limit)$usd|ACRO". A non-positive limit
// uses DefaultExportLimit.
func AxiomExport(buyers []*domain.BuyerAggregate, tokenName, tokenSymbol string, limit int) []domain.AxiomEntry {
	if limit <= 0 {
		limit = DefaultExportLimit
	}
	if len(buyers) > limit {
		buyers = buyers[:limit]
	}

	acronym := Acronym(tokenName, tokenSymbol)

	entries := make([]domain.AxiomEntry, 0, len(buyers))
	for i, buyer := range buyers {
		entries = append(entries, domain.AxiomEntry{
			TrackedWalletAddress: buyer.Wallet,
			Name:                 fmt.Sprintf("(%d/%d)$%d|%s", i+1, limit, int(math.Round(buyer.TotalUSD)), acronym),
			Emoji:                "#️⃣",
			AlertsOnToast:        true,
			AlertsOnBubble:       true,
			AlertsOnFeed:         true,
			Groups:               []string{"Main"},
			Sound:                "bing",
		})
	}
	return entries
}

// AxiomExportFromWallets builds the tracker list from persisted wallet
// rows rather than a fresh analysis result.
func AxiomExportFromWallets(wallets []*domain.BuyerWallet, tokenName, tokenSymbol string, limit int) []domain.AxiomEntry {
	buyers := make([]*domain.BuyerAggregate, 0, len(wallets))
	for _, w := range wallets {
		buyers = append(buyers, &domain.BuyerAggregate{
			Wallet:           w.Wallet,
			FirstBuyTime:     w.FirstBuyTime,
			TotalUSD:         w.TotalUSD,
			TransactionCount: w.TransactionCount,
			AverageUSD:       w.AverageUSD,
		})
	}
	return AxiomExport(buyers, tokenName, tokenSymbol, limit)
}
