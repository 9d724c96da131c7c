package analysis

import (
	"testing"

	"solana-early-bidders/internal/domain"
)

func TestAcronym(t *testing.T) {
	cases := []struct {
		name   string
		symbol string
		want   string
	}{
		{"Dogecoin Super Mega Moon Edition", "", "DSMME"},
		{"Wrapped SOL", "WSOL", "WS"},
		{"AI", "", "AI"},
		{"", "pepe", "PEPE"},
		{"Unknown", "pepe", "PEPE"},
		{"", "", "UNKN"},
		{"Dogecoin", "DOGE", "DOGE"},     // short symbol preferred for single words
		{"Dogecoin", "", "DOGEC"},        // else first five characters
		{"The Best of Dogs", "", "BD"},   // filler words dropped
		{"moon-shot_token.v2", "", "MSTV"},
	}

	for _, c := range cases {
		if got := Acronym(c.name, c.symbol); got != c.want {
			t.Errorf("Acronym(%q, %q) = %q, want %q", c.name, c.symbol, got, c.want)
		}
	}
}

func TestAxiomExport(t *testing.T) {
	buyers := []*domain.BuyerAggregate{
		{Wallet: walletA, TotalUSD: 54.4},
		{Wallet: walletB, TotalUSD: 120.6},
		{Wallet: walletC, TotalUSD: 300},
	}

	entries := AxiomExport(buyers, "Dogecoin Super Mega Moon Edition", "", 2)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].TrackedWalletAddress != walletA {
		t.Errorf("entry 0 wallet = %s, want %s", entries[0].TrackedWalletAddress, walletA)
	}
	if entries[0].Name != "(1/2)$54|DSMME" {
		t.Errorf("entry 0 name = %q, want %q", entries[0].Name, "(1/2)$54|DSMME")
	}
	if entries[1].Name != "(2/2)$121|DSMME" {
		t.Errorf("entry 1 name = %q, want %q", entries[1].Name, "(2/2)$121|DSMME")
	}

	e := entries[0]
	if !e.AlertsOnToast || !e.AlertsOnBubble || !e.AlertsOnFeed {
		t.Errorf("alerts not enabled: %+v", e)
	}
	if len(e.Groups) != 1 || e.Groups[0] != "Main" {
		t.Errorf("groups = %v, want [Main]", e.Groups)
	}
	if e.Sound != "bing" || e.Emoji == "" {
		t.Errorf("unexpected entry fields: %+v", e)
	}
}

func TestAxiomExportDefaultLimit(t *testing.T) {
	buyers := []*domain.BuyerAggregate{{Wallet: walletA, TotalUSD: 60}}

	entries := AxiomExport(buyers, "", "TT", 0)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Name != "(1/10)$60|TT" {
		t.Errorf("name = %q, want %q", entries[0].Name, "(1/10)$60|TT")
	}
}
