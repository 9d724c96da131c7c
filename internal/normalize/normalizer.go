// Package normalize converts raw ledger transaction payloads into
// structural transfer records by diffing pre/post balances. It is
// deliberately ignorant of why a transaction happened; buy detection
// lives in the extract package.
package normalize

import (
	"strconv"

	"solana-early-bidders/internal/domain"
	"solana-early-bidders/internal/helius"
)

// Transaction converts one raw transaction into a NormalizedTransaction.
// Returns nil if the payload is structurally unusable; normalization
// never fails the surrounding batch.
func Transaction(raw *helius.RawTransaction) *domain.NormalizedTransaction {
	if raw == nil || raw.Signature == "" || raw.Meta == nil {
		return nil
	}

	tx := &domain.NormalizedTransaction{
		Signature: raw.Signature,
	}
	if raw.BlockTime != nil {
		tx.BlockTime = *raw.BlockTime
	}

	accounts := accountList(raw)
	tx.NativeTransfers = nativeTransfers(raw.Meta, accounts)
	tx.TokenTransfers = tokenTransfers(raw.Meta, accounts)

	return tx
}

// accountList extracts the flat account key list, empty if absent.
func accountList(raw *helius.RawTransaction) []string {
	if raw.Transaction == nil || raw.Transaction.Message == nil {
		return nil
	}
	keys := make([]string, len(raw.Transaction.Message.AccountKeys))
	for i, k := range raw.Transaction.Message.AccountKeys {
		keys[i] = k.Pubkey
	}
	return keys
}

// nativeTransfers derives SOL transfers by diffing pre/post lamport
// balances per account index. Any account whose balance changed produces
// exactly one transfer carrying the absolute delta.
func nativeTransfers(meta *helius.RawMeta, accounts []string) []domain.Transfer {
	n := len(meta.PreBalances)
	if len(meta.PostBalances) < n {
		n = len(meta.PostBalances)
	}

	var transfers []domain.Transfer
	for i := 0; i < n && i < len(accounts); i++ {
		pre := meta.PreBalances[i]
		post := meta.PostBalances[i]
		if pre == post || accounts[i] == "" {
			continue
		}

		t := domain.Transfer{}
		if post < pre {
			t.From = accounts[i]
			t.Amount = float64(pre - post)
		} else {
			t.To = accounts[i]
			t.Amount = float64(post - pre)
		}
		transfers = append(transfers, t)
	}
	return transfers
}

// tokenTransfers derives token transfers by diffing pre/post token
// balances keyed by account index. The ui amount is preferred; when the
// ledger reports it as null the amount is reconstructed from the raw
// integer value and the declared decimals.
func tokenTransfers(meta *helius.RawMeta, accounts []string) []domain.Transfer {
	pre := make(map[int]*helius.RawTokenBalance, len(meta.PreTokenBalances))
	for i := range meta.PreTokenBalances {
		b := &meta.PreTokenBalances[i]
		pre[b.AccountIndex] = b
	}

	var transfers []domain.Transfer
	for i := range meta.PostTokenBalances {
		post := &meta.PostTokenBalances[i]

		preAmount := tokenAmount(pre[post.AccountIndex])
		postAmount := tokenAmount(post)
		if preAmount == postAmount {
			continue
		}

		idx := post.AccountIndex
		if idx < 0 || idx >= len(accounts) || accounts[idx] == "" {
			continue
		}

		t := domain.Transfer{
			Mint: post.Mint,
		}
		if postAmount > preAmount {
			t.To = accounts[idx]
			t.Amount = postAmount - preAmount
		} else {
			t.From = accounts[idx]
			t.Amount = preAmount - postAmount
		}
		transfers = append(transfers, t)
	}
	return transfers
}

// tokenAmount resolves the ui-denominated amount of a token balance.
// A nil balance (account absent from the pre snapshot) counts as zero.
func tokenAmount(b *helius.RawTokenBalance) float64 {
	if b == nil || b.UITokenAmount == nil {
		return 0
	}
	ta := b.UITokenAmount
	if ta.UIAmount != nil {
		return *ta.UIAmount
	}

	raw, err := strconv.ParseFloat(ta.Amount, 64)
	if err != nil {
		return 0
	}
	if ta.Decimals <= 0 {
		return raw
	}
	div := 1.0
	for i := 0; i < ta.Decimals; i++ {
		div *= 10
	}
	return raw / div
}
