// Package domain contains the core DEX-quote types.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an immutable exact-in swap quote returned by the DEX aggregator.
type Quote struct {
	InputMint       string
	OutputMint      string
	InAmountRaw     decimal.Decimal
	OutAmountRaw    decimal.Decimal
	PriceImpactPct  decimal.Decimal
	ContextSlot     int64
	TimeTakenMs     float64
	FetchedAt       time.Time
}

// Stale reports whether the quote is older than maxAge at the given instant.
func (q *Quote) Stale(now time.Time, maxAge time.Duration) bool {
	if q == nil {
		return true
	}
	return now.Sub(q.FetchedAt) > maxAge
}

// MintsMatch reports whether the quote's input/output mints match the given pair.
func (q *Quote) MintsMatch(inputMint, outputMint string) bool {
	if q == nil {
		return false
	}
	return q.InputMint == inputMint && q.OutputMint == outputMint
}
