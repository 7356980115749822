// Package app contains the DEX quote client's port definitions.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/solarb/arbitrage-detector/business/dex/domain"
)

// SkipCode classifies a quote failure surfaced to the quarantine subsystem.
type SkipCode string

const (
	SkipTokenNotTradable SkipCode = "JUP_TOKEN_NOT_TRADABLE"
	SkipNoRoute          SkipCode = "JUP_NO_ROUTE"
	SkipAmountTooBig     SkipCode = "JUP_AMOUNT_TOO_BIG"
)

// SkipEvent is delivered to the skip callback on a classified quote failure.
type SkipEvent struct {
	Code       SkipCode
	InputMint  string
	OutputMint string
	BadMint    string
	Msg        string
}

// SkipSink receives best-effort skip notifications; it must never influence
// the quote result.
type SkipSink func(SkipEvent)

// QuoteClient fetches exact-in swap quotes with rate limiting, retries and
// negative caching.
type QuoteClient interface {
	Quote(ctx context.Context, inputMint, outputMint string, amountRaw decimal.Decimal) (*domain.Quote, error)
}
