package app

import (
	"context"

	arbdomain "github.com/solarb/arbitrage-detector/business/arbitrage/domain"
	mddomain "github.com/solarb/arbitrage-detector/business/marketdata/domain"
)

// TokenInfo is one watchlist entry the poller and engine evaluate.
type TokenInfo struct {
	Symbol   mddomain.Symbol
	Mint     string
	Decimals uint8
}

func (t TokenInfo) key() mddomain.TokenKey {
	return mddomain.TokenKey{Symbol: t.Symbol, Mint: t.Mint, Decimals: t.Decimals}
}

// SignalSink receives an emitted arbitrage signal. It must never block the
// caller for long and must never be allowed to influence engine state; the
// default registration is a no-op, overridden by whichever module owns
// delivery.
type SignalSink func(ctx context.Context, sig arbdomain.Signal)
