// Package app contains the market-data context's port definitions, consumed
// by the arbitrage context and implemented by infra/bybit.
package app

import "github.com/solarb/arbitrage-detector/business/marketdata/domain"

// BookSource exposes read access to the shared order-book/quote-pair registry.
type BookSource interface {
	Book(symbol domain.Symbol) (*domain.OrderBook, bool)
	PairFor(key domain.TokenKey) *domain.QuotePair
}

// DesiredSymbols is implemented by whoever decides which symbols should be
// subscribed (the arbitrage/quarantine side); the WS cluster observes it.
type DesiredSymbols interface {
	Desired() []domain.Symbol
}

// Feed is the CEX market-data feed contract: set the desired symbol set and
// let the cluster reconcile subscriptions in the background.
type Feed interface {
	SetDesired(symbols []domain.Symbol)
	State() map[domain.Symbol]string
}
