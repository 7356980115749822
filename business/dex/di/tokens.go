// Package di contains dependency injection tokens for the DEX quote context.
package di

import (
	dexapp "github.com/solarb/arbitrage-detector/business/dex/app"
	"github.com/solarb/arbitrage-detector/internal/di"
)

const (
	// QuoteClient is the token for the registered Jupiter quote client.
	QuoteClient = "dex.QuoteClient"
	// SkipSink is the token for the skip-event callback consumed by the
	// quarantine context. The dex module registers a default no-op; the
	// quarantine module overrides it with its own handler before the quote
	// client is ever resolved.
	SkipSink = "dex.SkipSink"
)

// GetQuoteClient resolves the registered quote client.
func GetQuoteClient(sr di.ServiceRegistry) dexapp.QuoteClient {
	return di.MustGet[dexapp.QuoteClient](sr, QuoteClient)
}

// GetSkipSink resolves the registered skip-event sink.
func GetSkipSink(sr di.ServiceRegistry) dexapp.SkipSink {
	return di.MustGet[dexapp.SkipSink](sr, SkipSink)
}
