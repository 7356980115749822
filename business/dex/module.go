// Package dex implements the bounded context owning DEX quote fetching
// against the Jupiter aggregator.
package dex

import (
	"context"

	dexapp "github.com/solarb/arbitrage-detector/business/dex/app"
	dexdi "github.com/solarb/arbitrage-detector/business/dex/di"
	"github.com/solarb/arbitrage-detector/business/dex/infra/jupiter"
	"github.com/solarb/arbitrage-detector/internal/config"
	"github.com/solarb/arbitrage-detector/internal/di"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/monolith"
)

// Module implements the DEX quote bounded context.
type Module struct{}

// RegisterServices registers a default no-op skip sink and the Jupiter quote
// client. Other modules (the quarantine context) may override the skip sink
// token before it is first resolved.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, dexdi.SkipSink, func(sr di.ServiceRegistry) dexapp.SkipSink {
		return func(dexapp.SkipEvent) {}
	})

	di.RegisterToken(c, dexdi.QuoteClient, func(sr di.ServiceRegistry) dexapp.QuoteClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		skipSink := dexdi.GetSkipSink(sr)

		jCfg := jupiter.DefaultConfig(cfg.Jupiter.BaseURL, cfg.Jupiter.APIKey)
		jCfg.SlippageBps = cfg.Jupiter.SlippageBps
		jCfg.MaxAccounts = cfg.Jupiter.MaxAccounts
		jCfg.RPS = cfg.RateLimits.RPS
		jCfg.Concurrency = cfg.RateLimits.Concurrency
		jCfg.MaxRetries = cfg.RateLimits.MaxRetries

		client, err := jupiter.New(jCfg, log, skipSink)
		if err != nil {
			panic(err)
		}
		return client
	})

	return nil
}

// Startup is a no-op: the quote client is demand-driven by the arbitrage
// engine's poller, not polled on a fixed schedule of its own.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	mono.Logger().Info(ctx, "dex module started")
	return nil
}
