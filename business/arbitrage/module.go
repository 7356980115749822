// Package arbitrage implements the bounded context that evaluates both
// trade directions for every watched token and emits arbitrage signals.
package arbitrage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solarb/arbitrage-detector/business/arbitrage/app"
	arbdi "github.com/solarb/arbitrage-detector/business/arbitrage/di"
	arbdomain "github.com/solarb/arbitrage-detector/business/arbitrage/domain"
	dexdi "github.com/solarb/arbitrage-detector/business/dex/di"
	mddi "github.com/solarb/arbitrage-detector/business/marketdata/di"
	mddomain "github.com/solarb/arbitrage-detector/business/marketdata/domain"
	"github.com/solarb/arbitrage-detector/internal/config"
	"github.com/solarb/arbitrage-detector/internal/di"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

func msDuration(ms int) time.Duration { return time.Duration(ms) * time.Millisecond }
func secDuration(s int) time.Duration { return time.Duration(s) * time.Second }

func tokenInfos(cfg *config.Config) []app.TokenInfo {
	out := make([]app.TokenInfo, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		out = append(out, app.TokenInfo{Symbol: mddomain.Symbol(t.BybitSymbol), Mint: t.Mint, Decimals: t.Decimals})
	}
	return out
}

func engineConfigFrom(cfg *config.Config) app.EngineConfig {
	notional := decimal.NewFromFloat(cfg.Notional.UsdAmount)
	return app.EngineConfig{
		StableMint:     cfg.Stable.Mint,
		StableDecimals: cfg.Stable.Decimals,
		Notional:       notional,
		Thresholds: app.Thresholds{
			BybitTakerFeeBps:  decimal.NewFromFloat(cfg.Fees.BybitTakerFeeBps),
			SolanaTxFeeUSD:    decimal.NewFromFloat(cfg.Fees.SolanaTxFeeUSD),
			LatencyBufferBps:  decimal.NewFromFloat(cfg.Fees.LatencyBufferBps),
			UsdtUsdcBufferBps: decimal.NewFromFloat(cfg.Fees.UsdtUsdcBufferBps),
			MinProfitUSD:      decimal.NewFromFloat(cfg.Fees.MinProfitUSD),
		},
		MaxDexImpactPct:   decimal.NewFromFloat(cfg.Guards.MaxDexPriceImpactPct),
		MaxCexSlipBps:     decimal.NewFromFloat(cfg.Guards.MaxCexSlippageBps),
		MinCoveragePct:    decimal.NewFromFloat(cfg.Guards.MinDepthCoveragePct),
		MaxPriceRatio:     decimal.NewFromFloat(cfg.Sanity.PriceRatioMax),
		MaxGrossProfitPct: decimal.NewFromFloat(cfg.Sanity.GrossProfitCapPct),
		MaxObAgeMs:        cfg.Timing.MaxObAgeMs,
		MaxBuyQuoteAge:    msDuration(cfg.Timing.MaxQuoteAgeMs),
		MaxSellQuoteAge:   msDuration(cfg.Timing.MaxQuoteAgeMs),
		TickInterval:      cfg.Timing.EngineTick(),
		PersistenceHits:   cfg.Signals.PersistenceHits,
		DedupCooldown:     secDuration(cfg.Signals.CooldownSec),
		DedupMinDeltaUSD:  decimal.NewFromFloat(cfg.Signals.MinDeltaProfitUsdToResend),
	}
}

func pollerConfigFrom(cfg *config.Config) app.PollerConfig {
	return app.PollerConfig{
		StableMint:     cfg.Stable.Mint,
		StableDecimals: cfg.Stable.Decimals,
		Notional:       decimal.NewFromFloat(cfg.Notional.UsdAmount),
		MaxSpreadBps:   decimal.NewFromFloat(cfg.Sanity.MaxSpreadBps),
		MaxObAgeMs:     cfg.Timing.MaxObAgeMs,
		PollInterval:   cfg.Timing.JupiterPollInterval(),
		MaxQuoteAge:    msDuration(cfg.Timing.MaxQuoteAgeMs),
	}
}

// RegisterServices registers a default no-op signal sink, the token
// denylist, the quote poller and the engine. Other modules (the notify
// context) may override the signal sink token before it is first resolved.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbdi.SignalSink, func(sr di.ServiceRegistry) app.SignalSink {
		return func(context.Context, arbdomain.Signal) {}
	})

	di.RegisterToken(c, arbdi.Denylist, func(sr di.ServiceRegistry) *arbdomain.Denylist {
		cfg := sr.Get("config").(*config.Config)
		return arbdomain.BuildDenylist(cfg.Filters.DenylistSymbols, cfg.Filters.DenylistRegex)
	})

	di.RegisterToken(c, arbdi.Poller, func(sr di.ServiceRegistry) *app.QuotePoller {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		state := mddi.GetMarketState(sr)
		quoter := dexdi.GetQuoteClient(sr)
		denylist := arbdi.GetDenylist(sr)
		stats := app.NewSkipStats(30 * cfg.Timing.JupiterPollInterval())

		return app.NewQuotePoller(state, quoter, denylist, tokenInfos(cfg), pollerConfigFrom(cfg), log, stats, nil)
	})

	di.RegisterToken(c, arbdi.Engine, func(sr di.ServiceRegistry) *app.Engine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		state := mddi.GetMarketState(sr)
		quoter := dexdi.GetQuoteClient(sr)
		denylist := arbdi.GetDenylist(sr)
		sink := arbdi.GetSignalSink(sr)
		stats := app.NewSkipStats(30 * cfg.Timing.EngineTick())

		return app.NewEngine(state, quoter, denylist, tokenInfos(cfg), engineConfigFrom(cfg), sink, log, stats, nil)
	})

	return nil
}

// Startup starts the engine and poller loops for the process lifetime.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	sr := mono.Services()

	engine := arbdi.GetEngine(sr)
	poller := arbdi.GetPoller(sr)

	go poller.Run(ctx)
	go engine.Run(ctx)

	mono.Logger().Info(ctx, "arbitrage module started")
	return nil
}
