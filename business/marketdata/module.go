// Package marketdata implements the bounded context owning order books and
// DEX quote pairs for the watchlist.
package marketdata

import (
	"context"

	mddomain "github.com/solarb/arbitrage-detector/business/marketdata/domain"
	mddi "github.com/solarb/arbitrage-detector/business/marketdata/di"
	"github.com/solarb/arbitrage-detector/business/marketdata/infra/bybit"
	"github.com/solarb/arbitrage-detector/internal/config"
	"github.com/solarb/arbitrage-detector/internal/di"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/monolith"
)

// Module implements the market-data bounded context.
type Module struct{}

// RegisterServices registers the MarketState and the WS cluster.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, mddi.MarketState, func(sr di.ServiceRegistry) *mddomain.MarketState {
		log := sr.Get("logger").(logger.LoggerInterface)
		return mddomain.NewMarketState(log)
	})

	di.RegisterToken(c, mddi.Cluster, func(sr di.ServiceRegistry) *bybit.Cluster {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		state := mddi.GetMarketState(sr)

		shardCfg := bybit.DefaultConfig(cfg.WS.URL, cfg.WS.Depth)
		shardCfg.PingInterval = cfg.WS.PingInterval()
		shardCfg.MaxSymbolsPerShard = cfg.WS.MaxSymbolsPerWS

		sink := func(symbol mddomain.Symbol, isSnapshot bool, bids, asks []mddomain.RawLevel, tsMs, ctsMs int64) {
			book := state.BookFor(symbol)
			if isSnapshot {
				book.ApplySnapshot(context.Background(), bids, asks, tsMs, ctsMs)
			} else {
				book.ApplyDelta(context.Background(), bids, asks, tsMs, ctsMs)
			}
		}

		return bybit.NewCluster(shardCfg, log, sink)
	})

	return nil
}

// Startup subscribes the cluster to the initial configured watchlist.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	cluster := mddi.GetCluster(mono.Services())

	symbols := make([]mddomain.Symbol, 0, len(cfg.Tokens))
	for _, tok := range cfg.Tokens {
		symbols = append(symbols, mddomain.Symbol(tok.BybitSymbol))
	}
	cluster.SetDesired(ctx, symbols)

	mono.Logger().Info(ctx, "marketdata module started", "symbols", len(symbols))
	return nil
}
