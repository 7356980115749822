// Package quarantine implements the bounded context that disables symbols
// which have proven untradable, either on the CEX or DEX side, until they
// recover or a human fixes their configuration.
package quarantine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	dexapp "github.com/solarb/arbitrage-detector/business/dex/app"
	dexdi "github.com/solarb/arbitrage-detector/business/dex/di"
	mddomain "github.com/solarb/arbitrage-detector/business/marketdata/domain"
	mddi "github.com/solarb/arbitrage-detector/business/marketdata/di"
	"github.com/solarb/arbitrage-detector/business/quarantine/app"
	qdi "github.com/solarb/arbitrage-detector/business/quarantine/di"
	"github.com/solarb/arbitrage-detector/business/quarantine/domain"
	"github.com/solarb/arbitrage-detector/business/quarantine/infra/filestore"
	"github.com/solarb/arbitrage-detector/internal/config"
	"github.com/solarb/arbitrage-detector/internal/di"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/monolith"
)

// Module implements the quarantine bounded context.
type Module struct{}

func tokenInfos(cfg *config.Config) []app.TokenInfo {
	out := make([]app.TokenInfo, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		out = append(out, app.TokenInfo{Symbol: t.BybitSymbol, Mint: t.Mint, Decimals: t.Decimals})
	}
	return out
}

func allSymbols(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.Tokens))
	for _, t := range cfg.Tokens {
		out = append(out, t.BybitSymbol)
	}
	return out
}

// RegisterServices registers the quarantine manager and verifier, and
// overrides the DEX module's default no-op skip sink to route classified
// quote failures into the manager. The manager's onChanged callback is
// bound later, in Startup, once the marketdata cluster is available.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, qdi.Manager, func(sr di.ServiceRegistry) *app.Manager {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		store := filestore.New(cfg.Quarantine.FilePath)
		return app.NewManager(store, log, tokenInfos(cfg), cfg.Filters.DenylistSymbols, nil)
	})

	di.RegisterToken(c, dexdi.SkipSink, func(sr di.ServiceRegistry) dexapp.SkipSink {
		cfg := sr.Get("config").(*config.Config)
		manager := qdi.GetManager(sr)

		mintToSymbol := make(map[string]string, len(cfg.Tokens))
		for _, t := range cfg.Tokens {
			mintToSymbol[t.Mint] = t.BybitSymbol
		}

		return func(ev dexapp.SkipEvent) {
			symbol, ok := mintToSymbol[ev.BadMint]
			if !ok {
				symbol, ok = mintToSymbol[ev.OutputMint]
			}
			if !ok {
				return
			}

			var reason domain.Reason
			var ttl time.Duration
			switch ev.Code {
			case dexapp.SkipTokenNotTradable:
				reason = domain.ReasonTokenNotTradable
				ttl = time.Duration(cfg.Quarantine.TTLNotTradableSec) * time.Second
			case dexapp.SkipNoRoute:
				reason = domain.ReasonNoRoute
				ttl = time.Duration(cfg.Quarantine.TTLNoRouteSec) * time.Second
			default:
				return
			}

			manager.Add(context.Background(), symbol, reason, ttl)
		}
	})

	di.RegisterToken(c, qdi.Verifier, func(sr di.ServiceRegistry) *app.Verifier {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		manager := qdi.GetManager(sr)
		quoteClient := dexdi.GetQuoteClient(sr)

		notionalRaw := decimal.NewFromFloat(cfg.Notional.UsdAmount).Shift(int32(cfg.Stable.Decimals))
		vcfg := app.DefaultVerifierConfig(cfg.Stable.Mint, notionalRaw)
		vcfg.Interval = cfg.Quarantine.VerifyInterval()

		return app.NewVerifier(manager, quoteClient, tokenInfos(cfg), vcfg, log, nil)
	})

	return nil
}

// Startup loads the quarantine file, wires the manager's onChanged callback
// to reconcile the marketdata cluster's desired watchlist, reconciles once
// against the initial quarantined set, and starts the sync and verify loops
// for the process lifetime.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	sr := mono.Services()

	manager := qdi.GetManager(sr)
	cluster := mddi.GetCluster(sr)
	all := allSymbols(cfg)

	reconcile := func() {
		active := manager.ActiveSymbols(all)
		symbols := make([]mddomain.Symbol, len(active))
		for i, s := range active {
			symbols[i] = mddomain.Symbol(s)
		}
		cluster.SetDesired(ctx, symbols)
	}
	manager.SetOnChanged(reconcile)

	manager.LoadInitial(ctx)
	reconcile()

	go manager.SyncLoop(ctx, cfg.Quarantine.SyncInterval())

	verifier := qdi.GetVerifier(sr)
	go verifier.RunLoop(ctx)

	mono.Logger().Info(ctx, "quarantine module started", "active", len(manager.ActiveSymbols(all)))
	return nil
}
