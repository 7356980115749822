package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	dexapp "github.com/solarb/arbitrage-detector/business/dex/app"
	"github.com/solarb/arbitrage-detector/internal/logger"
)

// VerifierConfig controls the recovery probe's cadence and rate limit.
type VerifierConfig struct {
	Interval        time.Duration
	MaxChecksPerRun int
	CheckDelay      time.Duration
	NotionalRaw     decimal.Decimal // stable-denominated probe size, in stable's raw units
	StableMint      string
}

// DefaultVerifierConfig returns the original system's constants.
func DefaultVerifierConfig(stableMint string, notionalRaw decimal.Decimal) VerifierConfig {
	return VerifierConfig{
		Interval:        30 * time.Minute,
		MaxChecksPerRun: 15,
		CheckDelay:      2 * time.Second,
		NotionalRaw:     notionalRaw,
		StableMint:      stableMint,
	}
}

// Verifier periodically probes quarantined symbols that might be able to
// trade again, and recovers those that can.
type Verifier struct {
	manager    *Manager
	quoter     dexapp.QuoteClient
	tokens     map[string]TokenInfo // by symbol
	cfg        VerifierConfig
	log        logger.LoggerInterface
	enabled    func() bool
}

// NewVerifier builds a Verifier. enabled, if non-nil, gates whether a run
// executes at all (e.g. the exchange connection must be up).
func NewVerifier(manager *Manager, quoter dexapp.QuoteClient, tokens []TokenInfo, cfg VerifierConfig, log logger.LoggerInterface, enabled func() bool) *Verifier {
	bySymbol := make(map[string]TokenInfo, len(tokens))
	for _, t := range tokens {
		bySymbol[t.Symbol] = t
	}
	return &Verifier{manager: manager, quoter: quoter, tokens: bySymbol, cfg: cfg, log: log, enabled: enabled}
}

// Run runs one verification pass and returns the number of symbols recovered.
func (v *Verifier) Run(ctx context.Context) int {
	if v.enabled != nil && !v.enabled() {
		return 0
	}

	snapshot := v.manager.Snapshot()
	if len(snapshot) == 0 {
		return 0
	}

	var recovered []string
	checks := 0

	for symbol, entry := range snapshot {
		if !entry.Verifiable() {
			continue
		}
		if checks >= v.cfg.MaxChecksPerRun {
			break
		}

		info, ok := v.tokens[symbol]
		if !ok || !info.valid() {
			continue
		}

		quote, err := v.quoter.Quote(ctx, v.cfg.StableMint, info.Mint, v.cfg.NotionalRaw)
		checks++
		if err == nil && quote != nil && quote.OutAmountRaw.IsPositive() {
			recovered = append(recovered, symbol)
			if v.log != nil {
				v.log.Info(ctx, "quarantine verify: recovered", "symbol", symbol, "reason", entry.Reason)
			}
		}

		if checks < v.cfg.MaxChecksPerRun {
			select {
			case <-ctx.Done():
				return 0
			case <-time.After(v.cfg.CheckDelay):
			}
		}
	}

	if len(recovered) == 0 {
		return 0
	}

	v.manager.RemoveRecovered(ctx, recovered)
	if v.log != nil {
		v.log.Warn(ctx, "quarantine verify: recovered symbols", "count", len(recovered))
	}
	return len(recovered)
}

// RunLoop runs Run on cfg.Interval until ctx is done.
func (v *Verifier) RunLoop(ctx context.Context) {
	ticker := time.NewTicker(v.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.Run(ctx)
		}
	}
}
